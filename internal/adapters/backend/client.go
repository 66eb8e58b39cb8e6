// internal/adapters/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"saavi_admin/internal/adapters/observability"
	"saavi_admin/internal/domain"
)

// TunnelHeader suppresses the interstitial warning page the tunneling proxy
// in front of the backend serves to unknown clients.
const TunnelHeader = "ngrok-skip-browser-warning"

type Client struct {
	base string
	hc   *http.Client
	skip string
	rl   *rate.Limiter
}

func New(base, skip string, rps int, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend base URL: %w", err)
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		skip: skip,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// APIError is a non-2xx answer from the backend. Message carries the body's
// "message" field when the backend sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d", e.Status)
}

func (e *APIError) UserMessage() string { return e.Message }

func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

// ---- Public API ----

func (c *Client) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "list_hotels", c.base+"/api/hotels/", nil, "", &raw); err != nil {
		return nil, err
	}
	return decodeHotels(raw)
}

func (c *Client) CreateHotel(ctx context.Context, p domain.Payload) error {
	body, ct, err := encodePayload(p)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "add_hotel", c.base+"/api/hotels/add-hotel", body, ct, nil)
}

func (c *Client) UpdateHotel(ctx context.Context, hotelID string, p domain.Payload) error {
	body, ct, err := encodePayload(p)
	if err != nil {
		return err
	}
	u := c.base + "/api/hotels/update-hotel/" + url.PathEscape(hotelID)
	return c.do(ctx, http.MethodPut, "update_hotel", u, body, ct, nil)
}

func (c *Client) DeleteHotel(ctx context.Context, hotelID string) error {
	u := c.base + "/api/hotels/" + url.PathEscape(hotelID)
	return c.do(ctx, http.MethodDelete, "delete_hotel", u, nil, "", nil)
}

func (c *Client) ListBookings(ctx context.Context, q domain.BookingsQuery) (domain.BookingsPage, error) {
	v := url.Values{}
	v.Set("limit", fmt.Sprint(q.Limit))
	v.Set("page", fmt.Sprint(q.Page))
	var out domain.BookingsPage
	err := c.do(ctx, http.MethodGet, "list_bookings", c.base+"/api/bookings?"+v.Encode(), nil, "", &out)
	return out, err
}

// ---- Internals ----

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
// Nothing is retried: mutations are not idempotent and a failed call is
// surfaced to the operator, who re-submits.
func (c *Client) do(ctx context.Context, method, endpoint, u string, body io.Reader, contentType string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "saavi-admin/1.0")
	req.Header.Set(TunnelHeader, c.skip)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("backend", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Str("endpoint", endpoint).Str("err_type", observability.LabelErr(err)).Msg("backend unreachable")
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("backend", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Message: messageFrom(b)}
		log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("backend rejected request")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	return nil
}

// messageFrom pulls "message" (or "error") out of a JSON error body.
func messageFrom(b []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	return strings.TrimSpace(body.Error)
}

var errUnexpectedShape = errors.New("unexpected hotel list shape")
