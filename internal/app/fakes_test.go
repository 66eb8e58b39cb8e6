package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"saavi_admin/internal/domain"
)

// ---- fakes ----

type call struct {
	Method  string
	HotelID string
	Payload domain.Payload
	Query   domain.BookingsQuery
}

type fakeBackend struct {
	mu       sync.Mutex
	hotels   []domain.Hotel
	bookings map[int][]domain.Booking // by page
	err      error                    // returned by mutations when set
	listErr  error
	calls    []call
}

func (f *fakeBackend) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "ListHotels"})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Hotel(nil), f.hotels...), nil
}

func (f *fakeBackend) CreateHotel(ctx context.Context, p domain.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "CreateHotel", Payload: p})
	if f.err != nil {
		return f.err
	}
	id, _ := p.Value("hotelId")
	name, _ := p.Value("name")
	f.hotels = append(f.hotels, domain.Hotel{HotelID: id, Name: name})
	return nil
}

func (f *fakeBackend) UpdateHotel(ctx context.Context, id string, p domain.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "UpdateHotel", HotelID: id, Payload: p})
	if f.err != nil {
		return f.err
	}
	return nil
}

func (f *fakeBackend) DeleteHotel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "DeleteHotel", HotelID: id})
	if f.err != nil {
		return f.err
	}
	for i, h := range f.hotels {
		if h.HotelID == id {
			f.hotels = append(f.hotels[:i], f.hotels[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListBookings(ctx context.Context, q domain.BookingsQuery) (domain.BookingsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "ListBookings", Query: q})
	if f.listErr != nil {
		return domain.BookingsPage{}, f.listErr
	}
	return domain.BookingsPage{Items: f.bookings[q.Page]}, nil
}

func (f *fakeBackend) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *fakeBackend) last(method string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method {
			return f.calls[i], true
		}
	}
	return call{}, false
}

// fakeCache stores JSON so any destination type round-trips.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	if prefix, ok := strings.CutSuffix(key, "*"); ok {
		for k := range c.store {
			if strings.HasPrefix(k, prefix) {
				delete(c.store, k)
			}
		}
		return nil
	}
	delete(c.store, key)
	return nil
}

type fakeAudit struct {
	mu   sync.Mutex
	subs []domain.Submission
}

func (a *fakeAudit) RecordSubmission(ctx context.Context, s domain.Submission) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = append(a.subs, s)
	return nil
}

func (a *fakeAudit) ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Submission(nil), a.subs...), nil
}

// backendErr mimics an adapter error that carries a server message.
type backendErr struct{ msg string }

func (e *backendErr) Error() string       { return "backend: " + e.msg }
func (e *backendErr) UserMessage() string { return e.msg }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func png(name string) domain.Upload {
	return domain.Upload{Name: name, Data: append([]byte(nil), pngHeader...)}
}

func pngs(n int) []domain.Upload {
	out := make([]domain.Upload, n)
	for i := range out {
		out[i] = png("img" + string(rune('a'+i)) + ".png")
	}
	return out
}

func ptr[T any](v T) *T { return &v }
