// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
)

const (
	maxUploadBytes = 32 << 20
	maxAuditLimit  = 200
)

// SessionStore hands out per-operator consoles.
type SessionStore interface {
	Create() *app.Console
	Get(id string) (*app.Console, error)
	Delete(id string) bool
}

type Handlers struct {
	Sessions SessionStore
	Audit    domain.AuditLog // nil when the audit log is disabled
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type consoleHandler func(w http.ResponseWriter, r *http.Request, c *app.Console)

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/audit", h.listAudit)
	s.mux.Post("/v1/sessions", h.createSession)
	s.mux.Route("/v1/sessions/{sid}", func(r chi.Router) {
		r.Delete("/", h.deleteSession)

		r.Get("/hotels", h.with(h.listHotels))
		r.Post("/hotels/{hotelID}/price/edit", h.with(h.beginPrice))
		r.Post("/hotels/{hotelID}/price/confirm", h.with(h.confirmPrice))
		r.Post("/hotels/{hotelID}/price/cancel", h.with(h.cancelPrice))

		r.Get("/bookings", h.with(h.bookings))
		r.Post("/bookings/next", h.with(h.nextBookings))
		r.Post("/bookings/prev", h.with(h.prevBookings))
		r.Get("/bookings/export.xlsx", h.with(h.exportBookings))

		r.Get("/modal", h.with(h.modal))
		r.Post("/modal/add", h.with(h.openAdd))
		r.Post("/modal/edit/{hotelID}", h.with(h.openEdit))
		r.Post("/modal/delete/{hotelID}", h.with(h.openDelete))
		r.Post("/modal/booking/{index}", h.with(h.openBooking))
		r.Post("/modal/close", h.with(h.closeModal))
		r.Post("/modal/confirm", h.with(h.confirmModal))

		r.Patch("/form", h.with(h.patchForm))
		r.Put("/form/home-image", h.with(h.putHomeImage))
		r.Post("/form/images", h.with(h.addImages))
		r.Delete("/form/images/{index}", h.with(h.removeImage))
		r.Post("/form/facilities/toggle", h.with(h.toggleFacility))
		r.Post("/form/facilities/options", h.with(h.addFacilityOption))
		r.Post("/form/amenities", h.with(h.addAmenity))
		r.Delete("/form/amenities/{index}", h.with(h.removeAmenity))
		r.Put("/form/rate-plan-draft", h.with(h.putRatePlanDraft))
		r.Post("/form/rate-plans", h.with(h.commitRatePlan))
		r.Delete("/form/rate-plans/{index}", h.with(h.removeRatePlan))
		r.Post("/form/submit", h.with(h.submitForm))
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemDoc(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemDoc(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps console errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var ve *app.ValidationError
	var se *app.SubmitError
	switch {
	case errors.As(err, &ve):
		writeProblemDoc(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusBadRequest, Field: ve.Field, Detail: ve.Message})
	case errors.Is(err, domain.ErrNoActiveForm), errors.Is(err, domain.ErrModalMismatch):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusGatewayTimeout, "Backend timed out", app.DisplayMessage(err, "Backend did not respond in time"))
	case errors.As(err, &se):
		writeProblem(w, http.StatusBadGateway, "Backend request failed", se.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("console request failed")
		writeProblem(w, http.StatusBadGateway, "Backend request failed", app.DisplayMessage(err, "Backend request failed"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers a GET with an ETag, or 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be valid JSON")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be a non-negative integer")
		return 0, false
	}
	return i, true
}

func (h *Handlers) with(fn consoleHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.Sessions.Get(chi.URLParam(r, "sid"))
		if err != nil {
			writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
			return
		}
		fn(w, r, c)
	}
}

// ---- sessions ----

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	c := h.Sessions.Create()
	log.Info().Str("session", c.ID()).Msg("session opened")
	writeJSON(w, http.StatusCreated, map[string]any{"sessionId": c.ID(), "modal": c.Modal()})
}

func (h *Handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Delete(chi.URLParam(r, "sid")) {
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request, c *app.Console) {
	fresh := r.URL.Query().Get("fresh") == "1"
	rows, err := c.ListHotels(r.Context(), fresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, map[string]any{"hotels": rows})
}

func (h *Handlers) beginPrice(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.BeginPriceEdit(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) confirmPrice(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var body struct {
		Price *float64 `json:"price"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Price == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid input", "price is required")
		return
	}
	v, err := c.ConfirmPrice(r.Context(), chi.URLParam(r, "hotelID"), *body.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) cancelPrice(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.CancelPrice(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ---- bookings ----

func (h *Handlers) bookings(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.BookingsView(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, v)
}

func (h *Handlers) nextBookings(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.NextBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) prevBookings(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.PrevBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) exportBookings(w http.ResponseWriter, r *http.Request, c *app.Console) {
	v, err := c.BookingsView(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings-page-%d.xlsx"`, v.Page))
	if err := c.ExportBookings(r.Context(), w); err != nil {
		log.Error().Err(err).Msg("bookings export failed")
	}
}

// ---- modals ----

func (h *Handlers) modal(w http.ResponseWriter, r *http.Request, c *app.Console) {
	writeJSON(w, http.StatusOK, c.Modal())
}

func (h *Handlers) openAdd(w http.ResponseWriter, r *http.Request, c *app.Console) {
	writeJSON(w, http.StatusOK, c.OpenAdd())
}

func (h *Handlers) openEdit(w http.ResponseWriter, r *http.Request, c *app.Console) {
	respond(w)(c.OpenEdit(r.Context(), chi.URLParam(r, "hotelID")))
}

func (h *Handlers) openDelete(w http.ResponseWriter, r *http.Request, c *app.Console) {
	respond(w)(c.OpenDelete(r.Context(), chi.URLParam(r, "hotelID")))
}

func (h *Handlers) openBooking(w http.ResponseWriter, r *http.Request, c *app.Console) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	respond(w)(c.OpenBooking(i))
}

func (h *Handlers) closeModal(w http.ResponseWriter, r *http.Request, c *app.Console) {
	writeJSON(w, http.StatusOK, c.CloseModal())
}

func (h *Handlers) confirmModal(w http.ResponseWriter, r *http.Request, c *app.Console) {
	respond(w)(c.Confirm(r.Context()))
}

func respond(w http.ResponseWriter) func(app.ModalView, error) {
	return func(v app.ModalView, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// ---- hotel form ----

func (h *Handlers) patchForm(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var p app.FieldPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.SetFields(p) }))
}

func (h *Handlers) putHomeImage(w http.ResponseWriter, r *http.Request, c *app.Console) {
	ups, ok := readUploads(w, r, "file")
	if !ok {
		return
	}
	if len(ups) != 1 {
		writeProblem(w, http.StatusBadRequest, "Invalid upload", `exactly one "file" part is required`)
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.SetHomeImage(ups[0]) }))
}

func (h *Handlers) addImages(w http.ResponseWriter, r *http.Request, c *app.Console) {
	ups, ok := readUploads(w, r, "files")
	if !ok {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.Images.Add(r.Context(), ups) }))
}

func (h *Handlers) removeImage(w http.ResponseWriter, r *http.Request, c *app.Console) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.Images.RemoveAt(i) }))
}

func (h *Handlers) toggleFacility(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var body struct {
		Facility string `json:"facility"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error {
		return f.Facilities.Toggle(body.Facility)
	}))
}

func (h *Handlers) addFacilityOption(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var body struct {
		Facility string `json:"facility"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error {
		f.Facilities.AddOption(body.Facility)
		return nil
	}))
}

func (h *Handlers) addAmenity(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var body struct {
		Amenity string `json:"amenity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error {
		f.Amenities.Add(body.Amenity)
		return nil
	}))
}

func (h *Handlers) removeAmenity(w http.ResponseWriter, r *http.Request, c *app.Console) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.Amenities.RemoveAt(i) }))
}

func (h *Handlers) putRatePlanDraft(w http.ResponseWriter, r *http.Request, c *app.Console) {
	var p domain.RatePlan
	if !decodeJSON(w, r, &p) {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error {
		f.RatePlans.SetDraft(p)
		return nil
	}))
}

func (h *Handlers) commitRatePlan(w http.ResponseWriter, r *http.Request, c *app.Console) {
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.RatePlans.Commit() }))
}

func (h *Handlers) removeRatePlan(w http.ResponseWriter, r *http.Request, c *app.Console) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	respond(w)(c.WithForm(func(f *app.HotelForm) error { return f.RatePlans.RemoveAt(i) }))
}

func (h *Handlers) submitForm(w http.ResponseWriter, r *http.Request, c *app.Console) {
	respond(w)(c.SubmitForm(r.Context()))
}

// readUploads collects the file parts under field from a multipart body.
func readUploads(w http.ResponseWriter, r *http.Request, field string) ([]domain.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid upload", "body must be multipart/form-data")
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var out []domain.Upload
	for _, fh := range r.MultipartForm.File[field] {
		u, err := readPart(fh)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid upload", err.Error())
			return nil, false
		}
		out = append(out, u)
	}
	return out, true
}

func readPart(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// ---- audit ----

func (h *Handlers) listAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "audit log is disabled")
		return
	}
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxAuditLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxAuditLimit))
			return
		}
		limit = l
	}
	subs, err := h.Audit.ListSubmissions(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("audit query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "audit query failed")
		return
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}
