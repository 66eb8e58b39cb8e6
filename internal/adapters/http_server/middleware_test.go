package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestLogger_TagsSession(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(Logger(zerolog.New(&buf)))
	r.Post("/v1/sessions/{sid}/modal/add", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/abc-123/modal/add", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Session string `json:"session"`
		Route   string `json:"route"`
		Status  int    `json:"status"`
		Bytes   int    `json:"bytes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if line.Session != "abc-123" || line.Route != "/v1/sessions/{sid}/modal/add" || line.Status != 200 || line.Bytes != 2 {
		t.Fatalf("unexpected log line %+v", line)
	}
}

func TestTimeout_SurfacesAsGatewayTimeout(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Timeout(20 * time.Millisecond))
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		writeError(w, r.Context().Err())
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
}
