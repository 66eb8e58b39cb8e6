package memstore

import (
	"errors"
	"testing"
	"time"

	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
)

func newStore(ttl time.Duration) *Sessions {
	return NewSessions(ttl, func(id string) *app.Console {
		return app.NewConsole(id, app.Deps{Queries: app.NewQueryService(nil, nil, 0)})
	})
}

func TestSessions_CreateGetDelete(t *testing.T) {
	s := newStore(time.Hour)
	con := s.Create()
	if con.ID() == "" {
		t.Fatal("empty session id")
	}
	got, err := s.Get(con.ID())
	if err != nil || got != con {
		t.Fatalf("get: %v %p", err, got)
	}
	if !s.Delete(con.ID()) {
		t.Fatal("delete reported missing session")
	}
	if !con.Closed() {
		t.Fatal("deleted console not closed")
	}
	if _, err := s.Get(con.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Delete(con.ID()) {
		t.Fatal("second delete should report missing")
	}
}

func TestSessions_ExpireClosesConsole(t *testing.T) {
	s := newStore(20 * time.Millisecond)
	con := s.Create()
	con.OpenAdd()

	time.Sleep(40 * time.Millisecond)
	s.Sweep()

	if _, err := s.Get(con.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if !con.Closed() || con.Modal().Kind != app.ModalNone {
		t.Fatal("expired console still open")
	}
}

func TestSessions_CloseAll(t *testing.T) {
	s := newStore(time.Hour)
	a, b := s.Create(), s.Create()
	s.CloseAll()
	if s.Len() != 0 || !a.Closed() || !b.Closed() {
		t.Fatalf("sessions left open: %d", s.Len())
	}
}
