package memstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"saavi_admin/internal/adapters/observability"
	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
)

// Sessions keeps one console per operator session in memory. A session
// expires after ttl without use; its console is closed and its drafts are
// gone, as after a page reload.
type Sessions struct {
	c       *cache.Cache
	ttl     time.Duration
	factory func(id string) *app.Console
}

func NewSessions(ttl time.Duration, factory func(id string) *app.Console) *Sessions {
	sweep := time.Minute
	if ttl < sweep {
		sweep = ttl
	}
	s := &Sessions{c: cache.New(ttl, sweep), ttl: ttl, factory: factory}
	s.c.OnEvicted(func(id string, v any) {
		if con, ok := v.(*app.Console); ok {
			con.Close()
		}
		observability.ActiveSessions.Dec()
		log.Debug().Str("session", id).Msg("session closed")
	})
	return s
}

func (s *Sessions) Create() *app.Console {
	id := uuid.NewString()
	con := s.factory(id)
	s.c.Set(id, con, s.ttl)
	observability.ActiveSessions.Inc()
	return con
}

// Get returns the session's console and extends its lifetime.
func (s *Sessions) Get(id string) (*app.Console, error) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	con := v.(*app.Console)
	s.c.Set(id, con, s.ttl)
	return con, nil
}

func (s *Sessions) Delete(id string) bool {
	if _, ok := s.c.Get(id); !ok {
		return false
	}
	s.c.Delete(id)
	return true
}

func (s *Sessions) Len() int { return s.c.ItemCount() }

// Sweep evicts expired sessions now instead of waiting for the janitor.
func (s *Sessions) Sweep() { s.c.DeleteExpired() }

// CloseAll ends every session, on shutdown.
func (s *Sessions) CloseAll() {
	for id := range s.c.Items() {
		s.c.Delete(id)
	}
}
