package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"saavi_admin/internal/domain"
)

const (
	hotelsKey   = "hotels"
	bookingsKey = "bookings:"
)

// QueryService reads hotels and booking pages through an optional cache.
// Consoles share one instance.
type QueryService struct {
	be       domain.HotelBackend
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(be domain.HotelBackend, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{be: be, cache: c, cacheTTL: ttl}
}

// ListHotels serves from cache unless fresh is set; fresh reads refill it.
func (s *QueryService) ListHotels(ctx context.Context, fresh bool) ([]domain.Hotel, error) {
	var hs []domain.Hotel
	if !fresh && s.cache != nil {
		if ok, err := s.cache.Get(ctx, hotelsKey, &hs); ok {
			return hs, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("hotel cache read failed")
		}
	}
	hs, err := s.be.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, hotelsKey, hs)
	return hs, nil
}

// ListBookings reads one page, bypassing the cache when fresh is set.
func (s *QueryService) ListBookings(ctx context.Context, q domain.BookingsQuery, fresh bool) (domain.BookingsPage, error) {
	key := fmt.Sprintf("%s%d:%d", bookingsKey, q.Limit, q.Page)
	var out domain.BookingsPage
	if !fresh && s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	out, err := s.be.ListBookings(ctx, q)
	if err != nil {
		return domain.BookingsPage{}, err
	}
	s.store(ctx, key, out)
	return out, nil
}

// InvalidateHotels drops the cached list after a mutation.
func (s *QueryService) InvalidateHotels(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelsKey); err != nil {
		log.Warn().Err(err).Msg("hotel cache invalidation failed")
	}
}

// InvalidateBookings drops every cached bookings page.
func (s *QueryService) InvalidateBookings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, bookingsKey+"*"); err != nil {
		log.Warn().Err(err).Msg("bookings cache invalidation failed")
	}
}

func (s *QueryService) store(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	sec := int(s.cacheTTL.Seconds())
	if sec < 1 {
		sec = 1
	}
	if err := s.cache.Set(ctx, key, v, sec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
