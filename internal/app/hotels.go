package app

import (
	"context"
	"slices"
	"sync"

	"saavi_admin/internal/domain"
)

// HotelList is the hotels table. Every refresh takes a new generation; a
// response that comes back after a newer refresh (or after Invalidate) is
// dropped instead of overwriting fresher rows.
type HotelList struct {
	q *QueryService

	mu     sync.Mutex
	gen    uint64
	rows   []domain.Hotel
	loaded bool
	err    string
}

func NewHotelList(q *QueryService) *HotelList { return &HotelList{q: q} }

// Refresh fetches the list. fresh bypasses the read cache, as after a
// mutation. It returns the rows the table shows once the call settles.
func (l *HotelList) Refresh(ctx context.Context, fresh bool) ([]domain.Hotel, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	rows, err := l.q.ListHotels(ctx, fresh)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return slices.Clone(l.rows), nil
	}
	if err != nil {
		l.err = DisplayMessage(err, msgHotelsFailed)
		return slices.Clone(l.rows), err
	}
	l.rows, l.loaded, l.err = rows, true, ""
	return slices.Clone(l.rows), nil
}

// Invalidate makes every in-flight refresh stale.
func (l *HotelList) Invalidate() {
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()
}

func (l *HotelList) Rows() []domain.Hotel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.rows)
}

func (l *HotelList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *HotelList) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Find returns the row with the given hotel id.
func (l *HotelList) Find(id string) (domain.Hotel, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range l.rows {
		if h.HotelID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}
