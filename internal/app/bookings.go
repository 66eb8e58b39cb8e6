package app

import (
	"context"
	"slices"
	"sync"

	"saavi_admin/internal/domain"
)

type BookingsView struct {
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Rows    []domain.Booking `json:"rows"`
	HasMore bool             `json:"hasMore"`
	CanPrev bool             `json:"canPrev"`
	Error   string           `json:"error,omitempty"`
}

// BookingPager pages through bookings. A page is "more" when it came back
// full-sized; the backend reports no total.
type BookingPager struct {
	q     *QueryService
	limit int

	mu      sync.Mutex
	gen     uint64
	page    int
	rows    []domain.Booking
	hasMore bool
	loaded  bool
	err     string
}

func NewBookingPager(q *QueryService, limit int) *BookingPager {
	if limit <= 0 {
		limit = 10
	}
	return &BookingPager{q: q, limit: limit, page: 1}
}

// Load refetches the current page from the backend, skipping the cache.
func (p *BookingPager) Load(ctx context.Context) (BookingsView, error) {
	p.mu.Lock()
	page := p.page
	p.mu.Unlock()
	return p.goTo(ctx, page, true)
}

// View loads the first page on first use and returns the current state.
// Page changes afterwards read through the shared cache.
func (p *BookingPager) View(ctx context.Context) (BookingsView, error) {
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()
	if !loaded {
		return p.Load(ctx)
	}
	return p.snapshot(), nil
}

func (p *BookingPager) Next(ctx context.Context) (BookingsView, error) {
	p.mu.Lock()
	if !p.hasMore {
		p.mu.Unlock()
		return p.snapshot(), nil
	}
	page := p.page + 1
	p.mu.Unlock()
	return p.goTo(ctx, page, false)
}

func (p *BookingPager) Prev(ctx context.Context) (BookingsView, error) {
	p.mu.Lock()
	if p.page <= 1 {
		p.mu.Unlock()
		return p.snapshot(), nil
	}
	page := p.page - 1
	p.mu.Unlock()
	return p.goTo(ctx, page, false)
}

// Row returns booking i of the current page.
func (p *BookingPager) Row(i int) (domain.Booking, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.rows) {
		return domain.Booking{}, false
	}
	return p.rows[i], true
}

func (p *BookingPager) Invalidate() {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
}

// goTo moves to page only when the fetch succeeds; a failed fetch keeps the
// previous page on screen with the error.
func (p *BookingPager) goTo(ctx context.Context, page int, fresh bool) (BookingsView, error) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	res, err := p.q.ListBookings(ctx, domain.BookingsQuery{Limit: p.limit, Page: page}, fresh)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return p.snapshot(), nil
	}
	if err != nil {
		p.err = DisplayMessage(err, msgBookingsFailed)
		p.mu.Unlock()
		return p.snapshot(), err
	}
	p.page, p.rows, p.loaded, p.err = page, res.Items, true, ""
	p.hasMore = len(res.Items) == p.limit
	p.mu.Unlock()
	return p.snapshot(), nil
}

func (p *BookingPager) snapshot() BookingsView {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := slices.Clone(p.rows)
	if rows == nil {
		rows = []domain.Booking{}
	}
	return BookingsView{
		Page:    p.page,
		Limit:   p.limit,
		Rows:    rows,
		HasMore: p.hasMore,
		CanPrev: p.page > 1,
		Error:   p.err,
	}
}
