package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"saavi_admin/internal/domain"
)

type ModalKind string

const (
	ModalNone    ModalKind = "none"
	ModalAdd     ModalKind = "add"
	ModalEdit    ModalKind = "edit"
	ModalDelete  ModalKind = "delete"
	ModalBooking ModalKind = "booking"
)

type Deps struct {
	Backend  domain.HotelBackend
	Queries  *QueryService
	Audit    domain.AuditLog // optional
	Form     FormOptions
	PageSize int

	// OnSubmission observes every mutation outcome; action is one of
	// create|update|price|delete and outcome one of the Outcome constants.
	OnSubmission func(action, outcome string)
}

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type HotelRow struct {
	domain.Hotel
	PriceEdit PriceView `json:"priceEdit"`
}

type FormView struct {
	Mode          Mode              `json:"mode"`
	Draft         domain.HotelDraft `json:"draft"`
	Images        []Preview         `json:"images"`
	MaxImages     int               `json:"maxImages"`
	Recommended   int               `json:"recommendedImages,omitempty"`
	Facilities    []FacilityOption  `json:"facilityOptions"`
	RatePlanDraft domain.RatePlan   `json:"ratePlanDraft"`
	Submitting    bool              `json:"submitting"`
	Error         string            `json:"error,omitempty"`
}

type ModalView struct {
	Kind      ModalKind       `json:"kind"`
	HotelID   string          `json:"hotelId,omitempty"`
	HotelName string          `json:"hotelName,omitempty"`
	Booking   *domain.Booking `json:"booking,omitempty"`
	Form      *FormView       `json:"form,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Console is the dashboard state of one operator session: the hotels table
// with its inline price editors, the bookings pager and at most one open
// modal. List fetches run outside the console lock and are reconciled by
// generation; modal actions, including their submits, hold it.
type Console struct {
	id   string
	deps Deps

	Hotels   *HotelList
	Bookings *BookingPager

	mu       sync.Mutex
	modal    ModalKind
	target   domain.Hotel
	booking  domain.Booking
	form     *HotelForm
	modalErr string
	closed   bool

	pmu    sync.Mutex
	prices map[string]*PriceEditor
}

func NewConsole(id string, deps Deps) *Console {
	return &Console{
		id:       id,
		deps:     deps,
		Hotels:   NewHotelList(deps.Queries),
		Bookings: NewBookingPager(deps.Queries, deps.PageSize),
		modal:    ModalNone,
		prices:   map[string]*PriceEditor{},
	}
}

func (c *Console) ID() string { return c.id }

// ListHotels refreshes the hotels table and returns its rows together with
// the state of each row's price cell.
func (c *Console) ListHotels(ctx context.Context, fresh bool) ([]HotelRow, error) {
	hs, err := c.Hotels.Refresh(ctx, fresh)
	c.syncPrices(hs)
	return c.rows(hs), err
}

func (c *Console) rows(hs []domain.Hotel) []HotelRow {
	out := make([]HotelRow, len(hs))
	for i, h := range hs {
		out[i] = HotelRow{Hotel: h, PriceEdit: c.priceEditor(h).View()}
	}
	return out
}

func (c *Console) BeginPriceEdit(hotelID string) (PriceView, error) {
	h, ok := c.Hotels.Find(hotelID)
	if !ok {
		return PriceView{}, domain.ErrNotFound
	}
	return c.priceEditor(h).Begin(), nil
}

func (c *Console) CancelPrice(hotelID string) (PriceView, error) {
	h, ok := c.Hotels.Find(hotelID)
	if !ok {
		return PriceView{}, domain.ErrNotFound
	}
	return c.priceEditor(h).Cancel(), nil
}

// ConfirmPrice sets and sends the new price; the table is refetched on
// success.
func (c *Console) ConfirmPrice(ctx context.Context, hotelID string, price float64) (PriceView, error) {
	h, ok := c.Hotels.Find(hotelID)
	if !ok {
		return PriceView{}, domain.ErrNotFound
	}
	pe := c.priceEditor(h)
	if err := pe.Set(price); err != nil {
		c.observe("price", OutcomeRejected)
		return pe.View(), err
	}
	err := pe.Confirm(ctx, c.deps.Backend)
	c.record(ctx, "price", hotelID, err)
	return pe.View(), err
}

func (c *Console) priceEditor(h domain.Hotel) *PriceEditor {
	c.pmu.Lock()
	defer c.pmu.Unlock()
	pe, ok := c.prices[h.HotelID]
	if !ok {
		pe = NewPriceEditor(h.HotelID, h.PricePerNight, c.afterMutation)
		c.prices[h.HotelID] = pe
	}
	return pe
}

// syncPrices drops editors for rows that disappeared and refreshes the
// saved price of idle ones.
func (c *Console) syncPrices(hs []domain.Hotel) {
	c.pmu.Lock()
	defer c.pmu.Unlock()
	seen := make(map[string]bool, len(hs))
	for _, h := range hs {
		seen[h.HotelID] = true
		if pe, ok := c.prices[h.HotelID]; ok {
			pe.Sync(h.PricePerNight)
		}
	}
	for id := range c.prices {
		if !seen[id] {
			delete(c.prices, id)
		}
	}
}

// afterMutation is the completion callback shared by every write: drop the
// cached reads and refetch the hotel list from the backend.
func (c *Console) afterMutation(ctx context.Context) {
	c.deps.Queries.InvalidateHotels(ctx)
	c.deps.Queries.InvalidateBookings(ctx)
	hs, err := c.Hotels.Refresh(ctx, true)
	if err != nil {
		log.Warn().Err(err).Str("session", c.id).Msg("hotel refetch failed")
		return
	}
	c.syncPrices(hs)
}

func (c *Console) BookingsView(ctx context.Context) (BookingsView, error) {
	return c.Bookings.View(ctx)
}

func (c *Console) NextBookings(ctx context.Context) (BookingsView, error) {
	return c.Bookings.Next(ctx)
}

func (c *Console) PrevBookings(ctx context.Context) (BookingsView, error) {
	return c.Bookings.Prev(ctx)
}

// OpenAdd opens an empty create form, discarding any other modal.
func (c *Console) OpenAdd() ModalView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.modal = ModalAdd
	c.form = c.newForm(NewCreateForm(c.deps.Form))
	return c.viewLocked()
}

// OpenEdit opens the edit form seeded with the listed row.
func (c *Console) OpenEdit(ctx context.Context, hotelID string) (ModalView, error) {
	h, err := c.lookup(ctx, hotelID)
	if err != nil {
		return c.Modal(), err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.modal, c.target = ModalEdit, h
	c.form = c.newForm(NewEditForm(h, c.deps.Form))
	return c.viewLocked(), nil
}

func (c *Console) OpenDelete(ctx context.Context, hotelID string) (ModalView, error) {
	h, err := c.lookup(ctx, hotelID)
	if err != nil {
		return c.Modal(), err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.modal, c.target = ModalDelete, h
	return c.viewLocked(), nil
}

// OpenBooking shows row i of the current bookings page.
func (c *Console) OpenBooking(i int) (ModalView, error) {
	b, ok := c.Bookings.Row(i)
	if !ok {
		return c.Modal(), domain.ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.modal, c.booking = ModalBooking, b
	return c.viewLocked(), nil
}

func (c *Console) CloseModal() ModalView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.viewLocked()
}

func (c *Console) Modal() ModalView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Confirm runs the primary action of the open modal.
func (c *Console) Confirm(ctx context.Context) (ModalView, error) {
	c.mu.Lock()
	kind := c.modal
	c.mu.Unlock()
	switch kind {
	case ModalAdd, ModalEdit:
		return c.SubmitForm(ctx)
	case ModalDelete:
		return c.ConfirmDelete(ctx)
	}
	return c.Modal(), domain.ErrModalMismatch
}

// WithForm applies fn to the open hotel form.
func (c *Console) WithForm(fn func(f *HotelForm) error) (ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return c.viewLocked(), domain.ErrNoActiveForm
	}
	err := fn(c.form)
	return c.viewLocked(), err
}

// SubmitForm sends the open form. On success the modal closes and the table
// is refetched; on failure it stays open with the message on the form.
func (c *Console) SubmitForm(ctx context.Context) (ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	if f == nil {
		return c.viewLocked(), domain.ErrNoActiveForm
	}
	action := "create"
	if f.Mode() == ModeEdit {
		action = "update"
	}
	err := f.Submit(ctx, c.deps.Backend)
	if errors.Is(err, domain.ErrValidation) {
		c.observe(action, OutcomeRejected)
	} else {
		c.record(ctx, action, f.HotelID(), err)
	}
	return c.viewLocked(), err
}

// ConfirmDelete deletes the hotel named by the open confirm dialog, then
// refetches. A failed delete keeps the dialog open with the message.
func (c *Console) ConfirmDelete(ctx context.Context) (ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal != ModalDelete {
		return c.viewLocked(), domain.ErrModalMismatch
	}
	id := c.target.HotelID
	c.modalErr = ""
	err := c.deps.Backend.DeleteHotel(ctx, id)
	c.record(ctx, "delete", id, err)
	if err != nil {
		err = submitFailed("delete", msgDeleteFailed, err)
		c.modalErr = DisplayMessage(err, msgDeleteFailed)
		return c.viewLocked(), err
	}
	c.resetLocked()
	c.afterMutation(ctx)
	return c.viewLocked(), nil
}

// Close ends the session: the modal and its draft are dropped and any list
// fetch still in flight is ignored when it lands.
func (c *Console) Close() {
	c.mu.Lock()
	c.closed = true
	c.resetLocked()
	c.mu.Unlock()
	c.Hotels.Invalidate()
	c.Bookings.Invalidate()
}

func (c *Console) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Console) newForm(f *HotelForm) *HotelForm {
	f.OnClose = func() {
		if c.form == f {
			c.resetLocked()
		}
	}
	f.OnComplete = c.afterMutation
	return f
}

func (c *Console) lookup(ctx context.Context, hotelID string) (domain.Hotel, error) {
	if h, ok := c.Hotels.Find(hotelID); ok {
		return h, nil
	}
	if c.Hotels.Loaded() {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if _, err := c.Hotels.Refresh(ctx, false); err != nil {
		return domain.Hotel{}, err
	}
	if h, ok := c.Hotels.Find(hotelID); ok {
		return h, nil
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (c *Console) resetLocked() {
	c.modal = ModalNone
	c.target = domain.Hotel{}
	c.booking = domain.Booking{}
	c.form = nil
	c.modalErr = ""
}

func (c *Console) viewLocked() ModalView {
	v := ModalView{Kind: c.modal, Error: c.modalErr}
	switch c.modal {
	case ModalEdit, ModalDelete:
		v.HotelID, v.HotelName = c.target.HotelID, c.target.Name
	case ModalBooking:
		b := c.booking
		v.Booking = &b
	}
	if f := c.form; f != nil {
		rec := 0
		if f.Mode() == ModeCreate {
			rec = RecommendedImages
		}
		v.Form = &FormView{
			Recommended:   rec,
			Mode:          f.Mode(),
			Draft:         f.Draft(),
			Images:        f.Images.Previews(),
			MaxImages:     f.Images.Max(),
			Facilities:    f.Facilities.Options(),
			RatePlanDraft: f.RatePlans.Draft(),
			Submitting:    f.Submitting(),
			Error:         f.Err(),
		}
	}
	return v
}

func (c *Console) observe(action, outcome string) {
	if c.deps.OnSubmission != nil {
		c.deps.OnSubmission(action, outcome)
	}
}

// record reports a mutation that reached the backend. Local validation
// rejections are only observed, never audited.
func (c *Console) record(ctx context.Context, action, hotelID string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	c.observe(action, outcome)
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("session", c.id).Str("action", action).Str("hotel_id", hotelID).Msg("submission")

	if c.deps.Audit == nil {
		return
	}
	s := domain.Submission{HotelID: hotelID, Action: action, OK: err == nil, CreatedAt: time.Now().UTC()}
	if err != nil {
		s.Message = DisplayMessage(err, err.Error())
	}
	if aerr := c.deps.Audit.RecordSubmission(ctx, s); aerr != nil {
		log.Warn().Err(aerr).Msg("audit write failed")
	}
}
