package app

import (
	"context"
	"sync"

	"saavi_admin/internal/domain"
)

type PriceState string

const (
	PriceViewing    PriceState = "viewing"
	PriceEditing    PriceState = "editing"
	PriceSubmitting PriceState = "submitting"
)

type PriceView struct {
	HotelID string     `json:"hotelId"`
	State   PriceState `json:"state"`
	Price   float64    `json:"price"`
	Error   string     `json:"error,omitempty"`
}

// PriceEditor is the inline price cell of one hotel row.
type PriceEditor struct {
	hotelID    string
	onComplete func(ctx context.Context)

	mu      sync.Mutex
	state   PriceState
	current float64
	pending float64
	err     string
}

func NewPriceEditor(hotelID string, current float64, onComplete func(ctx context.Context)) *PriceEditor {
	return &PriceEditor{hotelID: hotelID, current: current, pending: current, state: PriceViewing, onComplete: onComplete}
}

// Begin switches the cell to an input seeded with the current price.
func (e *PriceEditor) Begin() PriceView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == PriceViewing {
		e.state, e.pending, e.err = PriceEditing, e.current, ""
	}
	return e.viewLocked()
}

func (e *PriceEditor) Set(price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != PriceEditing {
		return invalid("price", "Price is not being edited")
	}
	if price < 0 {
		return invalid("price", "Price must not be negative")
	}
	e.pending = price
	return nil
}

// Cancel reverts to the saved price without a request.
func (e *PriceEditor) Cancel() PriceView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == PriceEditing {
		e.state, e.pending, e.err = PriceViewing, e.current, ""
	}
	return e.viewLocked()
}

// Confirm sends the pending price. A failure leaves the cell in editing
// mode with the error shown inline.
func (e *PriceEditor) Confirm(ctx context.Context, be domain.HotelBackend) error {
	e.mu.Lock()
	if e.state != PriceEditing {
		e.mu.Unlock()
		return invalid("price", "Price is not being edited")
	}
	e.state, e.err = PriceSubmitting, ""
	price := e.pending
	e.mu.Unlock()

	var p domain.Payload
	p.Add("hotelId", e.hotelID)
	p.Add("pricePerNight", formatPrice(price))
	err := be.UpdateHotel(ctx, e.hotelID, p)

	e.mu.Lock()
	if err != nil {
		err = submitFailed("price", msgPriceFailed, err)
		e.state, e.err = PriceEditing, DisplayMessage(err, msgPriceFailed)
		e.mu.Unlock()
		return err
	}
	e.state, e.current = PriceViewing, price
	e.mu.Unlock()

	if e.onComplete != nil {
		e.onComplete(ctx)
	}
	return nil
}

func (e *PriceEditor) View() PriceView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Sync takes a freshly fetched price while the cell is not being edited.
func (e *PriceEditor) Sync(price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == PriceViewing {
		e.current, e.pending = price, price
	}
}

func (e *PriceEditor) viewLocked() PriceView {
	v := PriceView{HotelID: e.hotelID, State: e.state, Price: e.current, Error: e.err}
	if e.state != PriceViewing {
		v.Price = e.pending
	}
	return v
}
