package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
)

type outcome struct {
	action string
	result string
}

func newConsole(be domain.HotelBackend, audit domain.AuditLog) (*app.Console, *[]outcome) {
	var seen []outcome
	c := app.NewConsole("s1", app.Deps{
		Backend:  be,
		Queries:  app.NewQueryService(be, &fakeCache{}, time.Minute),
		Audit:    audit,
		PageSize: 10,
		OnSubmission: func(action, result string) {
			seen = append(seen, outcome{action, result})
		},
	})
	return c, &seen
}

func TestConsole_CreateGrandPalace(t *testing.T) {
	be := &fakeBackend{}
	audit := &fakeAudit{}
	c, seen := newConsole(be, audit)
	ctx := context.Background()

	rows, err := c.ListHotels(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, rows)

	v := c.OpenAdd()
	require.Equal(t, app.ModalAdd, v.Kind)
	require.NotNil(t, v.Form)
	assert.Equal(t, app.RecommendedImages, v.Form.Recommended)

	_, err = c.WithForm(func(f *app.HotelForm) error {
		fillCreate(t, f, "Grand Palace", 2000)
		return f.Images.Add(ctx, pngs(5))
	})
	require.NoError(t, err)

	v, err = c.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.ModalNone, v.Kind)
	assert.Nil(t, v.Form)

	names := []string{}
	for _, h := range c.Hotels.Rows() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"Grand Palace"}, names)
	assert.Equal(t, []outcome{{"create", app.OutcomeOK}}, *seen)
	require.Len(t, audit.subs, 1)
	assert.Equal(t, "create", audit.subs[0].Action)
	assert.True(t, audit.subs[0].OK)
}

func TestConsole_FailedSubmitKeepsModal(t *testing.T) {
	be := &fakeBackend{err: &backendErr{msg: "Invalid location"}}
	audit := &fakeAudit{}
	c, _ := newConsole(be, audit)
	ctx := context.Background()

	c.OpenAdd()
	_, err := c.WithForm(func(f *app.HotelForm) error {
		fillCreate(t, f, "Grand Palace", 2000)
		return nil
	})
	require.NoError(t, err)

	v, err := c.SubmitForm(ctx)
	require.Error(t, err)
	assert.Equal(t, app.ModalAdd, v.Kind)
	assert.Equal(t, "Invalid location", v.Form.Error)
	require.Len(t, audit.subs, 1)
	assert.False(t, audit.subs[0].OK)
	assert.Equal(t, "Invalid location", audit.subs[0].Message)
}

func TestConsole_ValidationFailureNotAudited(t *testing.T) {
	audit := &fakeAudit{}
	c, seen := newConsole(&fakeBackend{}, audit)
	c.OpenAdd()

	_, err := c.SubmitForm(context.Background())
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, audit.subs)
	assert.Equal(t, []outcome{{"create", app.OutcomeRejected}}, *seen)
}

func TestConsole_ModalsAreExclusive(t *testing.T) {
	be := &fakeBackend{
		hotels:   []domain.Hotel{existingHotel()},
		bookings: map[int][]domain.Booking{1: bookingRows(2)},
	}
	c, _ := newConsole(be, nil)
	ctx := context.Background()

	c.OpenAdd()
	_, err := c.WithForm(func(f *app.HotelForm) error {
		return f.SetFields(app.FieldPatch{Name: ptr("Draft to lose")})
	})
	require.NoError(t, err)

	v, err := c.OpenEdit(ctx, "lx1abc-k2j3h4g5")
	require.NoError(t, err)
	assert.Equal(t, app.ModalEdit, v.Kind)
	assert.Equal(t, "Sea Breeze", v.Form.Draft.Name)

	_, err = c.BookingsView(ctx)
	require.NoError(t, err)
	v, err = c.OpenBooking(1)
	require.NoError(t, err)
	assert.Equal(t, app.ModalBooking, v.Kind)
	assert.Nil(t, v.Form)
	assert.Equal(t, "Guest1", v.Booking.FirstName)

	_, err = c.WithForm(func(*app.HotelForm) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNoActiveForm)

	_, err = c.Confirm(ctx)
	assert.ErrorIs(t, err, domain.ErrModalMismatch)

	v = c.CloseModal()
	assert.Equal(t, app.ModalNone, v.Kind)

	_, err = c.OpenEdit(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.OpenBooking(7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsole_DeleteThenRefetch(t *testing.T) {
	be := &fakeBackend{hotels: []domain.Hotel{existingHotel(), {HotelID: "h2", Name: "Other"}}}
	audit := &fakeAudit{}
	c, _ := newConsole(be, audit)
	ctx := context.Background()

	_, err := c.ListHotels(ctx, false)
	require.NoError(t, err)

	v, err := c.OpenDelete(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, "Other", v.HotelName)

	v, err = c.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.ModalNone, v.Kind)
	require.Len(t, c.Hotels.Rows(), 1)
	assert.Equal(t, "Sea Breeze", c.Hotels.Rows()[0].Name)
	assert.Equal(t, "delete", audit.subs[0].Action)
}

func TestConsole_DeleteFailureKeepsDialog(t *testing.T) {
	be := &fakeBackend{hotels: []domain.Hotel{existingHotel()}}
	c, _ := newConsole(be, nil)
	ctx := context.Background()

	_, err := c.OpenDelete(ctx, "lx1abc-k2j3h4g5")
	require.NoError(t, err)
	be.err = errors.New("boom")

	v, err := c.ConfirmDelete(ctx)
	require.Error(t, err)
	assert.Equal(t, app.ModalDelete, v.Kind)
	assert.Equal(t, "Failed to delete hotel", v.Error)
}

func TestConsole_PriceEditRefetches(t *testing.T) {
	be := &fakeBackend{hotels: []domain.Hotel{existingHotel()}}
	c, seen := newConsole(be, nil)
	ctx := context.Background()

	rows, err := c.ListHotels(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, app.PriceViewing, rows[0].PriceEdit.State)

	_, err = c.BeginPriceEdit("lx1abc-k2j3h4g5")
	require.NoError(t, err)
	lists := be.count("ListHotels")

	pv, err := c.ConfirmPrice(ctx, "lx1abc-k2j3h4g5", 175)
	require.NoError(t, err)
	assert.Equal(t, app.PriceViewing, pv.State)
	assert.Equal(t, lists+1, be.count("ListHotels"), "fresh refetch after price change")
	assert.Equal(t, []outcome{{"price", app.OutcomeOK}}, *seen)

	_, err = c.BeginPriceEdit("unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsole_NegativePriceIsRejectedLocally(t *testing.T) {
	be := &fakeBackend{hotels: []domain.Hotel{existingHotel()}}
	audit := &fakeAudit{}
	c, seen := newConsole(be, audit)
	ctx := context.Background()

	_, err := c.ListHotels(ctx, false)
	require.NoError(t, err)
	_, err = c.BeginPriceEdit("lx1abc-k2j3h4g5")
	require.NoError(t, err)

	_, err = c.ConfirmPrice(ctx, "lx1abc-k2j3h4g5", -5)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, be.count("UpdateHotel"))
	assert.Empty(t, audit.subs)
	assert.Equal(t, []outcome{{"price", app.OutcomeRejected}}, *seen)
}

func TestConsole_MutationDropsCachedBookings(t *testing.T) {
	be := &fakeBackend{
		hotels:   []domain.Hotel{existingHotel(), {HotelID: "h2", Name: "Other"}},
		bookings: map[int][]domain.Booking{1: bookingRows(2)},
	}
	cache := &fakeCache{}
	c := app.NewConsole("s1", app.Deps{
		Backend:  be,
		Queries:  app.NewQueryService(be, cache, time.Minute),
		PageSize: 10,
	})
	ctx := context.Background()

	_, err := c.OpenDelete(ctx, "h2")
	require.NoError(t, err)
	_, err = c.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hotels", "bookings:*"}, cache.dels)
}

func TestConsole_CloseDropsDraft(t *testing.T) {
	c, _ := newConsole(&fakeBackend{}, nil)
	c.OpenAdd()
	c.Close()
	assert.True(t, c.Closed())
	assert.Equal(t, app.ModalNone, c.Modal().Kind)
}
