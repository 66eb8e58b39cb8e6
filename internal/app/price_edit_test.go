package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saavi_admin/internal/app"
)

func TestPriceEditor_ConfirmSendsHotelIDAndPrice(t *testing.T) {
	be := &fakeBackend{}
	completed := 0
	e := app.NewPriceEditor("h1", 100, func(context.Context) { completed++ })

	assert.Equal(t, app.PriceEditing, e.Begin().State)
	require.NoError(t, e.Set(149.5))
	require.NoError(t, e.Confirm(context.Background(), be))

	v := e.View()
	assert.Equal(t, app.PriceViewing, v.State)
	assert.Equal(t, 149.5, v.Price)
	assert.Equal(t, 1, completed)

	c, ok := be.last("UpdateHotel")
	require.True(t, ok)
	assert.Equal(t, "h1", c.HotelID)
	id, _ := c.Payload.Value("hotelId")
	price, _ := c.Payload.Value("pricePerNight")
	assert.Equal(t, "h1", id)
	assert.Equal(t, "149.5", price)
	assert.Len(t, c.Payload.Fields, 2)
	assert.Empty(t, c.Payload.Files)
}

func TestPriceEditor_FailureStaysEditing(t *testing.T) {
	be := &fakeBackend{err: errors.New("502")}
	completed := false
	e := app.NewPriceEditor("h1", 100, func(context.Context) { completed = true })
	e.Begin()
	require.NoError(t, e.Set(80))

	require.Error(t, e.Confirm(context.Background(), be))
	v := e.View()
	assert.Equal(t, app.PriceEditing, v.State)
	assert.Equal(t, "Failed to update price", v.Error)
	assert.Equal(t, 80.0, v.Price)
	assert.False(t, completed)

	be.err = &backendErr{msg: "Hotel not found"}
	require.Error(t, e.Confirm(context.Background(), be))
	assert.Equal(t, "Hotel not found", e.View().Error)
}

func TestPriceEditor_CancelAndNegative(t *testing.T) {
	be := &fakeBackend{}
	e := app.NewPriceEditor("h1", 100, nil)

	assert.Error(t, e.Set(10), "not editing yet")
	e.Begin()
	assert.Error(t, e.Set(-1))
	require.NoError(t, e.Set(10))

	v := e.Cancel()
	assert.Equal(t, app.PriceViewing, v.State)
	assert.Equal(t, 100.0, v.Price)
	assert.Error(t, e.Confirm(context.Background(), be))
	assert.Empty(t, be.calls)
}
