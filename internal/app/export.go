package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"saavi_admin/internal/domain"
)

const bookingsSheet = "Bookings"

var bookingColumns = []any{
	"Guest", "Email", "User ID", "Hotel ID", "Destination", "Room type",
	"Check-in", "Check-out", "Booked on", "Rooms", "Guests", "Cost", "Promo code",
}

// WriteBookingsXLSX writes one row per booking under a header row.
func WriteBookingsXLSX(w io.Writer, rows []domain.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(bookingsSheet, "A1", &bookingColumns); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, b := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			b.GuestName(), b.Email, b.UserID, b.HotelID, b.Destination, b.Type,
			day(b.CheckIn), day(b.CheckOut), day(b.BookingDate), b.Rooms, b.Guests, b.Cost, b.PromoCode,
		}
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(bookingsSheet, "A", "B", 24)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// day trims an ISO timestamp to its date; anything else passes through.
func day(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

// ExportBookings writes the bookings page currently on screen.
func (c *Console) ExportBookings(ctx context.Context, w io.Writer) error {
	v, err := c.Bookings.View(ctx)
	if err != nil {
		return err
	}
	return WriteBookingsXLSX(w, v.Rows)
}
