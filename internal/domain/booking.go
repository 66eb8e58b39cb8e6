package domain

// Booking is a guest reservation. Bookings are owned by the backend and
// never mutated by the console.
type Booking struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	UserID      string  `json:"userId"`
	CheckIn     string  `json:"checkIn"`
	CheckOut    string  `json:"checkOut"`
	BookingDate string  `json:"bookingDate"`
	Destination string  `json:"destination"`
	HotelID     string  `json:"hotelId"`
	Rooms       int     `json:"rooms"`
	Guests      int     `json:"guests"`
	Cost        float64 `json:"cost"`
	Type        string  `json:"type"`
	PromoCode   string  `json:"promoCode,omitempty"`
}

func (b Booking) GuestName() string {
	switch {
	case b.FirstName == "":
		return b.LastName
	case b.LastName == "":
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

type BookingsQuery struct {
	Limit int
	Page  int
}

type BookingsPage struct {
	Items []Booking `json:"data"`
}
