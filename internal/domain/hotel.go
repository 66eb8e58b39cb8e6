package domain

// SuiteType is one of the fixed suite-type tags a hotel can carry.
type SuiteType string

const (
	SuiteLuxury   SuiteType = "luxury"
	SuiteBusiness SuiteType = "business"
	SuiteResort   SuiteType = "resort"
	SuiteBoutique SuiteType = "boutique"
)

var SuiteTypes = []SuiteType{SuiteLuxury, SuiteBusiness, SuiteResort, SuiteBoutique}

func (t SuiteType) Valid() bool {
	for _, s := range SuiteTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Hotel is a hotel record as the backend returns it.
type Hotel struct {
	HotelID         string      `json:"hotelId"`
	Name            string      `json:"name"`
	Address         string      `json:"address,omitempty"`
	City            string      `json:"city"`
	State           string      `json:"state,omitempty"`
	Country         string      `json:"country"`
	Location        string      `json:"location,omitempty"`
	Rating          string      `json:"rating,omitempty"`
	HomeDescription string      `json:"homeDescription,omitempty"`
	Description     string      `json:"description"`
	PricePerNight   float64     `json:"pricePerNight"`
	Type            []SuiteType `json:"type"`
	Facilities      []string    `json:"facilities"`
	Amenities       []string    `json:"amenities,omitempty"`
	RatePlans       []RatePlan  `json:"ratePlans,omitempty"`
	HomeImageURL    string      `json:"homeImageUrl,omitempty"`
	ImageURLs       []string    `json:"imageUrls"`
}

type RatePlan struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Upload is a file picked by an operator that has not been persisted yet.
type Upload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// HomeImage holds either a persisted URL or a staged upload, never both.
type HomeImage struct {
	URL  string  `json:"url,omitempty"`
	File *Upload `json:"file,omitempty"`
}

// HotelDraft is the in-progress record edited by a hotel form. Gallery
// images are owned by the form's image set, not by the draft.
type HotelDraft struct {
	HotelID         string      `json:"hotelId"`
	Name            string      `json:"name"`
	Address         string      `json:"address"`
	City            string      `json:"city"`
	State           string      `json:"state"`
	Country         string      `json:"country"`
	Location        string      `json:"location"`
	Rating          string      `json:"rating"`
	HomeDescription string      `json:"homeDescription"`
	Description     string      `json:"description"`
	PricePerNight   float64     `json:"pricePerNight"`
	Type            []SuiteType `json:"type"`
	Facilities      []string    `json:"facilities"`
	Amenities       []string    `json:"amenities"`
	RatePlans       []RatePlan  `json:"ratePlans"`
	HomeImage       HomeImage   `json:"homeImage"`
}

// DraftFromHotel seeds a draft from a fetched record. Slices are copied so
// edits never alias the list view's rows.
func DraftFromHotel(h Hotel) HotelDraft {
	return HotelDraft{
		HotelID:         h.HotelID,
		Name:            h.Name,
		Address:         h.Address,
		City:            h.City,
		State:           h.State,
		Country:         h.Country,
		Location:        h.Location,
		Rating:          h.Rating,
		HomeDescription: h.HomeDescription,
		Description:     h.Description,
		PricePerNight:   h.PricePerNight,
		Type:            append([]SuiteType(nil), h.Type...),
		Facilities:      append([]string(nil), h.Facilities...),
		Amenities:       append([]string(nil), h.Amenities...),
		RatePlans:       append([]RatePlan(nil), h.RatePlans...),
		HomeImage:       HomeImage{URL: h.HomeImageURL},
	}
}
