package app

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"saavi_admin/internal/domain"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// RecommendedImages is the gallery size suggested to operators creating a
// hotel. It is only enforced when FormOptions.MinImagesOnCreate asks for it.
const RecommendedImages = 5

type FormOptions struct {
	MaxImages         int
	MinImagesOnCreate int
	Now               func() time.Time
	Entropy           io.Reader
}

func (o FormOptions) withDefaults() FormOptions {
	if o.MaxImages <= 0 {
		o.MaxImages = 6
	}
	if o.MinImagesOnCreate < 0 {
		o.MinImagesOnCreate = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Entropy == nil {
		o.Entropy = rand.Reader
	}
	return o
}

// FieldPatch sets the scalar fields that are non-nil.
type FieldPatch struct {
	Name            *string             `json:"name,omitempty"`
	Address         *string             `json:"address,omitempty"`
	City            *string             `json:"city,omitempty"`
	State           *string             `json:"state,omitempty"`
	Country         *string             `json:"country,omitempty"`
	Location        *string             `json:"location,omitempty"`
	Rating          *string             `json:"rating,omitempty"`
	HomeDescription *string             `json:"homeDescription,omitempty"`
	Description     *string             `json:"description,omitempty"`
	PricePerNight   *float64            `json:"pricePerNight,omitempty"`
	Type            *[]domain.SuiteType `json:"type,omitempty"`
}

// HotelForm owns the draft behind the Add and Edit hotel modals and turns it
// into one multipart submission.
type HotelForm struct {
	mode  Mode
	opts  FormOptions
	draft domain.HotelDraft

	Images     *ImageSet
	Facilities *FacilityPicker
	Amenities  *AmenityList
	RatePlans  *RatePlanEditor

	// OnClose and OnComplete run after a successful submit, in that order.
	OnClose    func()
	OnComplete func(ctx context.Context)

	submitting bool
	lastErr    string
}

func NewCreateForm(opts FormOptions) *HotelForm {
	opts = opts.withDefaults()
	return &HotelForm{
		mode:       ModeCreate,
		opts:       opts,
		Images:     NewImageSet(opts.MaxImages, nil),
		Facilities: NewFacilityPicker(nil),
		Amenities:  NewAmenityList(nil),
		RatePlans:  NewRatePlanEditor(nil),
	}
}

// NewEditForm seeds a form from a fetched hotel. The hotel id is fixed for
// the form's lifetime.
func NewEditForm(h domain.Hotel, opts FormOptions) *HotelForm {
	opts = opts.withDefaults()
	d := domain.DraftFromHotel(h)
	return &HotelForm{
		mode:       ModeEdit,
		opts:       opts,
		draft:      d,
		Images:     NewImageSet(opts.MaxImages, h.ImageURLs),
		Facilities: NewFacilityPicker(d.Facilities),
		Amenities:  NewAmenityList(d.Amenities),
		RatePlans:  NewRatePlanEditor(d.RatePlans),
	}
}

func (f *HotelForm) Mode() Mode { return f.mode }

func (f *HotelForm) Err() string { return f.lastErr }

func (f *HotelForm) Submitting() bool { return f.submitting }

// Draft returns the current draft with the editors' collections folded in.
func (f *HotelForm) Draft() domain.HotelDraft {
	d := f.draft
	d.Type = append([]domain.SuiteType(nil), f.draft.Type...)
	d.Facilities = f.Facilities.Selected()
	d.Amenities = f.Amenities.Items()
	d.RatePlans = f.RatePlans.Plans()
	return d
}

func (f *HotelForm) SetFields(p FieldPatch) error {
	if p.PricePerNight != nil && *p.PricePerNight < 0 {
		return invalid("pricePerNight", "Price per night must not be negative")
	}
	if p.Type != nil {
		seen := map[domain.SuiteType]bool{}
		var types []domain.SuiteType
		for _, t := range *p.Type {
			t = domain.SuiteType(strings.ToLower(strings.TrimSpace(string(t))))
			if !t.Valid() {
				return invalid("type", "Unknown suite type %q", t)
			}
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
		f.draft.Type = types
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.draft.Name, p.Name)
	set(&f.draft.Address, p.Address)
	set(&f.draft.City, p.City)
	set(&f.draft.State, p.State)
	set(&f.draft.Country, p.Country)
	set(&f.draft.Location, p.Location)
	set(&f.draft.Rating, p.Rating)
	set(&f.draft.HomeDescription, p.HomeDescription)
	set(&f.draft.Description, p.Description)
	if p.PricePerNight != nil {
		f.draft.PricePerNight = *p.PricePerNight
	}
	return nil
}

// SetHomeImage replaces the home image with a staged upload.
func (f *HotelForm) SetHomeImage(u domain.Upload) error {
	sniffed, err := sniffImage(u)
	if err != nil {
		return err
	}
	f.draft.HomeImage = domain.HomeImage{File: &sniffed}
	return nil
}

// Prepare validates the draft and builds the request. It makes no network
// call; validation failures are returned as *ValidationError.
func (f *HotelForm) Prepare() (domain.Payload, error) {
	d := f.Draft()
	if err := checkDraft(f.mode, d); err != nil {
		return domain.Payload{}, err
	}
	n := f.Images.Len()
	if n > f.opts.MaxImages {
		return domain.Payload{}, invalid("images", "Maximum %d images allowed", f.opts.MaxImages)
	}
	if f.mode == ModeCreate && n < f.opts.MinImagesOnCreate {
		return domain.Payload{}, invalid("images", "Add at least %d images (%d selected)", f.opts.MinImagesOnCreate, n)
	}

	if f.mode == ModeCreate {
		id, err := NewHotelID(f.opts.Now(), f.opts.Entropy)
		if err != nil {
			return domain.Payload{}, err
		}
		d.HotelID = id
	}

	var p domain.Payload
	p.Add("hotelId", d.HotelID)
	p.Add("name", d.Name)
	p.Add("address", d.Address)
	p.Add("city", d.City)
	p.Add("state", d.State)
	p.Add("country", d.Country)
	p.Add("location", d.Location)
	p.Add("rating", d.Rating)
	p.Add("homeDescription", d.HomeDescription)
	p.Add("description", d.Description)
	p.Add("pricePerNight", formatPrice(d.PricePerNight))
	p.Add("type", jsonList(d.Type))
	p.Add("facilities", jsonList(d.Facilities))
	p.Add("amenities", jsonList(d.Amenities))
	p.Add("ratePlans", jsonList(d.RatePlans))

	switch {
	case d.HomeImage.File != nil:
		p.Attach("homeImageUrl", *d.HomeImage.File)
	case d.HomeImage.URL != "":
		p.Add("homeImageUrl", d.HomeImage.URL)
	}

	imageField := "imageFiles"
	if f.mode == ModeEdit {
		p.Add("imageUrls", jsonList(f.Images.KeptURLs()))
		imageField = "images"
	}
	for _, u := range f.Images.Staged() {
		p.Attach(imageField, u)
	}
	return p, nil
}

// Submit sends the draft. On failure the form keeps the operator-facing
// message in Err and stays usable for another attempt.
func (f *HotelForm) Submit(ctx context.Context, be domain.HotelBackend) error {
	if f.submitting {
		return invalid("form", "Submission already in progress")
	}
	f.submitting = true
	defer func() { f.submitting = false }()
	f.lastErr = ""

	p, err := f.Prepare()
	if err != nil {
		f.lastErr = DisplayMessage(err, "Please check the form")
		return err
	}

	if f.mode == ModeCreate {
		err = be.CreateHotel(ctx, p)
		if err != nil {
			err = submitFailed("create", msgAddFailed, err)
		}
	} else {
		err = be.UpdateHotel(ctx, f.draft.HotelID, p)
		if err != nil {
			err = submitFailed("update", msgUpdateFailed, err)
		}
	}
	if err != nil {
		f.lastErr = DisplayMessage(err, "")
		return err
	}
	if id, ok := p.Value("hotelId"); ok {
		f.draft.HotelID = id
	}

	if f.OnClose != nil {
		f.OnClose()
	}
	if f.OnComplete != nil {
		f.OnComplete(ctx)
	}
	return nil
}

// HotelID is the persisted id: fixed for edits, set after a successful create.
func (f *HotelForm) HotelID() string { return f.draft.HotelID }

func formatPrice(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) }

// jsonList encodes a slice, writing "[]" rather than "null" for empty ones.
func jsonList[T any](v []T) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
