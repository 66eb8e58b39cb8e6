package app

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"saavi_admin/internal/domain"
)

var DefaultFacilities = []string{
	"Free WiFi",
	"Parking",
	"Swimming Pool",
	"Gym",
	"Restaurant",
	"Room Service",
	"Spa",
	"Business Center",
	"Conference Room",
	"Bar/Lounge",
}

type FacilityOption struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// FacilityPicker is a checkbox list over the default facilities plus any
// custom ones added in this form. Custom options live only as long as the
// form does.
type FacilityPicker struct {
	options  []string
	selected []string
}

func NewFacilityPicker(selected []string) *FacilityPicker {
	p := &FacilityPicker{options: slices.Clone(DefaultFacilities)}
	for _, f := range selected {
		if f = strings.TrimSpace(f); f == "" || slices.Contains(p.selected, f) {
			continue
		}
		p.selected = append(p.selected, f)
		if !slices.Contains(p.options, f) {
			p.options = append(p.options, f)
		}
	}
	return p
}

// Toggle selects f if absent and deselects it if present. Only listed
// options can be toggled; new ones go through AddOption first.
func (p *FacilityPicker) Toggle(f string) error {
	f = strings.TrimSpace(f)
	if f == "" {
		return invalid("facilities", "Facility name is required")
	}
	if !slices.Contains(p.options, f) {
		return invalid("facilities", "Unknown facility %q", f)
	}
	if i := slices.Index(p.selected, f); i >= 0 {
		p.selected = slices.Delete(p.selected, i, i+1)
		return nil
	}
	p.selected = append(p.selected, f)
	return nil
}

// AddOption extends the option list, leaving the new option unselected.
func (p *FacilityPicker) AddOption(f string) bool {
	f = strings.TrimSpace(f)
	if f == "" || slices.Contains(p.options, f) {
		return false
	}
	p.options = append(p.options, f)
	return true
}

func (p *FacilityPicker) Selected() []string { return slices.Clone(p.selected) }

func (p *FacilityPicker) Options() []FacilityOption {
	out := make([]FacilityOption, len(p.options))
	for i, o := range p.options {
		out[i] = FacilityOption{Name: o, Selected: slices.Contains(p.selected, o)}
	}
	return out
}

type AmenityList struct{ items []string }

func NewAmenityList(items []string) *AmenityList {
	l := &AmenityList{}
	for _, it := range items {
		l.Add(it)
	}
	return l
}

// Add appends the trimmed amenity; empty input and duplicates are ignored.
func (l *AmenityList) Add(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || slices.Contains(l.items, s) {
		return false
	}
	l.items = append(l.items, s)
	return true
}

func (l *AmenityList) RemoveAt(i int) error {
	if i < 0 || i >= len(l.items) {
		return invalid("amenities", "No amenity at position %d", i+1)
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

func (l *AmenityList) Items() []string { return slices.Clone(l.items) }

// RatePlanEditor stages one plan at a time and commits it to the list.
type RatePlanEditor struct {
	plans []domain.RatePlan
	draft domain.RatePlan
}

func NewRatePlanEditor(plans []domain.RatePlan) *RatePlanEditor {
	return &RatePlanEditor{plans: slices.Clone(plans)}
}

func (e *RatePlanEditor) SetDraft(p domain.RatePlan) { e.draft = p }

func (e *RatePlanEditor) Draft() domain.RatePlan { return e.draft }

// Commit appends the draft when it is complete and priced above zero, then
// clears it. An incomplete draft leaves the list and the draft untouched.
func (e *RatePlanEditor) Commit() error {
	d := e.draft
	d.Name, d.Code, d.Description = strings.TrimSpace(d.Name), strings.TrimSpace(d.Code), strings.TrimSpace(d.Description)
	if d.Name == "" || d.Code == "" || d.Description == "" || !(d.Price > 0) {
		return invalid("ratePlans", "Rate plan needs a name, code, description and a price above 0")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	e.plans = append(e.plans, d)
	e.draft = domain.RatePlan{}
	return nil
}

func (e *RatePlanEditor) RemoveAt(i int) error {
	if i < 0 || i >= len(e.plans) {
		return invalid("ratePlans", "No rate plan at position %d", i+1)
	}
	e.plans = slices.Delete(e.plans, i, i+1)
	return nil
}

func (e *RatePlanEditor) Plans() []domain.RatePlan { return slices.Clone(e.plans) }
