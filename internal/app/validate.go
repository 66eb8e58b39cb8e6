package app

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"saavi_admin/internal/domain"
)

// Rule sets differ between create and edit: a new listing needs every
// field the storefront renders, an edit only the ones older records are
// guaranteed to have.
type createRules struct {
	Name            string             `json:"name" validate:"required"`
	Address         string             `json:"address" validate:"required"`
	City            string             `json:"city" validate:"required"`
	State           string             `json:"state" validate:"required"`
	Country         string             `json:"country" validate:"required"`
	Location        string             `json:"location" validate:"required,url"`
	Rating          string             `json:"rating" validate:"required,rating"`
	HomeDescription string             `json:"homeDescription" validate:"markup"`
	Type            []domain.SuiteType `json:"type" validate:"min=1,dive,suite"`
	PricePerNight   float64            `json:"pricePerNight" validate:"gte=0"`
}

type updateRules struct {
	Name          string             `json:"name" validate:"required"`
	City          string             `json:"city" validate:"required"`
	Country       string             `json:"country" validate:"required"`
	Location      string             `json:"location" validate:"omitempty,url"`
	Rating        string             `json:"rating" validate:"omitempty,rating"`
	Type          []domain.SuiteType `json:"type" validate:"min=1,dive,suite"`
	PricePerNight float64            `json:"pricePerNight" validate:"gte=0"`
}

var fieldLabels = map[string]string{
	"name":            "Hotel name",
	"address":         "Address",
	"city":            "City",
	"state":           "State",
	"country":         "Country",
	"location":        "Location",
	"rating":          "Rating",
	"homeDescription": "Home description",
	"type":            "Suite type",
	"pricePerNight":   "Price per night",
}

var tags = regexp.MustCompile(`<[^>]*>`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		return validRating(fl.Field().String())
	})
	_ = v.RegisterValidation("suite", func(fl validator.FieldLevel) bool {
		return domain.SuiteType(fl.Field().String()).Valid()
	})
	// rich text editors emit "<p><br></p>" for an empty document
	_ = v.RegisterValidation("markup", func(fl validator.FieldLevel) bool {
		return !markupEmpty(fl.Field().String())
	})
	return v
}

func validRating(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && f >= 0 && f <= 5
}

func markupEmpty(s string) bool {
	text := html.UnescapeString(tags.ReplaceAllString(s, ""))
	return strings.TrimSpace(text) == ""
}

func checkDraft(mode Mode, d domain.HotelDraft) error {
	var err error
	if mode == ModeCreate {
		err = validate.Struct(createRules{
			Name: d.Name, Address: d.Address, City: d.City, State: d.State, Country: d.Country,
			Location: d.Location, Rating: d.Rating, HomeDescription: d.HomeDescription,
			Type: d.Type, PricePerNight: d.PricePerNight,
		})
	} else {
		err = validate.Struct(updateRules{
			Name: d.Name, City: d.City, Country: d.Country, Location: d.Location,
			Rating: d.Rating, Type: d.Type, PricePerNight: d.PricePerNight,
		})
	}
	return translate(err)
}

// translate turns the first validator failure into a ValidationError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch fe.Tag() {
	case "required", "markup":
		return invalid(field, "%s is required", label)
	case "url":
		return invalid(field, "%s must be a valid URL", label)
	case "rating":
		return invalid(field, "%s must be a number between 0 and 5", label)
	case "gte":
		return invalid(field, "%s must not be negative", label)
	case "min":
		return invalid(field, "Select at least one %s", strings.ToLower(label))
	case "suite":
		return invalid(field, "Unknown suite type %q", fe.Value())
	}
	return invalid(field, "%s is invalid", label)
}
