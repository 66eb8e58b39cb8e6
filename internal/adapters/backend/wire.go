package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"saavi_admin/internal/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodePayload writes plain fields first, then file parts, each file part
// carrying its sniffed content type rather than application/octet-stream.
func encodePayload(p domain.Payload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, f := range p.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	for _, f := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Upload.Name)))
		ct := f.Upload.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := w.Write(f.Upload.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// wireHotel tolerates the shapes older backend versions produced: a single
// type string instead of a list, numbers sent as strings, Mongo-style ids.
type wireHotel struct {
	domain.Hotel
	MongoID       string          `json:"_id"`
	RawType       json.RawMessage `json:"type"`
	RawPrice      json.RawMessage `json:"pricePerNight"`
	RawRating     json.RawMessage `json:"rating"`
	RawFacilities json.RawMessage `json:"facilities"`
	RawAmenities  json.RawMessage `json:"amenities"`
}

func (w wireHotel) toDomain() domain.Hotel {
	h := w.Hotel
	if h.HotelID == "" {
		h.HotelID = w.MongoID
	}
	h.Type = nil
	for _, s := range stringList(w.RawType) {
		h.Type = append(h.Type, domain.SuiteType(strings.ToLower(s)))
	}
	h.Facilities = stringList(w.RawFacilities)
	h.Amenities = stringList(w.RawAmenities)
	h.PricePerNight = flexFloat(w.RawPrice)
	h.Rating = flexString(w.RawRating)
	return h
}

func decodeHotels(raw json.RawMessage) ([]domain.Hotel, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Hotel{}, nil
	}
	var items []wireHotel
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode hotels: %w", err)
		}
	case '{':
		var env struct {
			Data   []wireHotel `json:"data"`
			Hotels []wireHotel `json:"hotels"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode hotels: %w", err)
		}
		items = env.Data
		if items == nil {
			items = env.Hotels
		}
	default:
		return nil, errUnexpectedShape
	}
	out := make([]domain.Hotel, 0, len(items))
	for _, w := range items {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// stringList accepts ["a","b"], "a", or a JSON-encoded list inside a string.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	return []string{s}
}

func flexFloat(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
