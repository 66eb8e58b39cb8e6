package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrNoActiveForm  = errors.New("no hotel form is open")
	ErrModalMismatch = errors.New("action does not match the open modal")
)

// HotelBackend is the REST backend the console drives.
type HotelBackend interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
	CreateHotel(ctx context.Context, p Payload) error
	UpdateHotel(ctx context.Context, hotelID string, p Payload) error
	DeleteHotel(ctx context.Context, hotelID string) error
	ListBookings(ctx context.Context, q BookingsQuery) (BookingsPage, error)
}

// Payload is an ordered multipart body: plain fields first, then files.
type Payload struct {
	Fields []Field
	Files  []FilePart
}

type Field struct{ Name, Value string }

type FilePart struct {
	Field  string
	Upload Upload
}

func (p *Payload) Add(name, value string) { p.Fields = append(p.Fields, Field{name, value}) }

func (p *Payload) Attach(field string, u Upload) {
	p.Files = append(p.Files, FilePart{Field: field, Upload: u})
}

// Value returns the first value of a plain field.
func (p Payload) Value(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// FilesFor returns the uploads attached under a field, in order.
func (p Payload) FilesFor(field string) []Upload {
	var out []Upload
	for _, f := range p.Files {
		if f.Field == field {
			out = append(out, f.Upload)
		}
	}
	return out
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	// Del removes key; a trailing "*" removes every key with that prefix.
	Del(ctx context.Context, key string) error
}

// Submission is one mutation the console sent to the backend.
type Submission struct {
	ID        int64     `json:"id"`
	HotelID   string    `json:"hotelId"`
	Action    string    `json:"action"` // create|update|price|delete
	OK        bool      `json:"ok"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditLog interface {
	RecordSubmission(ctx context.Context, s Submission) error
	ListSubmissions(ctx context.Context, limit int) ([]Submission, error)
}
