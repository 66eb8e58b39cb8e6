package app

import (
	"errors"
	"fmt"

	"saavi_admin/internal/domain"
)

// ValidationError blocks an action locally; nothing was sent to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SubmitError is a failed backend mutation. Message is what the operator sees.
type SubmitError struct {
	Action  string
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Action + ": " + e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// DisplayMessage reduces err to an operator-facing string: local validation
// messages and backend-provided messages pass through, anything else becomes
// fallback.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *SubmitError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// userMessager is implemented by backend errors that carry a message meant
// for the operator.
type userMessager interface{ UserMessage() string }

func submitFailed(action, fallback string, err error) error {
	return &SubmitError{Action: action, Message: DisplayMessage(err, fallback), Err: err}
}

const (
	msgAddFailed      = "Failed to add hotel"
	msgUpdateFailed   = "Failed to update hotel"
	msgPriceFailed    = "Failed to update price"
	msgDeleteFailed   = "Failed to delete hotel"
	msgHotelsFailed   = "Failed to fetch hotels"
	msgBookingsFailed = "Failed to fetch bookings"
)
