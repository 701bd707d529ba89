package booking

import (
	"errors"
	"fmt"
)

var (
	ErrAppointmentNotFound        = errors.New("appointment not found")
	ErrLabAppointmentNotFound     = errors.New("lab appointment not found")
	ErrServiceAppointmentNotFound = errors.New("service appointment not found")
	ErrInvalidStatusTransition    = errors.New("invalid status transition")
)

type ValidationKind string

const (
	MissingField      ValidationKind = "missing_field"
	UnavailableDate   ValidationKind = "unavailable_date"
	UnknownSlot       ValidationKind = "unknown_slot"
	UnsupportedOption ValidationKind = "unsupported_option"
)

// ValidationError rejects a booking before any state changes. Field is the
// JSON name of the offending input.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case UnavailableDate:
		return fmt.Sprintf("%s is not available for booking", e.Field)
	case UnknownSlot:
		return fmt.Sprintf("%s is not one of the offered slots", e.Field)
	case UnsupportedOption:
		return fmt.Sprintf("%s is not offered", e.Field)
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

func invalid(kind ValidationKind, field string) error {
	return &ValidationError{Kind: kind, Field: field}
}

// AsValidation reports whether err carries a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
