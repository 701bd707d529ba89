package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackgods/telehealth-scheduling/internal/booking"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleBookingError maps booking errors onto status codes. Validation
// failures carry the offending field.
func handleBookingError(w http.ResponseWriter, err error) {
	if ve, ok := booking.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   string(ve.Kind),
			Field:   ve.Field,
			Details: ve.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrLabAppointmentNotFound):
		writeError(w, http.StatusNotFound, "lab_appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrServiceAppointmentNotFound):
		writeError(w, http.StatusNotFound, "service_appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
