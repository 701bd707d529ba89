package api

import (
	"github.com/hackgods/telehealth-scheduling/internal/booking"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

// Dates are "YYYY-MM-DD" strings on the wire. An empty date is reported as a
// missing field by the booking service rather than rejected here.

type CreateAppointmentRequest struct {
	DoctorID       int    `json:"doctorId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Type           string `json:"type"`
	ReasonForVisit string `json:"reasonForVisit"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateLabAppointmentRequest struct {
	TestID      int    `json:"testId"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientName string `json:"patientName"`
}

type LabAppointmentResponse struct {
	Appointment booking.LabAppointment     `json:"appointment"`
	Card        booking.LabAppointmentCard `json:"card"`
}

type CreateServiceAppointmentRequest struct {
	HospitalID  int    `json:"hospitalId"`
	Service     string `json:"service"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientName string `json:"patientName"`
}

type ServiceAppointmentResponse struct {
	Appointment booking.HospitalServiceAppointment     `json:"appointment"`
	Card        booking.HospitalServiceAppointmentCard `json:"card"`
}

type CalendarResponse struct {
	Flow schedule.Flow `json:"flow"`
	schedule.MonthGrid
	// Slots is empty until a date is selected.
	Slots []string `json:"slots"`
}

type SlotsResponse struct {
	Flow  schedule.Flow `json:"flow"`
	Date  string        `json:"date,omitempty"`
	Slots []string      `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
