package booking

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/hackgods/telehealth-scheduling/internal/catalog"
)

type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "Upcoming"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

func ParseStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return AppointmentStatus(s), true
	}
	return "", false
}

type Appointment struct {
	ID                      int                      `json:"id"`
	Doctor                  catalog.Doctor           `json:"doctor"`
	Date                    civil.Date               `json:"date"`
	Time                    string                   `json:"time"`
	Type                    catalog.ConsultationType `json:"type"`
	Status                  AppointmentStatus        `json:"status"`
	ReasonForVisit          string                   `json:"reasonForVisit"`
	PreparationInstructions string                   `json:"preparationInstructions,omitempty"`
	ConsultationNotes       string                   `json:"consultationNotes,omitempty"`
}

// FromRecord converts a stored or upstream history entry. Unknown statuses are
// treated as Completed.
func FromRecord(r catalog.AppointmentRecord) Appointment {
	status, ok := ParseStatus(r.Status)
	if !ok {
		status = StatusCompleted
	}
	return Appointment{
		ID:                      r.ID,
		Doctor:                  r.Doctor,
		Date:                    r.Date,
		Time:                    r.Time,
		Type:                    r.Type,
		Status:                  status,
		ReasonForVisit:          r.ReasonForVisit,
		PreparationInstructions: r.PreparationInstructions,
		ConsultationNotes:       r.ConsultationNotes,
	}
}

type LabAppointment struct {
	ID       string            `json:"id"`
	Test     catalog.LabTest   `json:"test"`
	Date     civil.Date        `json:"date"`
	Time     string            `json:"time"`
	Location string            `json:"location"`
	Status   AppointmentStatus `json:"status"`
}

type LabAppointmentCard struct {
	ID                      string     `json:"id"`
	AppointmentID           string     `json:"appointmentId"`
	PatientName             string     `json:"patientName"`
	TestName                string     `json:"testName"`
	Date                    civil.Date `json:"date"`
	Time                    string     `json:"time"`
	Location                string     `json:"location"`
	QRCodeData              string     `json:"qrCodeData"`
	PreparationInstructions string     `json:"preparationInstructions"`
}

type HospitalServiceAppointment struct {
	ID       string                  `json:"id"`
	Hospital catalog.Hospital        `json:"hospital"`
	Service  catalog.HospitalService `json:"service"`
	Date     civil.Date              `json:"date"`
	Time     string                  `json:"time"`
	Status   AppointmentStatus       `json:"status"`
}

type HospitalServiceAppointmentCard struct {
	ID                      string     `json:"id"`
	AppointmentID           string     `json:"appointmentId"`
	PatientName             string     `json:"patientName"`
	HospitalName            string     `json:"hospitalName"`
	ServiceName             string     `json:"serviceName"`
	Date                    civil.Date `json:"date"`
	Time                    string     `json:"time"`
	Location                string     `json:"location"`
	QRCodeData              string     `json:"qrCodeData"`
	PreparationInstructions string     `json:"preparationInstructions"`
}

// DoctorBooking is the input of the doctor appointment flow. An empty Type
// selects the doctor's first offered consultation type.
type DoctorBooking struct {
	Doctor         catalog.Doctor
	Date           civil.Date
	Time           string
	Type           catalog.ConsultationType
	ReasonForVisit string
}

type LabBooking struct {
	Test        catalog.LabTest
	Location    string
	Date        civil.Date
	Time        string
	PatientName string
}

type ServiceBooking struct {
	Hospital    catalog.Hospital
	ServiceName string
	Date        civil.Date
	Time        string
	PatientName string
}

type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
