package booking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/hackgods/telehealth-scheduling/internal/catalog"
	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

const (
	FastingInstructions     = "Fasting is required for 8-12 hours before your test. Water is permitted."
	NoPrepInstructions      = "No special preparation needed."
	ArriveEarlyInstructions = "Please arrive 15 minutes early for your appointment."

	notificationSuccess = "success"
)

// Rules is what a booking is validated against at the moment it is made.
type Rules struct {
	Slots schedule.SlotCatalog
	Today civil.Date
}

func (r Rules) checkSlot(flow schedule.Flow, date civil.Date, availability schedule.Availability, label string) error {
	if !schedule.IsBookable(date, availability, r.Today) {
		return invalid(UnavailableDate, "date")
	}
	if !r.Slots.Has(flow, label) {
		return invalid(UnknownSlot, "time")
	}
	return nil
}

// AssembleAppointment validates a doctor booking and builds the record with
// the given id.
func AssembleAppointment(in DoctorBooking, id int, r Rules) (Appointment, error) {
	switch {
	case in.Date.IsZero():
		return Appointment{}, invalid(MissingField, "date")
	case in.Time == "":
		return Appointment{}, invalid(MissingField, "time")
	case strings.TrimSpace(in.ReasonForVisit) == "":
		return Appointment{}, invalid(MissingField, "reasonForVisit")
	}

	// Unparseable availability entries never match, so the error adds nothing here.
	availability, _ := in.Doctor.Schedule()
	if err := r.checkSlot(schedule.FlowDoctor, in.Date, availability, in.Time); err != nil {
		return Appointment{}, err
	}

	kind := in.Type
	if kind == "" {
		offered := in.Doctor.OfferedTypes()
		if len(offered) == 0 {
			return Appointment{}, invalid(UnsupportedOption, "type")
		}
		kind = offered[0]
	}
	if !in.Doctor.Offers(kind) {
		return Appointment{}, invalid(UnsupportedOption, "type")
	}

	return Appointment{
		ID:             id,
		Doctor:         in.Doctor,
		Date:           in.Date,
		Time:           in.Time,
		Type:           kind,
		Status:         StatusUpcoming,
		ReasonForVisit: in.ReasonForVisit,
	}, nil
}

// AssembleLabAppointment builds a lab appointment and its card. stamp is a
// millisecond timestamp shared by both ids.
func AssembleLabAppointment(in LabBooking, stamp int64, r Rules) (LabAppointment, LabAppointmentCard, error) {
	switch {
	case in.Location == "":
		return LabAppointment{}, LabAppointmentCard{}, invalid(MissingField, "location")
	case in.Date.IsZero():
		return LabAppointment{}, LabAppointmentCard{}, invalid(MissingField, "date")
	case in.Time == "":
		return LabAppointment{}, LabAppointmentCard{}, invalid(MissingField, "time")
	case strings.TrimSpace(in.PatientName) == "":
		return LabAppointment{}, LabAppointmentCard{}, invalid(MissingField, "patientName")
	}
	if !slices.Contains(catalog.LabLocations, in.Location) {
		return LabAppointment{}, LabAppointmentCard{}, invalid(UnsupportedOption, "location")
	}
	if err := r.checkSlot(schedule.FlowLab, in.Date, schedule.Unrestricted(), in.Time); err != nil {
		return LabAppointment{}, LabAppointmentCard{}, err
	}

	appt := LabAppointment{
		ID:       fmt.Sprintf("LA-%d", stamp),
		Test:     in.Test,
		Date:     in.Date,
		Time:     in.Time,
		Location: in.Location,
		Status:   StatusUpcoming,
	}
	prep := NoPrepInstructions
	if in.Test.RequiresFasting {
		prep = FastingInstructions
	}
	card := LabAppointmentCard{
		ID:                      fmt.Sprintf("LC-%d", stamp),
		AppointmentID:           appt.ID,
		PatientName:             in.PatientName,
		TestName:                in.Test.Name,
		Date:                    in.Date,
		Time:                    in.Time,
		Location:                in.Location,
		QRCodeData:              "MH-LAB:" + appt.ID,
		PreparationInstructions: prep,
	}
	return appt, card, nil
}

func AssembleServiceAppointment(in ServiceBooking, stamp int64, r Rules) (HospitalServiceAppointment, HospitalServiceAppointmentCard, error) {
	switch {
	case in.ServiceName == "":
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, invalid(MissingField, "service")
	case in.Date.IsZero():
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, invalid(MissingField, "date")
	case in.Time == "":
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, invalid(MissingField, "time")
	case strings.TrimSpace(in.PatientName) == "":
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, invalid(MissingField, "patientName")
	}
	svc, ok := in.Hospital.Service(in.ServiceName)
	if !ok {
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, invalid(UnsupportedOption, "service")
	}
	if err := r.checkSlot(schedule.FlowHospitalService, in.Date, schedule.Unrestricted(), in.Time); err != nil {
		return HospitalServiceAppointment{}, HospitalServiceAppointmentCard{}, err
	}

	appt := HospitalServiceAppointment{
		ID:       fmt.Sprintf("HSA-%d", stamp),
		Hospital: in.Hospital,
		Service:  svc,
		Date:     in.Date,
		Time:     in.Time,
		Status:   StatusUpcoming,
	}
	card := HospitalServiceAppointmentCard{
		ID:                      fmt.Sprintf("HSC-%d", stamp),
		AppointmentID:           appt.ID,
		PatientName:             in.PatientName,
		HospitalName:            in.Hospital.Name,
		ServiceName:             svc.Name,
		Date:                    in.Date,
		Time:                    in.Time,
		Location:                in.Hospital.Location,
		QRCodeData:              "MH-SERVICE:" + appt.ID,
		PreparationInstructions: ArriveEarlyInstructions,
	}
	return appt, card, nil
}

func displayDate(d civil.Date) string {
	return d.In(time.UTC).Format("1/2/2006")
}

func appointmentNotification(a Appointment, at time.Time) Notification {
	return Notification{
		Title:     "Appointment Confirmed!",
		Message:   fmt.Sprintf("Your %s with %s on %s at %s is booked.", a.Type, a.Doctor.Name, a.Date, a.Time),
		Type:      notificationSuccess,
		Timestamp: at,
	}
}

func labNotification(a LabAppointment, at time.Time) Notification {
	return Notification{
		Title:     "Lab Test Scheduled!",
		Message:   fmt.Sprintf("Your lab test for \"%s\" is scheduled for %s at %s.", a.Test.Name, displayDate(a.Date), a.Time),
		Type:      notificationSuccess,
		Timestamp: at,
	}
}

func serviceNotification(a HospitalServiceAppointment, at time.Time) Notification {
	return Notification{
		Title: "Service Scheduled!",
		Message: fmt.Sprintf("Your appointment for \"%s\" at %s is scheduled for %s at %s.",
			a.Service.Name, a.Hospital.Name, displayDate(a.Date), a.Time),
		Type:      notificationSuccess,
		Timestamp: at,
	}
}
