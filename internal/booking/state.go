package booking

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/hackgods/telehealth-scheduling/internal/schedule"
)

// State is the root in-memory booking state. It is only changed by Reduce.
type State struct {
	Appointments        []Appointment
	LabAppointments     []LabAppointment
	LabCards            []LabAppointmentCard
	ServiceAppointments []HospitalServiceAppointment
	ServiceCards        []HospitalServiceAppointmentCard
}

type Action interface {
	action()
}

// AppointmentsLoaded replaces the doctor appointment list with a loaded
// history.
type AppointmentsLoaded struct {
	Appointments []Appointment
}

type AppointmentBooked struct {
	Appointment Appointment
}

type LabTestScheduled struct {
	Appointment LabAppointment
	Card        LabAppointmentCard
}

type ServiceScheduled struct {
	Appointment HospitalServiceAppointment
	Card        HospitalServiceAppointmentCard
}

type AppointmentStatusChanged struct {
	ID     int
	Status AppointmentStatus
}

func (AppointmentsLoaded) action()       {}
func (AppointmentBooked) action()        {}
func (LabTestScheduled) action()         {}
func (ServiceScheduled) action()         {}
func (AppointmentStatusChanged) action() {}

// Reduce returns the state that results from applying a. The input state is
// never modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AppointmentsLoaded:
		s.Appointments = slices.Clone(a.Appointments)
		SortNewestFirst(s.Appointments)
	case AppointmentBooked:
		s.Appointments = prepend(s.Appointments, a.Appointment)
		SortNewestFirst(s.Appointments)
	case LabTestScheduled:
		s.LabAppointments = prepend(s.LabAppointments, a.Appointment)
		s.LabCards = prepend(s.LabCards, a.Card)
	case ServiceScheduled:
		s.ServiceAppointments = prepend(s.ServiceAppointments, a.Appointment)
		s.ServiceCards = prepend(s.ServiceCards, a.Card)
	case AppointmentStatusChanged:
		next := slices.Clone(s.Appointments)
		for i := range next {
			if next[i].ID == a.ID {
				next[i].Status = a.Status
			}
		}
		s.Appointments = next
	}
	return s
}

func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// compareSlot orders by date, then by time of day. Labels that do not parse
// sort before every valid label of the same day.
func compareSlot(ad civil.Date, at string, bd civil.Date, bt string) int {
	switch {
	case ad.Before(bd):
		return -1
	case bd.Before(ad):
		return 1
	}
	return cmp.Compare(minutesOf(at), minutesOf(bt))
}

func minutesOf(label string) int {
	m, err := schedule.ParseTimeLabel(label)
	if err != nil {
		return -1
	}
	return m
}

// SortNewestFirst orders appointments by date and time, latest first. Ties
// keep their relative order, so a new booking stays ahead of an equal one.
func SortNewestFirst(list []Appointment) {
	slices.SortStableFunc(list, func(a, b Appointment) int {
		return compareSlot(b.Date, b.Time, a.Date, a.Time)
	})
}

func SortOldestFirst(list []Appointment) {
	slices.SortStableFunc(list, func(a, b Appointment) int {
		return compareSlot(a.Date, a.Time, b.Date, b.Time)
	})
}
