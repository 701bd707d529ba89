package schedule

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

var (
	ErrNoDateSelected  = errors.New("select a date before choosing a time")
	ErrDateUnavailable = errors.New("date is not bookable")
)

// Selection tracks the date and time a user picked in one booking flow.
type Selection struct {
	Flow         Flow
	Availability Availability
	Catalog      SlotCatalog
	Date         civil.Date
	Time         string
}

func NewSelection(flow Flow, availability Availability, catalog SlotCatalog) *Selection {
	return &Selection{Flow: flow, Availability: availability, Catalog: catalog}
}

// SelectDate picks a new date and always clears the chosen time, since a time
// picked for another day no longer applies.
func (s *Selection) SelectDate(d civil.Date, today civil.Date) error {
	s.Time = ""
	if !IsBookable(d, s.Availability, today) {
		return fmt.Errorf("%w: %s", ErrDateUnavailable, d)
	}
	s.Date = d
	return nil
}

func (s *Selection) SelectTime(label string) error {
	if s.Date.IsZero() {
		return ErrNoDateSelected
	}
	if !s.Catalog.Has(s.Flow, label) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}
	s.Time = label
	return nil
}

// Slots lists the times offered for the selected date.
func (s *Selection) Slots() []string {
	return s.Catalog.List(s.Flow, s.Date)
}

// Complete reports whether both a date and a time are chosen.
func (s *Selection) Complete() bool {
	return !s.Date.IsZero() && s.Time != ""
}
