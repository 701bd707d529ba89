package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrUnknownFlow     = errors.New("unknown booking flow")
	ErrInvalidTimeSlot = errors.New("invalid time slot label")
)

// Flow identifies one of the booking surfaces. Each flow has its own slot
// list and identifier scheme.
type Flow string

const (
	FlowDoctor          Flow = "doctor"
	FlowLab             Flow = "lab"
	FlowHospitalService Flow = "hospital_service"
)

// Flows lists every booking flow.
var Flows = []Flow{FlowDoctor, FlowLab, FlowHospitalService}

func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Flows {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlow, s)
}

// SlotCatalog holds the ordered time labels offered by each flow.
type SlotCatalog struct {
	lists map[Flow][]string
}

// DefaultSlotCatalog returns the built-in per-flow lists. Doctors get half
// hour slots, labs start at 08:00 and hospital services run hourly.
func DefaultSlotCatalog() SlotCatalog {
	return SlotCatalog{lists: map[Flow][]string{
		FlowDoctor: {
			"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
			"11:00 AM", "11:30 AM", "01:00 PM", "01:30 PM",
			"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM",
		},
		FlowLab: {
			"08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM",
			"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM",
		},
		FlowHospitalService: {
			"09:00 AM", "10:00 AM", "11:00 AM", "01:00 PM", "02:00 PM", "03:00 PM",
		},
	}}
}

// WithSlots returns a copy of the catalog with flow's list replaced. Every
// label must parse with ParseTimeLabel.
func (c SlotCatalog) WithSlots(flow Flow, labels []string) (SlotCatalog, error) {
	if _, err := ParseFlow(string(flow)); err != nil {
		return c, err
	}
	if len(labels) == 0 {
		return c, fmt.Errorf("slot list for %s is empty", flow)
	}
	clean := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if _, err := ParseTimeLabel(l); err != nil {
			return c, err
		}
		clean = append(clean, l)
	}

	out := SlotCatalog{lists: make(map[Flow][]string, len(c.lists))}
	for k, v := range c.lists {
		out.lists[k] = v
	}
	out.lists[flow] = clean
	return out, nil
}

// Slots returns a copy of the flow's full list.
func (c SlotCatalog) Slots(flow Flow) []string {
	src := c.lists[flow]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// List returns the flow's slots for a chosen date. Nothing is offered until a
// date is chosen. There is no capacity check: every slot is always listed.
func (c SlotCatalog) List(flow Flow, date civil.Date) []string {
	if date.IsZero() {
		return []string{}
	}
	return c.Slots(flow)
}

// Has reports whether label is one of the flow's slots.
func (c SlotCatalog) Has(flow Flow, label string) bool {
	for _, l := range c.lists[flow] {
		if l == label {
			return true
		}
	}
	return false
}

// ParseTimeLabel converts "09:30 AM" into minutes since midnight.
func ParseTimeLabel(label string) (int, error) {
	t, err := time.Parse("03:04 PM", strings.TrimSpace(label))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, label)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// At combines a date and a time label into a single instant in loc, used to
// order bookings. Unparseable labels sort as midnight.
func At(date civil.Date, label string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	minutes, _ := ParseTimeLabel(label)
	return date.In(loc).Add(time.Duration(minutes) * time.Minute)
}
