package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrUnknownWeekday = errors.New("unknown weekday")

// Weekday is a closed set of seven days indexed Sun=0 through Sat=6.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid reports whether w is one of the seven days.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// ParseWeekday maps an availability entry to a weekday using its first three
// characters, so "Mon", "Monday" and "monday" all resolve to Monday.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
	}
	prefix := strings.ToLower(s[:3])
	for i, name := range weekdayNames {
		if strings.ToLower(name) == prefix {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// WeekdayOf returns the day of week of a civil date.
func WeekdayOf(d civil.Date) Weekday {
	return Weekday(d.In(time.UTC).Weekday())
}

// Availability is the set of weekdays a provider can be booked on. The zero
// value is unrestricted: every non-past day is bookable.
type Availability struct {
	mask       uint8
	restricted bool
}

// Unrestricted returns an availability that allows every weekday.
func Unrestricted() Availability {
	return Availability{}
}

// NewAvailability restricts bookings to the given days. With no days it is
// unrestricted.
func NewAvailability(days ...Weekday) Availability {
	a := Availability{restricted: len(days) > 0}
	for _, d := range days {
		if d.Valid() {
			a.mask |= 1 << uint(d)
		}
	}
	return a
}

// ParseAvailability converts provider weekday names into an Availability.
// An empty list is unrestricted. Unknown entries are skipped and reported in
// the returned error, but the result stays restricted so a list made only of
// unknown names books nothing.
func ParseAvailability(names []string) (Availability, error) {
	if len(names) == 0 {
		return Unrestricted(), nil
	}
	a := Availability{restricted: true}
	var errs []error
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		a.mask |= 1 << uint(d)
	}
	return a, errors.Join(errs...)
}

// Restricted reports whether the availability limits bookings to specific days.
func (a Availability) Restricted() bool {
	return a.restricted
}

// Allows reports whether the weekday is bookable.
func (a Availability) Allows(d Weekday) bool {
	if !a.restricted {
		return true
	}
	if !d.Valid() {
		return false
	}
	return a.mask&(1<<uint(d)) != 0
}

// Days lists the allowed weekdays in Sun..Sat order. Unrestricted
// availability returns nil.
func (a Availability) Days() []Weekday {
	if !a.restricted {
		return nil
	}
	var out []Weekday
	for d := Sunday; d <= Saturday; d++ {
		if a.mask&(1<<uint(d)) != 0 {
			out = append(out, d)
		}
	}
	return out
}
