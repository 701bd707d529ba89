package schedule

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Today returns the calendar day of now in loc. A nil loc uses time.Local.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}

// ParseDate accepts "2006-01-02" or a local midnight "2006-01-02T00:00:00" and
// returns the calendar day it names. No time zone conversion happens, so the
// day never shifts.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "T") {
		dt, err := civil.ParseDateTime(s)
		if err != nil {
			return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
		}
		if dt.Time != (civil.Time{}) {
			return civil.Date{}, fmt.Errorf("parse date %q: time of day must be midnight", s)
		}
		return dt.Date, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// IsBookable reports whether date can be selected: it must not be before
// today, and when availability is restricted its weekday must be allowed.
func IsBookable(date civil.Date, availability Availability, today civil.Date) bool {
	if !date.IsValid() || date.Before(today) {
		return false
	}
	return availability.Allows(WeekdayOf(date))
}

// NextBookable returns the first bookable date on or after from, searching at
// most limit days ahead.
func NextBookable(from civil.Date, availability Availability, today civil.Date, limit int) (civil.Date, bool) {
	if from.Before(today) {
		from = today
	}
	for i := 0; i <= limit; i++ {
		d := from.AddDays(i)
		if IsBookable(d, availability, today) {
			return d, true
		}
	}
	return civil.Date{}, false
}
