package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// WeekHeader is the fixed Sun..Sat column header the grid aligns under.
var WeekHeader = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// Cursor is the month currently displayed in a calendar.
type Cursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// CursorOf returns the cursor for the month containing d.
func CursorOf(d civil.Date) Cursor {
	return Cursor{Year: d.Year, Month: d.Month}.normalize()
}

// NewCursor builds a cursor, normalizing out of range months (13 becomes
// January of the next year).
func NewCursor(year int, month time.Month) Cursor {
	return Cursor{Year: year, Month: month}.normalize()
}

func (c Cursor) normalize() Cursor {
	t := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// First returns the first day of the month.
func (c Cursor) First() civil.Date {
	return civil.Date{Year: c.Year, Month: c.Month, Day: 1}
}

// DaysInMonth returns the number of days in the month.
func (c Cursor) DaysInMonth() int {
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingBlanks is the weekday index of the first of the month.
func (c Cursor) LeadingBlanks() int {
	return int(WeekdayOf(c.First()))
}

func (c Cursor) Next() Cursor {
	return NewCursor(c.Year, c.Month+1)
}

func (c Cursor) Prev() Cursor {
	return NewCursor(c.Year, c.Month-1)
}

// Before reports whether c is an earlier month than o.
func (c Cursor) Before(o Cursor) bool {
	if c.Year != o.Year {
		return c.Year < o.Year
	}
	return c.Month < o.Month
}

// Label renders the month as "September 2024".
func (c Cursor) Label() string {
	return fmt.Sprintf("%s %d", c.Month, c.Year)
}

// CanGoBack reports whether navigating to the previous month is allowed.
// Users cannot move into months before the one containing today.
func CanGoBack(c Cursor, today civil.Date) bool {
	return CursorOf(today).Before(c)
}

// Back moves the cursor one month back unless that would leave the current
// month. It reports whether the cursor moved.
func Back(c Cursor, today civil.Date) (Cursor, bool) {
	if !CanGoBack(c, today) {
		return c, false
	}
	return c.Prev(), true
}

// Cell is one square of the month grid. Blank cells pad the first week.
type Cell struct {
	Blank    bool
	Day      int
	Date     civil.Date
	Disabled bool
	Selected bool
}

type cellJSON struct {
	Blank    bool   `json:"blank"`
	Day      int    `json:"day,omitempty"`
	Date     string `json:"date,omitempty"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{Blank: c.Blank, Day: c.Day, Disabled: c.Disabled, Selected: c.Selected}
	if !c.Blank {
		out.Date = c.Date.String()
	}
	return json.Marshal(out)
}

// MonthGrid is the rendered calendar for one month.
type MonthGrid struct {
	Cursor        Cursor    `json:"cursor"`
	Label         string    `json:"label"`
	Header        [7]string `json:"header"`
	LeadingBlanks int       `json:"leading_blanks"`
	DaysInMonth   int       `json:"days_in_month"`
	CanGoBack     bool      `json:"can_go_back"`
	CanGoForward  bool      `json:"can_go_forward"`
	Cells         []Cell    `json:"cells"`
}

// BuildMonthGrid lays out the month under a Sun..Sat header. Each day is
// disabled when IsBookable rejects it and selected when it equals selected
// (pass the zero date when nothing is selected).
func BuildMonthGrid(c Cursor, availability Availability, selected, today civil.Date) MonthGrid {
	c = c.normalize()
	blanks := c.LeadingBlanks()
	days := c.DaysInMonth()

	grid := MonthGrid{
		Cursor:        c,
		Label:         c.Label(),
		Header:        WeekHeader,
		LeadingBlanks: blanks,
		DaysInMonth:   days,
		CanGoBack:     CanGoBack(c, today),
		CanGoForward:  true,
		Cells:         make([]Cell, 0, blanks+days),
	}

	for i := 0; i < blanks; i++ {
		grid.Cells = append(grid.Cells, Cell{Blank: true, Disabled: true})
	}
	for day := 1; day <= days; day++ {
		d := civil.Date{Year: c.Year, Month: c.Month, Day: day}
		grid.Cells = append(grid.Cells, Cell{
			Day:      day,
			Date:     d,
			Disabled: !IsBookable(d, availability, today),
			Selected: !selected.IsZero() && d == selected,
		})
	}
	return grid
}

// FirstSelectable returns the earliest enabled day in the grid.
func (g MonthGrid) FirstSelectable() (civil.Date, bool) {
	for _, cell := range g.Cells {
		if !cell.Blank && !cell.Disabled {
			return cell.Date, true
		}
	}
	return civil.Date{}, false
}
