package billing

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar date, no time of day, no zone
// =============================================================================

// Date is a calendar date. The wrapped time is always midnight UTC so that
// day arithmetic never crosses a DST boundary.
type Date struct {
	Time time.Time
}

// NewDate builds a date; out-of-range days normalize like time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "2006/01/02"}

// ParseDate accepts ISO dates plus the dotted German form used in reports.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int            { return d.Time.Year() }
func (d Date) Month() time.Month    { return d.Time.Month() }
func (d Date) Day() int             { return d.Time.Day() }
func (d Date) IsZero() bool         { return d.Time.IsZero() }
func (d Date) String() string       { return d.Time.Format("2006-01-02") }
func (d Date) GermanString() string { return d.Time.Format("02.01.2006") }

// SameMonth reports whether both dates fall in the same calendar month of the same year.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaysBetween returns the absolute number of whole days separating a and b.
func DaysBetween(a, b Date) int {
	days := int(b.Time.Sub(a.Time).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear is 366 for leap years, otherwise 365.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}
