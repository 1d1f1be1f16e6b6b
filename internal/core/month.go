package core

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar year-month, the key budgets are filed under.
type Month struct {
	Year  int
	Month time.Month
}

const monthLayout = "2006-01"

// MonthOf returns the calendar month containing t, read in loc.
// A nil loc keeps t's own location.
func MonthOf(t time.Time, loc *time.Location) Month {
	if loc != nil {
		t = t.In(loc)
	}
	return Month{Year: t.Year(), Month: t.Month()}
}

// DateMonth returns the month a transaction date is filed under. Calendar
// dates stored as UTC midnight keep their calendar month regardless of loc;
// any other instant is read in loc like MonthOf.
func DateMonth(t time.Time, loc *time.Location) Month {
	if isCalendarDate(t) {
		u := t.UTC()
		return Month{Year: u.Year(), Month: u.Month()}
	}
	return MonthOf(t, loc)
}

func isCalendarDate(t time.Time) bool {
	if _, offset := t.Zone(); offset != 0 {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, &ValidationError{Field: "month", Reason: "must be YYYY-MM"}
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String renders the YYYY-MM key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// AddMonths moves n months forward (or backward for negative n), rolling over years.
func (m Month) AddMonths(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	y := idx / 12
	mm := idx % 12
	if mm < 0 {
		mm += 12
		y--
	}
	return Month{Year: y, Month: time.Month(mm + 1)}
}

// Prev returns the month before m.
func (m Month) Prev() Month {
	return m.AddMonths(-1)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Contains reports whether the transaction date t is filed under m.
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	return DateMonth(t, loc) == m
}

// Label is the short month name used by charts ("Jan").
func (m Month) Label() string {
	return m.Month.String()[:3]
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
