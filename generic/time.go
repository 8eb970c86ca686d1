package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without time-of-day or zone
// =============================================================================

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// Date is a calendar day. The zero value is not a valid date.
// Dates are normalized to midnight UTC so they compare with == and can key maps.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock and zone of t, keeping its calendar day as seen in t's location.
func DateOf(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Date{t: t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) IsWeekend() bool        { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Date) IsWorkday() bool        { return !d.IsWeekend() }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Time() time.Time        { return d.t }
func (d Date) String() string         { return d.t.Format(DateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the signed number of days from -> to.
func DaysBetween(from, to Date) int { return int(to.t.Sub(from.t).Hours() / 24) }

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

// Clock returns the current instant. Injected so runs are reproducible in tests.
type Clock func() time.Time

// Today returns the calendar day of clock(), falling back to time.Now.
func Today(clock Clock) Date {
	if clock == nil {
		clock = time.Now
	}
	return DateOf(clock())
}
