package generic

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the inclusive range [Start, End]. Used for scan horizons and
// for the span of a travel window.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps reports whether the two inclusive ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// Len is the number of calendar days in the period, both ends included.
func (p Period) Len() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day of the period in order.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Horizon returns the planning range from today through Dec 31 of today's year.
func Horizon(today Date) Period {
	return Period{Start: today, End: EndOfYear(today.Year())}
}
