package generic_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-windows/generic"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestDate_NormalizesClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	late := time.Date(2025, time.July, 4, 23, 30, 0, 0, loc)

	d := generic.DateOf(late)
	assert.Equal(t, generic.NewDate(2025, time.July, 4), d)
	assert.Equal(t, "2025-07-04", d.String())
	assert.Equal(t, time.Friday, d.Weekday())
	assert.True(t, d.IsWorkday())
	assert.True(t, d.AddDays(1).IsWeekend())
}

func TestDate_ParseAndJSON(t *testing.T) {
	d, err := generic.ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, generic.EndOfYear(2025), d)

	_, err = generic.ParseDate("12/31/2025")
	assert.Error(t, err)

	b, err := json.Marshal(struct {
		D generic.Date `json:"d"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-12-31"}`, string(b))

	var back struct {
		D generic.Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back.D)
}

func TestDate_Arithmetic(t *testing.T) {
	start := generic.NewDate(2024, time.February, 27)
	assert.Equal(t, generic.NewDate(2024, time.March, 1), start.AddDays(3))
	assert.Equal(t, 3, generic.DaysBetween(start, start.AddDays(3)))
	assert.Equal(t, -3, generic.DaysBetween(start.AddDays(3), start))
	assert.True(t, start.Before(start.AddDays(1)))
	assert.True(t, start.BeforeOrEqual(start))
	assert.True(t, start.AfterOrEqual(start))
}

func TestToday_UsesClock(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC) }
	assert.Equal(t, generic.NewDate(2025, time.October, 14), generic.Today(clock))
	assert.False(t, generic.Today(nil).IsZero())
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod(t *testing.T) {
	p, err := generic.NewPeriod(generic.NewDate(2025, time.July, 4), generic.NewDate(2025, time.July, 8))
	require.NoError(t, err)

	assert.Equal(t, 5, p.Len())
	assert.Len(t, p.Days(), 5)
	assert.True(t, p.Contains(generic.NewDate(2025, time.July, 8)))
	assert.False(t, p.Contains(generic.NewDate(2025, time.July, 9)))

	next := generic.Period{Start: generic.NewDate(2025, time.July, 8), End: generic.NewDate(2025, time.July, 10)}
	assert.True(t, p.Overlaps(next))
	next.Start = generic.NewDate(2025, time.July, 9)
	assert.False(t, p.Overlaps(next))

	_, err = generic.NewPeriod(p.End, p.Start)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestHorizon_EndsDecember31(t *testing.T) {
	h := generic.Horizon(generic.NewDate(2025, time.October, 14))
	assert.Equal(t, generic.NewDate(2025, time.December, 31), h.End)
	assert.Equal(t, 79, h.Len())
}

// =============================================================================
// BUDGET TESTS
// =============================================================================

func TestNewPTOBudget(t *testing.T) {
	budget, err := generic.NewPTOBudget(map[generic.LeaveType]decimal.Decimal{
		"vacation": decimal.NewFromInt(10),
		"personal": decimal.RequireFromString("2.0"),
		"sick":     decimal.Zero,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, budget.Total())
	assert.Equal(t, []generic.LeaveType{"personal", "sick", "vacation"}, budget.Types())
}

func TestNewPTOBudget_RejectsBadQuantities(t *testing.T) {
	_, err := generic.NewPTOBudget(map[generic.LeaveType]decimal.Decimal{"vacation": decimal.NewFromInt(-1)})
	var allowanceErr *generic.AllowanceError
	require.ErrorAs(t, err, &allowanceErr)
	assert.Equal(t, generic.LeaveType("vacation"), allowanceErr.LeaveType)
	assert.ErrorIs(t, err, generic.ErrNegativeAllowance)
	assert.True(t, generic.IsClientError(err))

	_, err = generic.NewPTOBudget(map[generic.LeaveType]decimal.Decimal{"vacation": decimal.RequireFromString("1.5")})
	assert.ErrorIs(t, err, generic.ErrFractionalAllowance)
}

func TestPTOBudget_EmptyAndClone(t *testing.T) {
	var empty generic.PTOBudget
	assert.Equal(t, 0, empty.Total())

	b := generic.PTOBudget{"vacation": 3}
	c := b.Clone()
	c["vacation"] = 1
	assert.Equal(t, 3, b["vacation"])
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHolidaySet(t *testing.T) {
	july4 := generic.NewDate(2025, time.July, 4)
	set := generic.NewHolidaySet(july4, generic.NewDate(2025, time.January, 1), july4)

	assert.Len(t, set, 2)
	assert.True(t, set.Contains(july4))
	assert.False(t, set.IsPTODay(july4))
	assert.True(t, set.IsPTODay(generic.NewDate(2025, time.July, 7)))
	assert.False(t, set.IsPTODay(generic.NewDate(2025, time.July, 5)))
	assert.Equal(t, generic.NewDate(2025, time.January, 1), set.Sorted()[0])

	var none generic.HolidaySet
	assert.False(t, none.Contains(july4))
}

func TestDefaultHolidays_2025(t *testing.T) {
	got := generic.DefaultHolidays(2025)

	dates := make([]string, len(got))
	for i, h := range got {
		dates[i] = h.Date.String()
		assert.NotEmpty(t, h.Name)
	}
	assert.Equal(t, []string{
		"2025-01-01", "2025-01-20", "2025-02-17", "2025-05-26", "2025-06-19",
		"2025-07-04", "2025-09-01", "2025-11-27", "2025-12-25",
	}, dates)
}

func TestDefaultHolidays_WeekendObserved(t *testing.T) {
	// 2021: July 4th was a Sunday, Christmas a Saturday
	set := generic.NewHolidaySet()
	for _, h := range generic.DefaultHolidays(2021) {
		set[h.Date] = struct{}{}
	}
	assert.True(t, set.Contains(generic.NewDate(2021, time.July, 5)))
	assert.True(t, set.Contains(generic.NewDate(2021, time.December, 24)))
	for d := range set {
		assert.Equal(t, 2021, d.Year())
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestErrorHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("loading"), generic.ErrUserNotFound)
	assert.True(t, generic.IsNotFound(wrapped))
	assert.True(t, generic.IsConflict(generic.ErrDuplicateWindow))
	assert.False(t, generic.IsClientError(generic.ErrDuplicateWindow))
	assert.True(t, generic.IsClientError(generic.ErrInvalidHorizon))
}
