package windows_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/windows"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func july() generic.Period {
	return generic.Period{Start: date(time.July, 1), End: date(time.July, 31)}
}

func summer() generic.Period {
	return generic.Period{Start: date(time.July, 1), End: date(time.August, 31)}
}

func year2025() generic.Period {
	return generic.Period{Start: date(time.January, 1), End: date(time.December, 31)}
}

func vacation(n int) generic.PTOBudget {
	return generic.PTOBudget{"vacation": n}
}

// everyFridayHoliday marks eight consecutive Fridays from July 4th as holidays.
func everyFridayHoliday() generic.HolidaySet {
	set := generic.NewHolidaySet()
	for i := 0; i < 8; i++ {
		set[date(time.July, 4).AddDays(7*i)] = struct{}{}
	}
	return set
}

func usHolidays2025() generic.HolidaySet {
	return generic.NewHolidaySet(
		date(time.January, 1), date(time.January, 20), date(time.February, 17),
		date(time.May, 26), date(time.June, 19), date(time.July, 4),
		date(time.September, 1), date(time.November, 27), date(time.December, 25),
	)
}

type span struct {
	start, end string
	cost       int
}

func spans(ws []windows.Accepted) []span {
	out := make([]span, len(ws))
	for i, w := range ws {
		out[i] = span{w.Period.Start.String(), w.Period.End.String(), w.PTOCost}
	}
	return out
}

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestSelect_ZeroBudget_FullPolicy_Empty(t *testing.T) {
	// GIVEN: A Friday holiday and no PTO at all
	// WHEN: Selecting with the full policy
	// THEN: The only free window is the bare weekend, which is too short

	sel := windows.NewSelector(windows.DefaultConfig())
	got := sel.SelectDetailed(july(), generic.NewHolidaySet(date(time.July, 4)), vacation(0))

	assert.Empty(t, got.Windows)
	require.Len(t, got.Decisions, 3)
	assert.Equal(t, windows.OutcomeOverBudget, got.Decisions[0].Outcome)
	assert.Equal(t, windows.OutcomeOverBudget, got.Decisions[1].Outcome)
	assert.Equal(t, windows.OutcomeTooShort, got.Decisions[2].Outcome)
}

func TestSelect_ZeroBudget_BudgetOnly_BareWeekend(t *testing.T) {
	// GIVEN: Same inputs
	// WHEN: Selecting with the budget-only policy (no length filter)
	// THEN: The free 3-day window is taken

	sel := windows.NewSelector(windows.BudgetOnlyConfig())
	got := sel.Select(july(), generic.NewHolidaySet(date(time.July, 4)), vacation(0))

	assert.Equal(t, []span{{"2025-07-04", "2025-07-06", 0}}, spans(got))
}

func TestSelect_PrefersLongest(t *testing.T) {
	// GIVEN: July 4th holiday and plenty of budget
	// THEN: The 5-day window wins over the cheaper shorter ones

	sel := windows.NewSelector(windows.DefaultConfig())
	got := sel.Select(july(), generic.NewHolidaySet(date(time.July, 4)), vacation(10))

	assert.Equal(t, []span{{"2025-07-04", "2025-07-08", 2}}, spans(got))
}

func TestSelect_BudgetFallsBackToShorter(t *testing.T) {
	// GIVEN: Two consecutive Friday holidays, each allowing a cost-2 5-day trip
	// AND: Only 3 days of PTO
	// WHEN: Selecting
	// THEN: First Friday takes 5 days (cost 2), second falls back to 4 days (cost 1)

	holidays := generic.NewHolidaySet(date(time.July, 4), date(time.July, 11))
	sel := windows.NewSelector(windows.DefaultConfig())
	got := sel.SelectDetailed(july(), holidays, vacation(3))

	assert.Equal(t, []span{
		{"2025-07-04", "2025-07-08", 2},
		{"2025-07-11", "2025-07-14", 1},
	}, spans(got.Windows))
	assert.Equal(t, 3, got.State.Committed)
	assert.Equal(t, 0, got.Remaining())
}

func TestSelect_MaxWindowsStopsScan(t *testing.T) {
	// GIVEN: Eight Friday holidays and a large budget
	// THEN: Only the first three are taken

	sel := windows.NewSelector(windows.DefaultConfig())
	got := sel.SelectDetailed(summer(), everyFridayHoliday(), vacation(100))

	assert.Equal(t, []span{
		{"2025-07-04", "2025-07-08", 2},
		{"2025-07-11", "2025-07-15", 2},
		{"2025-07-18", "2025-07-22", 2},
	}, spans(got.Windows))
	// Nothing after the third acceptance is evaluated
	last := got.Decisions[len(got.Decisions)-1]
	assert.Equal(t, date(time.July, 18), last.Anchor)
}

func TestSelect_LongTripQuota(t *testing.T) {
	// GIVEN: Any trip costing more than 1 day counts as long, one long trip allowed
	// WHEN: Selecting over eight Friday holidays
	// THEN: After the first 5-day trip, later anchors fall back to 4 days

	cfg := windows.DefaultConfig()
	cfg.LongTripThreshold = 1
	cfg.MaxLongTrips = windows.Int(1)

	got := windows.NewSelector(cfg).SelectDetailed(summer(), everyFridayHoliday(), vacation(10))

	assert.Equal(t, []span{
		{"2025-07-04", "2025-07-08", 2},
		{"2025-07-11", "2025-07-14", 1},
		{"2025-07-18", "2025-07-21", 1},
	}, spans(got.Windows))
	assert.Equal(t, 1, got.State.LongTrips)
	assert.Equal(t, windows.OutcomeLongTripQuota, got.Decisions[1].Outcome)
}

func TestSelect_MaxPTOPerWindow(t *testing.T) {
	cfg := windows.DefaultConfig()
	cfg.MaxPTOPerWindow = windows.Int(1)

	got := windows.NewSelector(cfg).Select(july(), generic.NewHolidaySet(date(time.July, 4)), vacation(10))

	assert.Equal(t, []span{{"2025-07-04", "2025-07-07", 1}}, spans(got))
}

func TestSelect_Unfiltered_TakesFirstEveryAnchor(t *testing.T) {
	// GIVEN: The unfiltered policy ignores budget and takes offsets in order
	// THEN: Every Friday holiday yields its bare weekend, budget notwithstanding

	sel := windows.NewSelector(windows.UnfilteredConfig())
	got := sel.Select(summer(), everyFridayHoliday(), vacation(0))

	require.Len(t, got, 8)
	for _, w := range got {
		assert.Equal(t, 3, w.Days())
		assert.Equal(t, 0, w.PTOCost)
	}
}

func TestSelect_ThursdayHoliday_NoAnchor(t *testing.T) {
	// GIVEN: Thanksgiving on Thursday is the only holiday in November
	// THEN: No window starts on it and no Friday window benefits from it

	holidays := generic.NewHolidaySet(date(time.November, 27))
	horizon := generic.Period{Start: date(time.November, 1), End: date(time.November, 30)}

	got := windows.NewSelector(windows.DefaultConfig()).Select(horizon, holidays, vacation(10))
	assert.Empty(t, got)
}

func TestSelect_FullYear_USHolidays(t *testing.T) {
	sel := windows.NewSelector(windows.DefaultConfig())

	got := sel.Select(year2025(), usHolidays2025(), vacation(10))
	assert.Equal(t, []span{
		{"2025-01-17", "2025-01-21", 2},
		{"2025-02-14", "2025-02-18", 2},
		{"2025-05-23", "2025-05-27", 2},
	}, spans(got))

	got = sel.Select(year2025(), usHolidays2025(), vacation(2))
	assert.Equal(t, []span{{"2025-01-17", "2025-01-21", 2}}, spans(got))

	horizon := generic.Period{Start: date(time.May, 1), End: date(time.December, 31)}
	got = sel.Select(horizon, usHolidays2025(), vacation(1))
	assert.Equal(t, []span{{"2025-05-23", "2025-05-26", 1}}, spans(got))
}

func TestSelect_MidYearStart_LateHolidaysOnly(t *testing.T) {
	// GIVEN: The run starts mid-October; the remaining holidays are Thursdays
	// THEN: Nothing can be generated for the rest of the year

	horizon := generic.Horizon(date(time.October, 14))
	got := windows.NewSelector(windows.DefaultConfig()).Select(horizon, usHolidays2025(), vacation(10))
	assert.Empty(t, got)
}

func TestSelect_InvertedHorizon_Empty(t *testing.T) {
	horizon := generic.Period{Start: date(time.August, 1), End: date(time.July, 1)}
	got := windows.NewSelector(windows.DefaultConfig()).SelectDetailed(horizon, everyFridayHoliday(), vacation(10))

	assert.Empty(t, got.Windows)
	assert.Empty(t, got.Decisions)
}

func TestSelect_AnchorWeekdayConfigurable(t *testing.T) {
	// GIVEN: Anchors moved to Saturday, a Monday holiday
	// THEN: Saturday-Monday costs nothing and is found

	cfg := windows.BudgetOnlyConfig()
	cfg.AnchorWeekday = time.Saturday
	holidays := generic.NewHolidaySet(date(time.May, 26))
	horizon := generic.Period{Start: date(time.May, 1), End: date(time.May, 31)}

	got := windows.NewSelector(cfg).Select(horizon, holidays, vacation(0))
	assert.Equal(t, []span{{"2025-05-24", "2025-05-26", 0}}, spans(got))
}

func TestSelect_BudgetTypesAggregated(t *testing.T) {
	// GIVEN: Allowance split across leave types, 1 + 1
	// THEN: The aggregate of 2 funds a cost-2 window

	budget := generic.PTOBudget{"vacation": 1, "personal": 1}
	got := windows.NewSelector(windows.DefaultConfig()).SelectDetailed(july(), generic.NewHolidaySet(date(time.July, 4)), budget)

	assert.Equal(t, []span{{"2025-07-04", "2025-07-08", 2}}, spans(got.Windows))
	assert.Equal(t, budget, got.Budget)
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

func TestSelect_Invariants(t *testing.T) {
	// GIVEN: A year of holidays, several budgets and policies
	// THEN: Every selection respects overlap, budget, quota, cap and alignment

	holidays := usHolidays2025()
	for d := date(time.March, 7); d.Month() < time.October; d = d.AddDays(14) {
		holidays[d] = struct{}{}
	}

	configs := map[string]windows.Config{
		"full":   windows.DefaultConfig(),
		"budget": windows.BudgetOnlyConfig(),
	}
	uncapped := windows.DefaultConfig()
	uncapped.MaxWindows = nil
	uncapped.LongTripThreshold = 1
	configs["uncapped"] = uncapped

	for name, cfg := range configs {
		for _, total := range []int{0, 1, 2, 3, 5, 8, 20} {
			sel := windows.NewSelector(cfg)
			got := sel.Select(year2025(), holidays, vacation(total))

			spent, long := 0, 0
			for i, w := range got {
				spent += w.PTOCost
				if w.PTOCost > cfg.LongTripThreshold {
					long++
				}
				assert.Equal(t, cfg.AnchorWeekday, w.Period.Start.Weekday(), name)
				assert.LessOrEqual(t, w.PTOCost, w.Offset(), name)
				assert.Equal(t, windows.PTOCost(w.Period, holidays), w.PTOCost, name)
				for _, other := range got[i+1:] {
					assert.False(t, w.Period.Overlaps(other.Period), "%s: %s overlaps %s", name, w.Period, other.Period)
				}
			}
			assert.LessOrEqual(t, spent, total, name)
			if cfg.MaxLongTrips != nil {
				assert.LessOrEqual(t, long, *cfg.MaxLongTrips, name)
			}
			if cfg.MaxWindows != nil {
				assert.LessOrEqual(t, len(got), *cfg.MaxWindows, name)
			}

			// Pure: same inputs, same answer
			assert.Equal(t, got, sel.Select(year2025(), holidays, vacation(total)), name)
		}
	}
}
