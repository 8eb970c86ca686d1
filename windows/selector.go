package windows

import (
	"sort"

	"github.com/warp/travel-windows/generic"
)

// =============================================================================
// SELECTOR - Greedy scan over the horizon
// =============================================================================

// Selector commits windows day by day. Safe for concurrent use: every call
// to Select builds its own State.
type Selector struct {
	Config Config
}

func NewSelector(cfg Config) *Selector {
	return &Selector{Config: cfg}
}

// Select returns the accepted windows in scan order.
func (s *Selector) Select(horizon generic.Period, holidays generic.HolidaySet, budget generic.PTOBudget) []Accepted {
	return s.SelectDetailed(horizon, holidays, budget).Windows
}

// SelectDetailed runs the scan and records a decision for every candidate
// evaluated. An inverted horizon yields an empty selection.
func (s *Selector) SelectDetailed(horizon generic.Period, holidays generic.HolidaySet, budget generic.PTOBudget) Selection {
	cfg := s.Config
	state := newState()
	total := budget.Total()
	sel := Selection{Budget: budget}

	for current := horizon.Start; current.BeforeOrEqual(horizon.End); current = current.AddDays(1) {
		if cfg.MaxWindows != nil && state.Windows >= *cfg.MaxWindows {
			break
		}
		if current.Weekday() != cfg.AnchorWeekday {
			continue
		}

		candidates := Propose(current, holidays)
		if cfg.PreferLonger {
			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].Days() > candidates[j].Days()
			})
		}

		for _, c := range candidates {
			outcome := cfg.evaluate(c, state, total)
			sel.Decisions = append(sel.Decisions, Decision{Anchor: current, Candidate: c, Outcome: outcome})
			if outcome != OutcomeAccepted {
				continue
			}
			state.commit(c, cfg.isLong(c.PTOCost))
			sel.Windows = append(sel.Windows, Accepted{Period: c.Period, PTOCost: c.PTOCost})
			break
		}
	}

	sel.State = *state
	return sel
}

// evaluate applies the filters in order and names the first that fails.
func (c Config) evaluate(cand Candidate, state *State, total int) Outcome {
	if c.MinTotalDays != nil && cand.Days() < *c.MinTotalDays {
		return OutcomeTooShort
	}
	if c.MaxPTOPerWindow != nil && cand.PTOCost > *c.MaxPTOPerWindow {
		return OutcomeTooCostly
	}
	if c.MaxLongTrips != nil && c.isLong(cand.PTOCost) && state.LongTrips >= *c.MaxLongTrips {
		return OutcomeLongTripQuota
	}
	if c.EnforceBudget && state.Committed+cand.PTOCost > total {
		return OutcomeOverBudget
	}
	if c.CheckOverlap && state.overlaps(cand.Period) {
		return OutcomeOverlap
	}
	return OutcomeAccepted
}
