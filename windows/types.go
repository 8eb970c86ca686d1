// Package windows implements travel window proposal and selection.
// It is pure: no I/O, no logging, no clock. Callers pass snapshots in and
// receive accepted windows out.
package windows

import "github.com/warp/travel-windows/generic"

// =============================================================================
// CANDIDATE - Ephemeral proposal for one anchor and offset
// =============================================================================

// MaxOffset is the largest number of weekdays a window adds beyond the base weekend.
const MaxOffset = 2

// baseDays is the length of a bare weekend window (offset 0).
const baseDays = 3

// Candidate is a structurally feasible window anchored on one date.
type Candidate struct {
	Period  generic.Period
	Offset  int
	PTOCost int
}

// Days is the inclusive length of the window.
func (c Candidate) Days() int { return c.Period.Len() }

// =============================================================================
// ACCEPTED - Window committed against the budget
// =============================================================================

type Accepted struct {
	Period  generic.Period
	PTOCost int
}

func (a Accepted) Days() int { return a.Period.Len() }

// Offset is the length class of the window: 3, 4 and 5 days map to 0, 1 and 2.
func (a Accepted) Offset() int { return a.Period.Len() - baseDays }

// =============================================================================
// STATE - Running aggregate for one user's selection
// =============================================================================

// State is created per selection and mutated only on acceptance.
type State struct {
	Committed int
	LongTrips int
	Windows   int
	claimed   map[generic.Date]struct{}
}

func newState() *State {
	return &State{claimed: make(map[generic.Date]struct{})}
}

// Claimed reports whether d is covered by an accepted window.
func (s *State) Claimed(d generic.Date) bool {
	_, ok := s.claimed[d]
	return ok
}

func (s *State) overlaps(p generic.Period) bool {
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if s.Claimed(d) {
			return true
		}
	}
	return false
}

func (s *State) commit(c Candidate, long bool) {
	for d := c.Period.Start; d.BeforeOrEqual(c.Period.End); d = d.AddDays(1) {
		s.claimed[d] = struct{}{}
	}
	s.Committed += c.PTOCost
	s.Windows++
	if long {
		s.LongTrips++
	}
}

// =============================================================================
// DECISIONS - Why each candidate was taken or skipped
// =============================================================================

type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"
	OutcomeTooShort      Outcome = "too_short"
	OutcomeTooCostly     Outcome = "exceeds_max_pto_per_window"
	OutcomeLongTripQuota Outcome = "long_trip_quota"
	OutcomeOverBudget    Outcome = "over_budget"
	OutcomeOverlap       Outcome = "overlaps_accepted"
)

// Decision records the evaluation of one candidate at one anchor.
type Decision struct {
	Anchor    generic.Date
	Candidate Candidate
	Outcome   Outcome
}

// Selection is the full result of a scan.
type Selection struct {
	Windows   []Accepted
	Decisions []Decision
	State     State
	Budget    generic.PTOBudget
}

// Remaining is the unused budget after the committed windows.
func (s Selection) Remaining() int {
	return s.Budget.Total() - s.State.Committed
}
