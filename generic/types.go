/*
Package generic provides the shared vocabulary of the travel window planner.

PURPOSE:
  Domain-agnostic types used by the selection core, the planner and every
  store implementation: calendar dates, inclusive periods, holiday sets,
  PTO budgets, persisted window records and the data-access interfaces.

KEY CONCEPTS IN THIS FILE (types.go):
  - UserID / User: Who windows are generated for
  - PTOBudget: Leave-type -> whole days available, summed for the usable total
  - HolidaySet: Dates that cost no PTO even on a weekday
  - Window: A persisted travel window

DESIGN PRINCIPLES:
  1. Snapshots: HolidaySet and PTOBudget are loaded once per user and never
     mutated while a selection runs
  2. Precision: Raw allowances arrive as decimal.Decimal from storage and are
     only accepted as whole, non-negative day counts
  3. Type Safety: UserID and LeaveType are distinct string types

USAGE:
  budget, err := generic.NewPTOBudget(map[generic.LeaveType]decimal.Decimal{
      "vacation": decimal.NewFromInt(10),
  })
  holidays := generic.NewHolidaySet(generic.NewDate(2025, time.July, 4))

SEE ALSO:
  - time.go: Date
  - period.go: Inclusive ranges
  - store.go: DataSource and AdminStore
*/
package generic

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type WindowID string
type LeaveType string

// User is a leave-planning account.
type User struct {
	ID        UserID
	Email     string
	CreatedAt time.Time
}

// =============================================================================
// PTO BUDGET - Whole days available per leave type
// =============================================================================

// PTOBudget maps leave type to available whole days.
// Only the sum is enforced; no per-type debit order exists.
type PTOBudget map[LeaveType]int

// NewPTOBudget converts raw allowances into a budget, rejecting negative or
// fractional quantities.
func NewPTOBudget(raw map[LeaveType]decimal.Decimal) (PTOBudget, error) {
	budget := make(PTOBudget, len(raw))
	for lt, qty := range raw {
		if qty.IsNegative() {
			return nil, &AllowanceError{LeaveType: lt, Quantity: qty, Reason: ErrNegativeAllowance}
		}
		if !qty.IsInteger() {
			return nil, &AllowanceError{LeaveType: lt, Quantity: qty, Reason: ErrFractionalAllowance}
		}
		budget[lt] = int(qty.IntPart())
	}
	return budget, nil
}

// Total is the usable total across all leave types.
func (b PTOBudget) Total() int {
	total := 0
	for _, qty := range b {
		total += qty
	}
	return total
}

// Types returns the leave types in lexical order.
func (b PTOBudget) Types() []LeaveType {
	types := make([]LeaveType, 0, len(b))
	for lt := range b {
		types = append(types, lt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Clone returns an independent copy.
func (b PTOBudget) Clone() PTOBudget {
	c := make(PTOBudget, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is a saved holiday for a user.
type Holiday struct {
	UserID UserID
	Date   Date
	Name   string
}

// HolidaySet is an unordered set of dates excused from PTO cost.
type HolidaySet map[Date]struct{}

func NewHolidaySet(dates ...Date) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Contains is safe on a nil set.
func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the dates in ascending order.
func (s HolidaySet) Sorted() []Date {
	dates := make([]Date, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// IsPTODay returns true if d costs a PTO day: a weekday that is not a holiday.
func (s HolidaySet) IsPTODay(d Date) bool {
	return d.IsWorkday() && !s.Contains(d)
}

// =============================================================================
// WINDOW - Persisted travel window
// =============================================================================

type Window struct {
	ID        WindowID
	UserID    UserID
	Period    Period
	PTOCost   int
	CreatedAt time.Time
}
