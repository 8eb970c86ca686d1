/*
errors.go - Centralized error types for the planner

PURPOSE:
  All error types in one place for consistency and discoverability.
  The selection core is total and never returns errors; these are raised
  by input validation and by store implementations.

ERROR CATEGORIES:
  1. Precondition errors - Bad budgets or horizons rejected before selection
  2. Store errors - Missing records and duplicate writes

USAGE:
  if errors.Is(err, generic.ErrDuplicateWindow) {
      // Already persisted by an earlier run, safe to ignore
  }

SEE ALSO:
  - types.go: NewPTOBudget raises AllowanceError
  - store.go: Interfaces whose implementations return these errors
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeAllowance is returned when a leave type has a negative quantity.
	ErrNegativeAllowance = errors.New("negative allowance")

	// ErrFractionalAllowance is returned when a leave type is not a whole number of days.
	ErrFractionalAllowance = errors.New("fractional allowance")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidHorizon is returned when the planning horizon starts after it ends.
	ErrInvalidHorizon = errors.New("invalid horizon: start after end")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrHolidayNotFound is returned when deleting a holiday that isn't saved.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicateWindow is returned when the same user+start+end is persisted twice.
	ErrDuplicateWindow = errors.New("window already exists")

	// ErrDuplicateUser is returned when creating a user whose ID is taken.
	ErrDuplicateUser = errors.New("user already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AllowanceError reports which leave type failed validation.
type AllowanceError struct {
	LeaveType LeaveType
	Quantity  decimal.Decimal
	Reason    error
}

func (e *AllowanceError) Error() string {
	return fmt.Sprintf("%s: %s has %s days", e.Reason, e.LeaveType, e.Quantity)
}

func (e *AllowanceError) Unwrap() error {
	return e.Reason
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeAllowance) ||
		errors.Is(err, ErrFractionalAllowance) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidHorizon)
}

// IsConflict returns true if the write collided with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateWindow) || errors.Is(err, ErrDuplicateUser)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrHolidayNotFound)
}
