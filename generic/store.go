/*
store.go - Data-access boundary for the planner

PURPOSE:
  Defines the interface between window generation and the database.
  The selection core never touches a store: the planner loads snapshots
  through DataSource before selecting and persists results afterwards.

KEY INTERFACES:
  DataSource: What one generation run needs (list, load, guard, persist)
  AdminStore: DataSource plus the maintenance operations used by the API

IDEMPOTENCY:
  Two guards exist. HasExistingWindows skips a user entirely once any
  window was stored for them. WindowExists suppresses a single duplicate
  (same user, start and end) when a user is regenerated explicitly.
  Implementations also reject duplicates on write with ErrDuplicateWindow.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: Local SQLite file
  - store/postgres/postgres.go: Hosted Postgres

SEE ALSO:
  - planner/planner.go: The only caller of DataSource during a run
*/
package generic

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATA SOURCE - What a generation run reads and writes
// =============================================================================

type DataSource interface {
	// ListUsers returns every user ID, ordered.
	ListUsers(ctx context.Context) ([]UserID, error)

	// GetHolidays returns the user's saved holiday dates. Empty set if none.
	GetHolidays(ctx context.Context, userID UserID) (HolidaySet, error)

	// GetPTOBudget returns the user's allowances. Implementations validate
	// through NewPTOBudget so negative and fractional values never escape.
	GetPTOBudget(ctx context.Context, userID UserID) (PTOBudget, error)

	// HasExistingWindows reports whether any window was stored for the user.
	HasExistingWindows(ctx context.Context, userID UserID) (bool, error)

	// WindowExists reports whether the exact range is stored for the user.
	WindowExists(ctx context.Context, userID UserID, period Period) (bool, error)

	// PersistWindow stores one window. Returns ErrDuplicateWindow on collision.
	PersistWindow(ctx context.Context, w Window) error
}

// =============================================================================
// ADMIN STORE - Maintenance operations behind the HTTP API
// =============================================================================

type AdminStore interface {
	DataSource

	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id UserID) (*User, error)
	ListUserRecords(ctx context.Context) ([]User, error)

	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, userID UserID, date Date) error
	ListHolidays(ctx context.Context, userID UserID) ([]Holiday, error)

	// SetAllowance stores the raw quantity; validation happens on read.
	SetAllowance(ctx context.Context, userID UserID, leaveType LeaveType, allowed decimal.Decimal) error
	ListAllowances(ctx context.Context, userID UserID) (map[LeaveType]decimal.Decimal, error)

	ListWindows(ctx context.Context, userID UserID) ([]Window, error)
	DeleteWindows(ctx context.Context, userID UserID) (int, error)

	Close() error
}
