/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements generic.AdminStore (and so generic.DataSource) on a local
  SQLite file. The schema mirrors the hosted Postgres tables the planner
  reads in production, so the two stores are interchangeable.

KEY TABLES:
  users:          Planner accounts
  saved_holidays: Per-user holiday dates
  time_off:       Per-user allowance per leave type (decimal text)
  windows:        Generated travel windows

INDEXES:
  - idx_windows_unique_range: Enforces one window per user+start+end.
    A second insert maps to generic.ErrDuplicateWindow.
  - idx_saved_holidays_unique: One row per user+date

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The planner persists from several
  workers at once; SQLite allows a single writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the writer.

USAGE:
  store, err := sqlite.New("./data/windows.db")
  if err != nil {
      return err
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
  - store/postgres/postgres.go: Hosted implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/travel-windows/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.AdminStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saved_holidays (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT ''
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_holidays_unique
		ON saved_holidays(user_id, date);

	CREATE TABLE IF NOT EXISTS time_off (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		allowed TEXT NOT NULL,
		PRIMARY KEY (user_id, type)
	);

	CREATE TABLE IF NOT EXISTS windows (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		startdate TEXT NOT NULL,
		enddate TEXT NOT NULL,
		pto_cost INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_windows_unique_range
		ON windows(user_id, startdate, enddate);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u generic.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		u.ID, nullString(u.Email), u.CreatedAt.Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return generic.ErrDuplicateUser
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id generic.UserID) (*generic.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u generic.User
	var email sql.NullString
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]generic.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []generic.UserID
	for rows.Next() {
		var id generic.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ListUserRecords(ctx context.Context) ([]generic.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, email, created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []generic.User
	for rows.Next() {
		var u generic.User
		var email sql.NullString
		var createdAt string
		if err := rows.Scan(&u.ID, &email, &createdAt); err != nil {
			return nil, err
		}
		u.Email = email.String
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts or renames the user's holiday on that date.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_holidays (user_id, date, name) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET name = excluded.name
	`, h.UserID, h.Date.String(), h.Name)
	if isForeignKeyError(err) {
		return generic.ErrUserNotFound
	}
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, userID generic.UserID, date generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_holidays WHERE user_id = ? AND date = ?`, userID, date.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrHolidayNotFound
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, userID generic.UserID) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, name FROM saved_holidays WHERE user_id = ? ORDER BY date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var dateStr, name string
		if err := rows.Scan(&dateStr, &name); err != nil {
			return nil, err
		}
		d, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("saved holiday for %s: %w", userID, err)
		}
		holidays = append(holidays, generic.Holiday{UserID: userID, Date: d, Name: name})
	}
	return holidays, rows.Err()
}

func (s *Store) GetHolidays(ctx context.Context, userID generic.UserID) (generic.HolidaySet, error) {
	holidays, err := s.ListHolidays(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(generic.HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date] = struct{}{}
	}
	return set, nil
}

// =============================================================================
// ALLOWANCES
// =============================================================================

func (s *Store) SetAllowance(ctx context.Context, userID generic.UserID, leaveType generic.LeaveType, allowed decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (user_id, type, allowed) VALUES (?, ?, ?)
		ON CONFLICT(user_id, type) DO UPDATE SET allowed = excluded.allowed
	`, userID, leaveType, allowed.String())
	if isForeignKeyError(err) {
		return generic.ErrUserNotFound
	}
	return err
}

func (s *Store) ListAllowances(ctx context.Context, userID generic.UserID) (map[generic.LeaveType]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT type, allowed FROM time_off WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[generic.LeaveType]decimal.Decimal)
	for rows.Next() {
		var lt generic.LeaveType
		var allowed string
		if err := rows.Scan(&lt, &allowed); err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(allowed)
		if err != nil {
			return nil, fmt.Errorf("allowance %s for %s: %w", lt, userID, err)
		}
		raw[lt] = qty
	}
	return raw, rows.Err()
}

func (s *Store) GetPTOBudget(ctx context.Context, userID generic.UserID) (generic.PTOBudget, error) {
	raw, err := s.ListAllowances(ctx, userID)
	if err != nil {
		return nil, err
	}
	return generic.NewPTOBudget(raw)
}

// =============================================================================
// WINDOWS
// =============================================================================

func (s *Store) HasExistingWindows(ctx context.Context, userID generic.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM windows WHERE user_id = ?`, userID).Scan(&count)
	return count > 0, err
}

func (s *Store) WindowExists(ctx context.Context, userID generic.UserID, period generic.Period) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM windows WHERE user_id = ? AND startdate = ? AND enddate = ?`,
		userID, period.Start.String(), period.End.String(),
	).Scan(&count)
	return count > 0, err
}

func (s *Store) PersistWindow(ctx context.Context, w generic.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO windows (id, user_id, startdate, enddate, pto_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.ID, w.UserID, w.Period.Start.String(), w.Period.End.String(), w.PTOCost,
		w.CreatedAt.Format(time.RFC3339))
	if isUniqueConstraintError(err) {
		return generic.ErrDuplicateWindow
	}
	if err != nil {
		return fmt.Errorf("failed to persist window: %w", err)
	}
	return nil
}

func (s *Store) ListWindows(ctx context.Context, userID generic.UserID) ([]generic.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, startdate, enddate, pto_cost, created_at
		FROM windows WHERE user_id = ?
		ORDER BY startdate ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []generic.Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (s *Store) DeleteWindows(ctx context.Context, userID generic.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM windows WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanWindow(rows *sql.Rows) (generic.Window, error) {
	var w generic.Window
	var start, end, createdAt string
	if err := rows.Scan(&w.ID, &w.UserID, &start, &end, &w.PTOCost, &createdAt); err != nil {
		return w, err
	}
	var err error
	if w.Period.Start, err = generic.ParseDate(start); err != nil {
		return w, err
	}
	if w.Period.End, err = generic.ParseDate(end); err != nil {
		return w, err
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return w, nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset deletes all rows. Used by tests and local demos.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"windows", "time_off", "saved_holidays", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
