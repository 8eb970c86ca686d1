// Package postgres implements generic.AdminStore on a hosted Postgres
// database with the users / saved_holidays / time_off / windows tables the
// leave-planning app already writes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/travel-windows/generic"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ generic.AdminStore = (*Store)(nil)

// Open connects and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the tables when they don't exist. Hosted databases that
// already carry the schema are left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS saved_holidays (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		UNIQUE (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS time_off (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		allowed NUMERIC NOT NULL,
		PRIMARY KEY (user_id, type)
	)`,
	`CREATE TABLE IF NOT EXISTS windows (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		startdate DATE NOT NULL,
		enddate DATE NOT NULL,
		pto_cost INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, startdate, enddate)
	)`,
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u generic.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, created_at) VALUES ($1, NULLIF($2, ''), $3)`,
		string(u.ID), u.Email, u.CreatedAt)
	return mapError(err)
}

func (s *Store) GetUser(ctx context.Context, id generic.UserID) (*generic.User, error) {
	var u generic.User
	var email *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, created_at FROM users WHERE id = $1`, string(id),
	).Scan(&u.ID, &email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]generic.UserID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (generic.UserID, error) {
		var id string
		err := row.Scan(&id)
		return generic.UserID(id), err
	})
}

func (s *Store) ListUserRecords(ctx context.Context) ([]generic.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, coalesce(email, ''), created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (generic.User, error) {
		var u generic.User
		var id string
		err := row.Scan(&id, &u.Email, &u.CreatedAt)
		u.ID = generic.UserID(id)
		return u, err
	})
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO saved_holidays (user_id, date, name) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET name = excluded.name
	`, string(h.UserID), h.Date.Time(), h.Name)
	return mapError(err)
}

func (s *Store) DeleteHoliday(ctx context.Context, userID generic.UserID, date generic.Date) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_holidays WHERE user_id = $1 AND date = $2`, string(userID), date.Time())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return generic.ErrHolidayNotFound
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, userID generic.UserID) ([]generic.Holiday, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, name FROM saved_holidays WHERE user_id = $1 ORDER BY date`, string(userID))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (generic.Holiday, error) {
		var d time.Time
		var name string
		err := row.Scan(&d, &name)
		return generic.Holiday{UserID: userID, Date: generic.DateOf(d), Name: name}, err
	})
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
	_, err := s.pool.Exec(ctx, `
		INSERT INTO time_off (user_id, type, allowed) VALUES ($1, $2, $3::numeric)
		ON CONFLICT (user_id, type) DO UPDATE SET allowed = excluded.allowed
	`, string(userID), string(leaveType), allowed.String())
	return mapError(err)
}

func (s *Store) ListAllowances(ctx context.Context, userID generic.UserID) (map[generic.LeaveType]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT type, allowed::text FROM time_off WHERE user_id = $1`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[generic.LeaveType]decimal.Decimal)
	for rows.Next() {
		var lt, allowed string
		if err := rows.Scan(&lt, &allowed); err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(allowed)
		if err != nil {
			return nil, fmt.Errorf("allowance %s for %s: %w", lt, userID, err)
		}
		raw[generic.LeaveType(lt)] = qty
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
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM windows WHERE user_id = $1)`, string(userID)).Scan(&exists)
	return exists, err
}

func (s *Store) WindowExists(ctx context.Context, userID generic.UserID, period generic.Period) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM windows WHERE user_id = $1 AND startdate = $2 AND enddate = $3)
	`, string(userID), period.Start.Time(), period.End.Time()).Scan(&exists)
	return exists, err
}

func (s *Store) PersistWindow(ctx context.Context, w generic.Window) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO windows (id, user_id, startdate, enddate, pto_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(w.ID), string(w.UserID), w.Period.Start.Time(), w.Period.End.Time(), w.PTOCost, w.CreatedAt)
	if err = mapError(err); err != nil && !errors.Is(err, generic.ErrDuplicateWindow) {
		return fmt.Errorf("failed to persist window: %w", err)
	}
	return err
}

func (s *Store) ListWindows(ctx context.Context, userID generic.UserID) ([]generic.Window, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, startdate, enddate, pto_cost, created_at
		FROM windows WHERE user_id = $1 ORDER BY startdate
	`, string(userID))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (generic.Window, error) {
		var w generic.Window
		var id, user string
		var start, end time.Time
		err := row.Scan(&id, &user, &start, &end, &w.PTOCost, &w.CreatedAt)
		w.ID, w.UserID = generic.WindowID(id), generic.UserID(user)
		w.Period = generic.Period{Start: generic.DateOf(start), End: generic.DateOf(end)}
		return w, err
	})
}

func (s *Store) DeleteWindows(ctx context.Context, userID generic.UserID) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM windows WHERE user_id = $1`, string(userID))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// mapError turns constraint violations into the generic sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		if pgErr.TableName == "users" {
			return generic.ErrDuplicateUser
		}
		return generic.ErrDuplicateWindow
	case foreignKeyViolation:
		return generic.ErrUserNotFound
	}
	return err
}
