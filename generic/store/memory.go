// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/travel-windows/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	users      map[generic.UserID]generic.User
	holidays   map[generic.UserID]map[generic.Date]string
	allowances map[generic.UserID]map[generic.LeaveType]decimal.Decimal
	windows    map[generic.UserID][]generic.Window
}

var _ generic.AdminStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[generic.UserID]generic.User),
		holidays:   make(map[generic.UserID]map[generic.Date]string),
		allowances: make(map[generic.UserID]map[generic.LeaveType]decimal.Decimal),
		windows:    make(map[generic.UserID][]generic.Window),
	}
}

func (m *Memory) Close() error { return nil }

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u generic.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; ok {
		return generic.ErrDuplicateUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id generic.UserID) (*generic.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, generic.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]generic.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]generic.UserID, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *Memory) ListUserRecords(ctx context.Context) ([]generic.User, error) {
	ids, _ := m.ListUsers(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]generic.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, m.users[id])
	}
	return users, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[h.UserID]; !ok {
		return generic.ErrUserNotFound
	}
	if m.holidays[h.UserID] == nil {
		m.holidays[h.UserID] = make(map[generic.Date]string)
	}
	m.holidays[h.UserID][h.Date] = h.Name
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, userID generic.UserID, date generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[userID][date]; !ok {
		return generic.ErrHolidayNotFound
	}
	delete(m.holidays[userID], date)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, userID generic.UserID) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	holidays := make([]generic.Holiday, 0, len(m.holidays[userID]))
	for d, name := range m.holidays[userID] {
		holidays = append(holidays, generic.Holiday{UserID: userID, Date: d, Name: name})
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

func (m *Memory) GetHolidays(_ context.Context, userID generic.UserID) (generic.HolidaySet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := make(generic.HolidaySet, len(m.holidays[userID]))
	for d := range m.holidays[userID] {
		set[d] = struct{}{}
	}
	return set, nil
}

// =============================================================================
// ALLOWANCES
// =============================================================================

func (m *Memory) SetAllowance(_ context.Context, userID generic.UserID, leaveType generic.LeaveType, allowed decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return generic.ErrUserNotFound
	}
	if m.allowances[userID] == nil {
		m.allowances[userID] = make(map[generic.LeaveType]decimal.Decimal)
	}
	m.allowances[userID][leaveType] = allowed
	return nil
}

func (m *Memory) ListAllowances(_ context.Context, userID generic.UserID) (map[generic.LeaveType]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw := make(map[generic.LeaveType]decimal.Decimal, len(m.allowances[userID]))
	for lt, qty := range m.allowances[userID] {
		raw[lt] = qty
	}
	return raw, nil
}

func (m *Memory) GetPTOBudget(ctx context.Context, userID generic.UserID) (generic.PTOBudget, error) {
	raw, err := m.ListAllowances(ctx, userID)
	if err != nil {
		return nil, err
	}
	return generic.NewPTOBudget(raw)
}

// =============================================================================
// WINDOWS
// =============================================================================

func (m *Memory) HasExistingWindows(_ context.Context, userID generic.UserID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows[userID]) > 0, nil
}

func (m *Memory) WindowExists(_ context.Context, userID generic.UserID, period generic.Period) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(userID, period), nil
}

func (m *Memory) findLocked(userID generic.UserID, period generic.Period) bool {
	for _, w := range m.windows[userID] {
		if w.Period == period {
			return true
		}
	}
	return false
}

func (m *Memory) PersistWindow(_ context.Context, w generic.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(w.UserID, w.Period) {
		return generic.ErrDuplicateWindow
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	ws := m.windows[w.UserID]
	// Keep ordered by start date
	i := sort.Search(len(ws), func(i int) bool {
		return ws[i].Period.Start.After(w.Period.Start)
	})
	ws = append(ws, generic.Window{})
	copy(ws[i+1:], ws[i:])
	ws[i] = w
	m.windows[w.UserID] = ws
	return nil
}

func (m *Memory) ListWindows(_ context.Context, userID generic.UserID) ([]generic.Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Window, len(m.windows[userID]))
	copy(result, m.windows[userID])
	return result, nil
}

func (m *Memory) DeleteWindows(_ context.Context, userID generic.UserID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.windows[userID])
	delete(m.windows, userID)
	return n, nil
}
