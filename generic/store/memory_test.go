package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/generic/store"
)

func window(user string, start generic.Date, n, cost int) generic.Window {
	return generic.Window{
		ID:      generic.WindowID(user + "-" + start.String()),
		UserID:  generic.UserID(user),
		Period:  generic.Period{Start: start, End: start.AddDays(n - 1)},
		PTOCost: cost,
	}
}

func TestMemory_UsersOrdered(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveUser(ctx, generic.User{ID: "u-2"}))
	require.NoError(t, m.SaveUser(ctx, generic.User{ID: "u-1"}))
	assert.ErrorIs(t, m.SaveUser(ctx, generic.User{ID: "u-1"}), generic.ErrDuplicateUser)

	ids, err := m.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []generic.UserID{"u-1", "u-2"}, ids)

	_, err = m.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrUserNotFound)
}

func TestMemory_HolidaysAndBudget(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveUser(ctx, generic.User{ID: "u-1"}))

	july4 := generic.NewDate(2025, time.July, 4)
	require.NoError(t, m.SaveHoliday(ctx, generic.Holiday{UserID: "u-1", Date: july4, Name: "Independence Day"}))
	assert.ErrorIs(t, m.SaveHoliday(ctx, generic.Holiday{UserID: "ghost", Date: july4}), generic.ErrUserNotFound)

	set, err := m.GetHolidays(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, set.Contains(july4))

	require.NoError(t, m.DeleteHoliday(ctx, "u-1", july4))
	assert.ErrorIs(t, m.DeleteHoliday(ctx, "u-1", july4), generic.ErrHolidayNotFound)

	require.NoError(t, m.SetAllowance(ctx, "u-1", "vacation", decimal.NewFromInt(8)))
	require.NoError(t, m.SetAllowance(ctx, "u-1", "personal", decimal.NewFromInt(2)))
	budget, err := m.GetPTOBudget(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 10, budget.Total())

	require.NoError(t, m.SetAllowance(ctx, "u-1", "personal", decimal.NewFromInt(-2)))
	_, err = m.GetPTOBudget(ctx, "u-1")
	assert.ErrorIs(t, err, generic.ErrNegativeAllowance)
}

func TestMemory_WindowsIdempotent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	later := window("u-1", generic.NewDate(2025, time.July, 11), 4, 1)
	earlier := window("u-1", generic.NewDate(2025, time.July, 4), 5, 2)

	has, _ := m.HasExistingWindows(ctx, "u-1")
	assert.False(t, has)

	require.NoError(t, m.PersistWindow(ctx, later))
	require.NoError(t, m.PersistWindow(ctx, earlier))
	assert.ErrorIs(t, m.PersistWindow(ctx, earlier), generic.ErrDuplicateWindow)

	exists, err := m.WindowExists(ctx, "u-1", earlier.Period)
	require.NoError(t, err)
	assert.True(t, exists)

	ws, err := m.ListWindows(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, earlier.ID, ws[0].ID)
	assert.False(t, ws[0].CreatedAt.IsZero())

	n, err := m.DeleteWindows(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	has, _ = m.HasExistingWindows(ctx, "u-1")
	assert.False(t, has)
}
