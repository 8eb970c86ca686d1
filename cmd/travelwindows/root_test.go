package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/planner"
	"github.com/warp/travel-windows/store/sqlite"
)

// setupConfig seeds a SQLite file with one user and returns a config path
// pinned to a future year, so results do not depend on today's date.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tw.db")

	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.SaveUser(ctx, generic.User{ID: "alice", Email: "alice@example.com"}))
	for _, h := range generic.DefaultHolidays(2099) {
		h.UserID = "alice"
		require.NoError(t, s.SaveHoliday(ctx, h))
	}
	require.NoError(t, s.SetAllowance(ctx, "alice", "vacation", decimal.NewFromInt(10)))
	require.NoError(t, s.Close())

	cfgPath := filepath.Join(dir, "travelwindows.yaml")
	cfg := fmt.Sprintf("store:\n  driver: sqlite\n  sqlite_path: %s\nplanner:\n  year: 2099\nlogging:\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerate_ThenSkip(t *testing.T) {
	cfgPath := setupConfig(t)

	out, err := execute(t, "generate", "--config", cfgPath)
	require.NoError(t, err)
	var first planner.Report
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 1, first.UsersSeen)
	assert.Equal(t, 1, first.Processed)
	assert.GreaterOrEqual(t, first.Created, 1)

	out, err = execute(t, "generate", "--config", cfgPath)
	require.NoError(t, err)
	var second planner.Report
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Created)
}

func TestPreview_PrintsSelection(t *testing.T) {
	cfgPath := setupConfig(t)

	out, err := execute(t, "preview", "alice", "--decisions", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "alice [2099-01-01, 2099-12-31]")
	assert.Contains(t, out, "decisions:")
	assert.Contains(t, out, "accepted")

	_, err = execute(t, "preview", "nobody", "--config", cfgPath)
	assert.ErrorIs(t, err, generic.ErrUserNotFound)

	_, err = execute(t, "preview", "--config", cfgPath)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "travelwindows dev")
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o644))

	_, err := execute(t, "generate", "--config", path)
	assert.ErrorContains(t, err, "unknown store driver")
}
