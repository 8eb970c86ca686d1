package windows

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// CONFIG - Selection policy, every filter independently toggleable
// =============================================================================

// Config controls the selector. Nil limits are unset and never filter.
type Config struct {
	AnchorWeekday     time.Weekday
	MinTotalDays      *int
	MaxPTOPerWindow   *int
	MaxLongTrips      *int
	LongTripThreshold int
	MaxWindows        *int
	PreferLonger      bool
	EnforceBudget     bool
	CheckOverlap      bool
}

// Int returns a pointer to n, for optional limits.
func Int(n int) *int { return &n }

// Preset names.
const (
	PresetFull       = "full"
	PresetBudget     = "budget"
	PresetUnfiltered = "unfiltered"
)

// DefaultConfig is the full policy: overlap, quota, length and budget
// filters with longest-first evaluation.
func DefaultConfig() Config {
	return Config{
		AnchorWeekday:     time.Friday,
		MinTotalDays:      Int(4),
		MaxPTOPerWindow:   Int(5),
		MaxLongTrips:      Int(2),
		LongTripThreshold: 3,
		MaxWindows:        Int(3),
		PreferLonger:      true,
		EnforceBudget:     true,
		CheckOverlap:      true,
	}
}

// BudgetOnlyConfig only checks the aggregate budget.
func BudgetOnlyConfig() Config {
	return Config{
		AnchorWeekday:     time.Friday,
		LongTripThreshold: 3,
		EnforceBudget:     true,
	}
}

// UnfilteredConfig accepts the first proposal at every anchor.
func UnfilteredConfig() Config {
	return Config{
		AnchorWeekday:     time.Friday,
		LongTripThreshold: 3,
	}
}

// Preset returns the named configuration.
func Preset(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetFull:
		return DefaultConfig(), nil
	case PresetBudget:
		return BudgetOnlyConfig(), nil
	case PresetUnfiltered:
		return UnfilteredConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown selection preset %q (want %s, %s or %s)",
			name, PresetFull, PresetBudget, PresetUnfiltered)
	}
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Validate rejects limits that can never be met.
func (c Config) Validate() error {
	if c.AnchorWeekday < time.Sunday || c.AnchorWeekday > time.Saturday {
		return fmt.Errorf("anchor weekday out of range: %d", c.AnchorWeekday)
	}
	for name, v := range map[string]*int{
		"min_total_days":     c.MinTotalDays,
		"max_pto_per_window": c.MaxPTOPerWindow,
		"max_long_trips":     c.MaxLongTrips,
		"max_windows":        c.MaxWindows,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, *v)
		}
	}
	if c.LongTripThreshold < 0 {
		return fmt.Errorf("long_trip_threshold must not be negative, got %d", c.LongTripThreshold)
	}
	return nil
}

func (c Config) isLong(cost int) bool { return cost > c.LongTripThreshold }
