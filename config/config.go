// Package config loads runtime configuration from an optional YAML/JSON file
// overlaid with TW_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/warp/travel-windows/logging"
	"github.com/warp/travel-windows/windows"
)

// EnvPrefix marks environment overrides: TW_STORE__DRIVER sets store.driver.
const EnvPrefix = "TW_"

type Config struct {
	Store   StoreConfig    `json:"store"`
	Server  ServerConfig   `json:"server"`
	Planner PlannerConfig  `json:"planner"`
	Logging logging.Config `json:"logging"`
}

type StoreConfig struct {
	// Driver is sqlite, postgres or memory.
	Driver     string `json:"driver"`
	SQLitePath string `json:"sqlite_path"`
	// DatabaseURL falls back to $DATABASE_URL for the postgres driver.
	DatabaseURL string `json:"database_url"`
	// Migrate creates missing tables on startup (postgres only; sqlite always migrates).
	Migrate bool `json:"migrate"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// PlannerConfig picks a selection preset and optionally overrides single
// options. A negative limit override clears that limit.
type PlannerConfig struct {
	Workers          int           `json:"workers"`
	Preset           string        `json:"preset"`
	Year             int           `json:"year"`
	ScheduleInterval time.Duration `json:"schedule_interval"`

	AnchorWeekday     string `json:"anchor_weekday"`
	MinTotalDays      *int   `json:"min_total_days"`
	MaxPTOPerWindow   *int   `json:"max_pto_per_window"`
	MaxLongTrips      *int   `json:"max_long_trips"`
	LongTripThreshold *int   `json:"long_trip_threshold"`
	MaxWindows        *int   `json:"max_windows"`
	PreferLonger      *bool  `json:"prefer_longer"`
	EnforceBudget     *bool  `json:"enforce_budget"`
	CheckOverlap      *bool  `json:"check_overlap"`
}

// Load reads path (skipped when empty) then environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "windows.db"
	}
	if c.Store.DatabaseURL == "" {
		c.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if c.Planner.Workers <= 0 {
		c.Planner.Workers = 4
	}
	if c.Planner.Preset == "" {
		c.Planner.Preset = windows.PresetFull
	}
	if c.Planner.ScheduleInterval == 0 {
		c.Planner.ScheduleInterval = 24 * time.Hour
	}
	c.Logging.SetDefaults()
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url (or DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite, postgres or memory)", c.Store.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Planner.Year < 0 {
		return fmt.Errorf("planner.year must not be negative")
	}
	if _, err := c.Planner.Selection(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Selection builds the selector configuration: preset first, then overrides.
func (p PlannerConfig) Selection() (windows.Config, error) {
	cfg, err := windows.Preset(p.Preset)
	if err != nil {
		return windows.Config{}, err
	}
	if p.AnchorWeekday != "" {
		wd, err := windows.ParseWeekday(p.AnchorWeekday)
		if err != nil {
			return windows.Config{}, fmt.Errorf("planner.anchor_weekday: %w", err)
		}
		cfg.AnchorWeekday = wd
	}
	cfg.MinTotalDays = limit(cfg.MinTotalDays, p.MinTotalDays)
	cfg.MaxPTOPerWindow = limit(cfg.MaxPTOPerWindow, p.MaxPTOPerWindow)
	cfg.MaxLongTrips = limit(cfg.MaxLongTrips, p.MaxLongTrips)
	cfg.MaxWindows = limit(cfg.MaxWindows, p.MaxWindows)
	if p.LongTripThreshold != nil {
		cfg.LongTripThreshold = *p.LongTripThreshold
	}
	if p.PreferLonger != nil {
		cfg.PreferLonger = *p.PreferLonger
	}
	if p.EnforceBudget != nil {
		cfg.EnforceBudget = *p.EnforceBudget
	}
	if p.CheckOverlap != nil {
		cfg.CheckOverlap = *p.CheckOverlap
	}
	if err := cfg.Validate(); err != nil {
		return windows.Config{}, fmt.Errorf("planner: %w", err)
	}
	return cfg, nil
}

func limit(current, override *int) *int {
	switch {
	case override == nil:
		return current
	case *override < 0:
		return nil
	default:
		return windows.Int(*override)
	}
}
