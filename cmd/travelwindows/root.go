package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/travel-windows/config"
	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/generic/store"
	"github.com/warp/travel-windows/logging"
	"github.com/warp/travel-windows/planner"
	"github.com/warp/travel-windows/store/postgres"
	"github.com/warp/travel-windows/store/sqlite"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "travelwindows",
		Short:         "Propose long-weekend travel windows from saved holidays and PTO",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML or JSON config file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newPreviewCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles what every command needs once config is loaded.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   generic.AdminStore
	planner *planner.Planner
}

func (o *rootOptions) load(ctx context.Context, cmd *cobra.Command, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Logging, cmd.ErrOrStderr())

	s, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	sel, err := cfg.Planner.Selection()
	if err != nil {
		s.Close()
		return nil, err
	}
	metrics, err := planner.NewMetrics(reg)
	if err != nil {
		s.Close()
		return nil, err
	}
	p := planner.New(s, planner.Options{
		Selection: sel,
		Workers:   cfg.Planner.Workers,
		Year:      cfg.Planner.Year,
		Logger:    logging.Component(log, "planner"),
		Metrics:   metrics,
	})

	log.Debug().
		Str("driver", cfg.Store.Driver).
		Str("preset", cfg.Planner.Preset).
		Int("workers", cfg.Planner.Workers).
		Msg("configuration loaded")

	return &app{cfg: cfg, log: log, store: s, planner: p}, nil
}

func (a *app) Close() error { return a.store.Close() }

func openStore(ctx context.Context, cfg config.StoreConfig) (generic.AdminStore, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return s, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
