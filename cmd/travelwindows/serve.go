package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/warp/travel-windows/api"
	"github.com/warp/travel-windows/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port       int
		noSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and periodic generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := opts.load(ctx, cmd, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			handler := api.NewHandler(a.store, a.planner, logging.Component(a.log, "api"))
			router := api.NewRouter(handler, api.RouterOptions{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Gatherer:       prometheus.DefaultGatherer,
			})

			scheduler := api.NewGenerationScheduler(a.planner, logging.Component(a.log, "scheduler"))
			scheduler.Interval = a.cfg.Planner.ScheduleInterval
			scheduler.Enabled = !noSchedule
			scheduler.Start()
			defer scheduler.Stop()

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Int("port", a.cfg.Server.Port).Msg("server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			a.log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "disable periodic generation")
	return cmd
}
