package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate travel windows for every user without any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := opts.load(ctx, cmd, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.planner.Run(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if failOnError && report.Failed > 0 {
				return fmt.Errorf("%d of %d users failed", report.Failed, report.UsersSeen)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when any user fails")
	return cmd
}
