package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/warp/travel-windows/generic"
	"github.com/warp/travel-windows/windows"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var showDecisions bool

	cmd := &cobra.Command{
		Use:   "preview <user>",
		Short: "Print the windows a user would get, without storing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := opts.load(ctx, cmd, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			userID := generic.UserID(args[0])
			if _, err := a.store.GetUser(ctx, userID); err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
			horizon, err := a.planner.Horizon()
			if err != nil {
				return err
			}
			sel, err := a.planner.Preview(ctx, userID)
			if err != nil {
				return err
			}
			return printSelection(cmd, userID, horizon, sel, showDecisions)
		},
	}

	cmd.Flags().BoolVar(&showDecisions, "decisions", false, "list every candidate and why it was taken or skipped")
	return cmd
}

func printSelection(cmd *cobra.Command, userID generic.UserID, horizon generic.Period, sel windows.Selection, showDecisions bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %d windows, %d of %d PTO days committed, %d remaining\n",
		userID, horizon, len(sel.Windows), sel.State.Committed, sel.Budget.Total(), sel.Remaining())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, w := range sel.Windows {
		fmt.Fprintf(tw, "  %s\t%s\t%d days\t%d PTO\n", w.Period.Start, w.Period.End, w.Days(), w.PTOCost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !showDecisions {
		return nil
	}
	fmt.Fprintln(out, "decisions:")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, d := range sel.Decisions {
		fmt.Fprintf(tw, "  %s\t%s..%s\t%d PTO\t%s\n",
			d.Anchor, d.Candidate.Period.Start, d.Candidate.Period.End, d.Candidate.PTOCost, d.Outcome)
	}
	return tw.Flush()
}
