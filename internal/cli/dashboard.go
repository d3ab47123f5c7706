package cli

import (
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/dashboard"
)

func newDashboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show vendor, product, pending order and low stock counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := dashboard.Load(cmd.Context(), opts.Client())
			if err != nil {
				return err
			}
			return opts.View().Dashboard(dashboard.Summarize(snap))
		},
	}
}

func newJobsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger background jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "scan-low-stock",
		Short: "Queue an immediate low stock scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Client().ScanLowStock(cmd.Context()); err != nil {
				return err
			}
			return opts.View().Message(map[string]string{"status": "queued"}, "Low stock scan queued")
		},
	})
	return cmd
}
