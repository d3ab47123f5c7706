package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
	"github.com/odyssey-erp/stockroom/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dsn string
	var migrator *db.Migrator

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply stockroom database migrations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dsn == "" {
				dsn = cfg.PGDSN
			}
			logger := app.NewLogger(cfg).With(slog.String("component", "migrate"))
			migrator, err = db.NewMigrator(migrations.FS, ".", dsn, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if migrator == nil {
				return nil
			}
			return migrator.Close()
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "database DSN (defaults to PG_DSN)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return migrator.Up() },
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return migrator.Down() },
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations, negative N rolls back",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("steps: %w", err)
				}
				return migrator.Steps(n)
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("force: %w", err)
				}
				return migrator.Force(v)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := migrator.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)
	return root
}
