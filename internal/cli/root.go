// Package cli implements the stockctl command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/client"
	"github.com/odyssey-erp/stockroom/internal/view"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Server  string
	Timeout time.Duration
	Profile string

	client   *client.Client
	renderer *view.Renderer
}

// Client returns the API client built by the root pre-run hook.
func (o *RootOptions) Client() *client.Client {
	return o.client
}

// View returns the renderer for the selected format.
func (o *RootOptions) View() *view.Renderer {
	return o.renderer
}

// NewRootCommand creates the root command for stockctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	defaults := DefaultSettings()

	cmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "Stockroom inventory and purchasing console",
		Long:          "Manage vendors, products, purchase orders and payments on a stockroom server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Format, "format", defaults.Format, "output format (json|text)")
	flags.StringVar(&opts.Server, "server", defaults.Server, "stockroom server base URL")
	flags.DurationVar(&opts.Timeout, "timeout", defaults.Timeout, "HTTP request timeout")
	flags.StringVar(&opts.Profile, "profile", "", "profile file (default ~/"+ProfileFile+")")

	cmd.AddCommand(newVendorsCommand(opts))
	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newOrdersCommand(opts))
	cmd.AddCommand(newPaymentsCommand(opts))
	cmd.AddCommand(newDashboardCommand(opts))
	cmd.AddCommand(newJobsCommand(opts))

	return cmd
}

// resolve applies profile and env settings to every flag the user did not
// set, then builds the client and renderer.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	settings, err := LoadSettings(o.Profile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = settings.Format
	}
	if !flags.Changed("server") {
		o.Server = settings.Server
	}
	if !flags.Changed("timeout") {
		o.Timeout = settings.Timeout
	}

	format, err := view.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	c, err := client.New(o.Server, client.WithTimeout(o.Timeout))
	if err != nil {
		return fmt.Errorf("connect %s: %w", o.Server, err)
	}
	o.client = c
	o.renderer = view.New(cmd.OutOrStdout(), format)
	return nil
}
