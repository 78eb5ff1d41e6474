// Command hearth runs the notification and input layer: the terminal UI, the
// local API, and maintenance commands over the persisted stores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the global flags.
type rootOptions struct {
	ConfigPath string
	DBPath     string
	InMemory   bool
	JSON       bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hearth",
		Short:         "Notification feed, recent items, payments and keyboard shortcuts",
		Long:          "hearth keeps an activity feed, a recent items list and a payment profile,\nand drives them from a keyboard-first terminal UI or a local HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: discovered)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the state database (overrides state.path)")
	cmd.PersistentFlags().BoolVar(&opts.InMemory, "in-memory", false, "keep state in memory only")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON output")

	cmd.AddCommand(newTUICommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newActivityCommand(opts))
	cmd.AddCommand(newRecentCommand(opts))
	cmd.AddCommand(newPaymentCommand(opts))
	cmd.AddCommand(newShortcutsCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}
