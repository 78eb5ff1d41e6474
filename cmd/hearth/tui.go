package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/hearth/internal/tui"
	"github.com/mattjoyce/hearth/internal/tui/watch"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	var (
		amount, title string
		logFile       string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseAmount(amount)
			if err != nil {
				return err
			}

			// Log lines would corrupt the screen, so they go to a file.
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}

			a, err := openApp(cmd.Context(), opts, logOut)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// With api.enabled the API runs alongside the UI so `hearth watch`
			// can follow it.
			if a.cfg.API.Enabled {
				server, release := a.apiServer(a.cfg.API)
				defer release()
				go func() {
					if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Error("API server failed", "error", err)
					}
				}()
			}

			m := tui.New(ctx, tui.Deps{
				Activity:  a.activity,
				Recent:    a.recent,
				Payment:   a.payment,
				Gateway:   a.gateway(),
				Checkout:  a.checkout(cents, title),
				Hub:       a.hub,
				Shortcuts: a.shortcutOptions(),
				Logger:    a.logger,
			})
			defer m.Close()

			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "49.00", "checkout amount in major units")
	cmd.Flags().StringVar(&title, "title", "Pro plan", "checkout title")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var apiURL, apiKey string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor a running hearth serve",
		Long:  "Real-time monitor of a running `hearth serve`: health, store counters and the change stream.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = "http://" + cfg.API.Listen
			}
			if apiKey == "" {
				apiKey = os.Getenv(EnvAPIKey)
			}
			if apiKey == "" {
				apiKey = cfg.API.APIKey
			}
			if apiKey == "" {
				return fmt.Errorf("API key required: use --api-key or %s", EnvAPIKey)
			}

			m := watch.New(strings.TrimRight(apiURL, "/"), apiKey)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default http://<api.listen>)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API bearer key (default "+EnvAPIKey+" or api.api_key)")
	return cmd
}
