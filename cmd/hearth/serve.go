package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// EnvAPIKey names the environment variable holding the API bearer key.
const EnvAPIKey = "HEARTH_API_KEY"

func newServeCommand(opts *rootOptions) *cobra.Command {
	var listen, apiKey string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stores over the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg.API
			if listen != "" {
				cfg.Listen = listen
			}
			if apiKey == "" {
				apiKey = os.Getenv(EnvAPIKey)
			}
			if apiKey != "" {
				cfg.APIKey = apiKey
			}
			if cfg.APIKey == "" {
				return fmt.Errorf("an API key is required: set api.api_key, %s or --api-key", EnvAPIKey)
			}

			server, release := a.apiServer(cfg)
			defer release()

			a.logger.Info("hearth serving (press Ctrl+C to stop)", "listen", cfg.Listen, "version", version)
			if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("hearth stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides api.listen)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer key (overrides api.api_key and "+EnvAPIKey+")")
	return cmd
}
