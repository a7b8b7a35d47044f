// tellhub serves a Telldus TellStick installation to WebSocket clients.
//
// Clients view and switch radio-controlled devices, register new ones and
// add scheduled events; every connected client is pushed the new state
// whenever anything changes. Device control goes through tdtool, so the
// process must run where telldusd does.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when neither --config nor TELLHUB_CONFIG is set.
	defaultConfigPath = "configs/config.yaml"

	// dotEnvPath is loaded before configuration so TELLHUB_* overrides can live there.
	dotEnvPath = ".env"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := loadDotEnv(dotEnvPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
}

// newRootCmd builds the command tree. Running tellhub without a subcommand
// is the same as tellhub serve.
func newRootCmd() *cobra.Command {
	var configFlag string

	root := &cobra.Command{
		Use:           "tellhub",
		Short:         "Control-plane server for Telldus TellStick devices",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), getConfigPath(configFlag))
		},
	}
	root.PersistentFlags().StringVar(&configFlag, "config", "",
		"path to config.yaml (default $TELLHUB_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the WebSocket server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), getConfigPath(configFlag))
			},
		},
		&cobra.Command{
			Use:   "devices",
			Short: "List devices known to telldusd and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return listDevices(cmd.Context(), getConfigPath(configFlag), cmd.OutOrStdout())
			},
		},
		newMigrateCmd(&configFlag),
	)
	return root
}

// getConfigPath resolves the configuration file: flag, then TELLHUB_CONFIG,
// then the default.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("TELLHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadDotEnv loads path into the environment if it exists. Variables already
// set are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
