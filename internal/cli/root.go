// Package cli implements the dicetray command line.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/observability"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	envFile    string
}

// NewRootCmd builds the dicetray command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "dicetray",
		Short:         "Dice roller with a shared Telnet tray",
		Long:          "Parses roll specifiers such as 2d6+3, rolls them with optional advantage and serves a per-connection dice tray over Telnet.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $DICETRAY_CONFIG, else built-in defaults)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before the config")

	root.AddCommand(
		newServeCmd(opts),
		newRollCmd(opts),
		newMacroCmd(opts),
		newSetsCmd(opts),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the dotenv file, then the configuration, and builds the logger.
func (o *options) load() (config.Config, *zap.Logger, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !os.IsNotExist(err) {
			return config.Config{}, nil, fmt.Errorf("loading %s: %w", o.envFile, err)
		}
	}
	path := o.configPath
	if path == "" {
		path = os.Getenv("DICETRAY_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, logger, nil
}
