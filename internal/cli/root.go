// Package cli implements the prompt-vault command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alanyang/prompt-vault/internal/config"
	"github.com/alanyang/prompt-vault/internal/logger"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for the prompt-vault CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "prompt-vault",
		Short:         "prompt-vault - a per-user store of personas and saved messages",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./config.yaml or $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// loadConfig reads configuration and installs the JSON logger on stderr.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	logger.Init(os.Stderr, cfg.LogLevel)
	return cfg, nil
}
