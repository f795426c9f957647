// Package cli wires configuration, logging and the stores into the laptopd commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laptopcatalog/internal/config"
	"laptopcatalog/internal/logger"
)

// NewRootCommand creates laptopd with its serve, web and seed subcommands.
func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "laptopd",
		Short:         "Laptop rental catalog: GraphQL API, admin frontend and seeding",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}), nil
	}

	rootCmd.AddCommand(
		newServeCommand(load),
		newWebCommand(load),
		newSeedCommand(load),
	)
	return rootCmd
}

type loadFunc func() (*config.Config, *zap.Logger, error)

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "laptopd:", err)
		return 1
	}
	return 0
}
