// Package main provides the CLI entrypoint of the email count batch runner.
// It wires subcommands (count, migrate), loads configuration, and initializes logging.
package main

import (
	"context"
	"emailcount/internal/config"
	"emailcount/pkg/logger"
	"emailcount/pkg/storage/postgres"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultConfigPath is read when present; without it the configuration comes
// from the environment only.
const defaultConfigPath = "config.yml"

// app carries state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	configPath string
	cfg        *config.Config
}

// getPostgres creates a PostgreSQL client using configuration values.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, error) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ApplicationName:    cfg.Database.ApplicationName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create postgres storage: %w", err)
	}

	return pgsql, nil
}

// loadConfig reads the config file named by the --config flag. A missing
// default file is not an error.
func (a *app) loadConfig(cmd *cobra.Command) error {
	path := a.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger.Setup(cfg.Environment, cfg.Log.Level)
	a.cfg = cfg

	return nil
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "emailcount",
		Short:         "Looks up email counts of domains through the Tomba API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "Config File Path")

	rootCmd.AddCommand(
		countCommand(a),
		migrateCommand(a),
		runsCommand(a),
	)

	return rootCmd
}

// main sets up the root Cobra command and executes the CLI.
func main() {
	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	err := newRootCommand(&app{}).ExecuteContext(ctx)
	if err != nil {
		logger.Error(ctx, "run failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
