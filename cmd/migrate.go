package main

import (
	"database/sql"
	root "emailcount"
	"emailcount/pkg/logger"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCommand constructs the 'migrate' subcommand that applies database
// migrations of the postgres sink to the latest version using goose.
func migrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			strg, err := getPostgres(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := strg.Close(); err != nil {
					logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
				}
			}()

			goose.SetBaseFS(root.Migrations)
			if err := goose.SetDialect("postgres"); err != nil {
				return fmt.Errorf("could not set goose dialect to postgres: %w", err)
			}
			if err := goose.UpContext(ctx, strg.DB.(*sql.DB), "migrations"); err != nil {
				return fmt.Errorf("could not migrate pgsql: %w", err)
			}

			logger.Info(ctx, "database migrated")

			return nil
		},
	}

	return cmd
}
