package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-CallBookingService/internal/config"
	"github.com/m04kA/SMC-CallBookingService/internal/infra/migrations"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}

	cmd.AddCommand(
		newMigrateActionCmd(configPath, "up", "Apply all pending migrations", migrations.Up),
		newMigrateActionCmd(configPath, "down", "Roll back the latest migration", migrations.Down),
		newMigrateActionCmd(configPath, "status", "Print migration status", migrations.Status),
	)
	return cmd
}

func newMigrateActionCmd(configPath *string, use, short string, action func(db *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			return action(db)
		},
	}
}
