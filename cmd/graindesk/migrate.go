package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Spok95/graindesk/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not set")
		}
		if len(args) == 1 && args[0] == "status" {
			return migrations.Status(cfg.Postgres.DSN)
		}
		if err := migrations.Up(cfg.Postgres.DSN); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}
