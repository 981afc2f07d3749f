package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Spok95/graindesk/internal/domain/users"
	"github.com/Spok95/graindesk/internal/infra/db"
)

var (
	userPassword string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage broker accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user or reset its password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := users.Role(userRole)
		if !role.Valid() {
			return errors.New("role must be broker or admin")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not set")
		}
		hash, err := users.HashPassword(userPassword)
		if err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		u, err := users.NewRepo(pool).Upsert(cmd.Context(), args[0], hash, role)
		if err != nil {
			return err
		}
		cmd.Printf("user %s saved (role %s)\n", u.Username, u.Role)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "password, at least 8 characters")
	userAddCmd.Flags().StringVar(&userRole, "role", string(users.RoleBroker), "broker or admin")
	_ = userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd)
}
