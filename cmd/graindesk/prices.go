package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Spok95/graindesk/internal/domain/prices"
	"github.com/Spok95/graindesk/internal/export"
	"github.com/Spok95/graindesk/internal/infra/db"
	"github.com/Spok95/graindesk/internal/infra/logger"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Historical price maintenance",
}

var pricesImportCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import historical prices; nothing is saved if any row is invalid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not set")
		}
		lines, err := readPrices(args[0])
		if err != nil {
			return err
		}

		pool, err := db.Connect(cmd.Context(), cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := prices.NewService(prices.NewRepo(pool), cfg.FetchOptions(), logger.New(cfg.App.Env))
		defer svc.Close()
		n, err := svc.Import(cmd.Context(), lines)
		if err != nil {
			return err
		}
		cmd.Printf("imported %d prices\n", n)
		return nil
	},
}

func readPrices(path string) ([]prices.Line, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return export.ReadPricesXLSX(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return export.ReadPricesCSV(f)
}

func init() {
	pricesCmd.AddCommand(pricesImportCmd)
}
