package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/graindesk/internal/config"
	"github.com/Spok95/graindesk/internal/infra/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "graindesk",
	Short:         "Grain brokerage back office: buyers, sellers, contracts, prices and invoicing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/example.yaml", "path to the YAML config")
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd, pricesCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.New("prod").Error("command failed", "err", err)
		os.Exit(1)
	}
}
