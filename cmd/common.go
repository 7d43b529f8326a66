package cmd

import (
	"fmt"

	"modpack-server-installer/config"
	"modpack-server-installer/db"
	"modpack-server-installer/logger"
	"modpack-server-installer/modpacks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(cmd *cobra.Command) (config.Config, *modpacks.Client, error) {
	cfgDir, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(cfgDir)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := modpacks.NewClient(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create catalog client: %w", err)
	}
	client.Log = logger.Log
	return cfg, client, nil
}

// openLedger opens the install history. Failing to open it never blocks an
// install, so callers may continue with a nil ledger.
func openLedger(cfg config.Config) *db.Ledger {
	conn, err := db.InitDatabase(cfg.DatabasePath)
	if err != nil {
		logger.Log.Warnw("Install history unavailable", zap.String("path", cfg.DatabasePath), zap.Error(err))
		return nil
	}
	logger.Log.Debugw("Database initialized", zap.String("path", cfg.DatabasePath))
	return db.NewLedger(conn)
}
