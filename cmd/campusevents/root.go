package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"campusevents/config"
	"campusevents/internal/repository/sqlstore"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "campusevents",
		Short:        "Campus event management service",
		SilenceUsage: true,
	}

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		CreateAdminCmd(),
	)

	return root
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *sqlstore.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	db, err := sqlstore.Open(cfg.DBDriver, cfg.DBUrl)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.InfoContext(ctx, "database connected", "driver", cfg.DBDriver)
	return cfg, logger, db, nil
}
