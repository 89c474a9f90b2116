package main

import (
	"fmt"

	"storefront/internal/infra/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			gormDB, err := db.Connect(cfg.DSN(), cfg.IsDevelopment())
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer func() { _ = db.Close(gormDB) }()

			if err := db.Migrate(gormDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migration completed")
			return nil
		},
	}
}
