package main

import (
	"fmt"

	"procurement/internal/config"
	"procurement/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewMigrateCommand() *cobra.Command {
	f := NewDBFlags()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates or initializes the PostgreSQL database to the latest schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			db, err := f.Open(cfg)
			if err != nil {
				return fmt.Errorf("could not connect to db: %w", err)
			}
			return migrateDB(db)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

func migrateDB(db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("could not migrate db: %w", err)
	}
	return nil
}
