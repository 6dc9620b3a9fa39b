package main

import (
	"github.com/spf13/cobra"

	"huronportal/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			db, err := a.connector.DB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			a.log.Info("database migrated")
			return nil
		},
	}
}
