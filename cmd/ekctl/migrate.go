package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/electrokart/electrokart_api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", false),
		migrateStep("down", "Roll back every migration", true),
	)
	return cmd
}

func migrateStep(use, short string, down bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db.DB, cfg.MigrationsPath, down); err != nil {
				return err
			}
			log.Info().Str("direction", use).Str("source", cfg.MigrationsPath).Msg("migrations applied")
			return nil
		},
	}
}
