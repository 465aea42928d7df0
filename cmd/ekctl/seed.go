package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/electrokart/electrokart_api/internal/repository"
)

// defaultCategories are the storefront's top-level categories.
var defaultCategories = []string{"Smartphones", "Laptops", "Headphones", "Cameras", "Gaming", "Accessories"}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data",
	}

	var names []string
	categories := &cobra.Command{
		Use:   "categories",
		Short: "Create the default categories that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := repository.NewCategoryRepository(db).EnsureNames(ctx, names)
			if err != nil {
				return err
			}
			log.Info().Int("created", created).Int("requested", len(names)).Msg("categories seeded")
			return nil
		},
	}
	categories.Flags().StringSliceVar(&names, "name", defaultCategories, "category names to ensure")

	cmd.AddCommand(categories)
	return cmd
}
