package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sales-analytics/internal/store"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load sample data unless sales already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
			defer cancel()

			db, err := store.Open(ctx, cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			seeded, err := store.Seed(ctx, db, logger)
			if err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "sales table already present, nothing to do")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database seeded")
			return nil
		},
	}
}
