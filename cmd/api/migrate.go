package main

import (
	"github.com/spf13/cobra"

	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones SQL embebidas",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := postgres.RunMigrations(ctx, pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			log.Info().Msg("esquema al día, sin migraciones pendientes")
			return nil
		}
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		return nil
	},
}
