package main

import (
	"github.com/spf13/cobra"

	"github.com/jacksonlee411/orgtree/modules/orgtree"
	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/configuration"
)

func newSeedCmd() *cobra.Command {
	var fixture string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the postgres org tree with a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:   pool,
				Logger: configuration.Use().Logger(),
			})
			seeder := application.NewSeeder()
			seeder.Register(orgtree.SeedFixture(fixture))
			return seeder.Seed(ctx, app)
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "config/orgtree.yaml", "fixture to load")
	return cmd
}
