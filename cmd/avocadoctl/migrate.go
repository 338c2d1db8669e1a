// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avocado-market/avocado-api/internal/core"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, revert or inspect the embedded schema migrations",
	}

	cmd.AddCommand(
		c.migrateStep("up", "Apply all pending migrations", core.MigrateUp),
		c.migrateStep("down", "Revert the most recent migration", core.MigrateDown),
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := c.config()
				if err != nil {
					return err
				}

				v, err := core.MigrationStatus(cfg.Database.URL)
				if err != nil {
					return err
				}

				state := "clean"
				if v.Dirty {
					state = "dirty"
				}
				fmt.Fprintf(c.out, "schema version %d (%s)\n", v.Version, state)
				return nil
			},
		},
	)

	return cmd
}

func (c *cli) migrateStep(use, short string, direction core.MigrateDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}

			if err := core.Migrate(cfg.Database.URL, direction); err != nil {
				return err
			}

			v, err := core.MigrationStatus(cfg.Database.URL)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "migrate %s: schema at version %d\n", direction, v.Version)
			return nil
		},
	}
}
