package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/tellhub/internal/infrastructure/config"
	"github.com/nerrad567/tellhub/internal/infrastructure/database"
	"github.com/nerrad567/tellhub/migrations"
)

// newMigrateCmd builds "tellhub migrate" with up, down and status. serve
// migrates up on its own; these are for operators.
func newMigrateCmd(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the schedule database schema",
	}

	step := func(use, short string, fn func(context.Context, *database.DB, io.Writer) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return withDatabase(c.Context(), getConfigPath(*configFlag), func(ctx context.Context, db *database.DB) error {
					return fn(ctx, db, c.OutOrStdout())
				})
			},
		}
	}

	cmd.AddCommand(
		step("up", "Apply pending migrations", func(ctx context.Context, db *database.DB, out io.Writer) error {
			if err := db.Migrate(ctx, migrations.FS); err != nil {
				return err
			}
			return printMigrationStatus(ctx, db, out)
		}),
		step("down", "Roll back the most recent migration", func(ctx context.Context, db *database.DB, out io.Writer) error {
			if err := db.MigrateDown(ctx, migrations.FS); err != nil {
				return err
			}
			return printMigrationStatus(ctx, db, out)
		}),
		step("status", "Show applied and pending migrations", printMigrationStatus),
	)
	return cmd
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(ctx context.Context, configPath string, fn func(context.Context, *database.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-mostly CLI; nothing to recover

	return fn(ctx, db)
}

func printMigrationStatus(ctx context.Context, db *database.DB, out io.Writer) error {
	applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	for _, r := range applied {
		fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range pending {
		fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}
