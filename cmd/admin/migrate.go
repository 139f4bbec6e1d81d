package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fintrack/internal/infrastructure/postgres"
	"fintrack/internal/shared/config"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *postgres.DB) error {
					if err := postgres.RunMigrations(db); err != nil {
						return err
					}
					return printVersion(cmd, db)
				})
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Revert the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					steps = n
				}
				return withDB(func(db *postgres.DB) error {
					if err := postgres.RollbackMigrations(db, steps); err != nil {
						return err
					}
					return printVersion(cmd, db)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *postgres.DB) error {
					return printVersion(cmd, db)
				})
			},
		},
	)

	return cmd
}

func withDB(fn func(db *postgres.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func printVersion(cmd *cobra.Command, db *postgres.DB) error {
	version, dirty, err := postgres.MigrationVersion(db)
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
