package cli

import (
	"fmt"
	"strconv"

	"daily-digits/internal/database"

	"github.com/spf13/cobra"
)

// NewMigrateCommand 创建 migrate 命令
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(mg *database.Migrator) error {
				applied, err := mg.Up()
				if err != nil {
					return err
				}
				if !applied {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
					return nil
				}
				return printVersion(cmd, mg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(mg *database.Migrator) error {
				if err := mg.Down(); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(mg *database.Migrator) error {
				return printVersion(cmd, mg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrator(rootOpts, func(mg *database.Migrator) error {
				changed, err := mg.Goto(uint(version))
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Already at version %d\n", version)
					return nil
				}
				return printVersion(cmd, mg)
			})
		},
	})

	return cmd
}

func withMigrator(opts *RootOptions, fn func(mg *database.Migrator) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	mg, err := database.NewMigrator(cfg.Database.GetMigrationURL())
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg *database.Migrator) error {
	version, dirty, ok, err := mg.Version()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case !ok:
		fmt.Fprintln(out, "Schema version: none (no migrations applied)")
	case dirty:
		fmt.Fprintf(out, "Schema version: %d (dirty)\n", version)
	default:
		fmt.Fprintf(out, "Schema version: %d\n", version)
	}
	return nil
}
