package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aiContentStudio/internal/bootstrap"
	"aiContentStudio/internal/config"
	"aiContentStudio/internal/db"
	"aiContentStudio/internal/logging"
)

const dbFlag = "db"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Maintenance commands for the content studio database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return err
			}
			_, err = logging.InitLogger(cfg.Logging.Level, "text")
			return err
		},
	}
	root.PersistentFlags().String(dbFlag, "", "database file (defaults to DB_PATH or data/app.db)")

	root.AddCommand(newMigrateCommand(), newRollbackCommand(), newSeedDemoCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and seed the default templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, s *db.Store) error {
				if err := bootstrap.Run(ctx, s); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			})
		},
	}
}

func newRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, s *db.Store) error {
				if err := bootstrap.RollbackLast(ctx, s); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back last migration")
				return nil
			})
		},
	}
}

func newSeedDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create or reset the demo accounts and sample generations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, s *db.Store) error {
				if err := bootstrap.Run(ctx, s); err != nil {
					return err
				}
				res, err := bootstrap.SeedDemo(ctx, s)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "demo accounts: %d created, %d updated; %d sample generations\n",
					len(res.Created), len(res.Updated), res.Generations)
				fmt.Fprintf(out, "  admin: %s / %s\n", bootstrap.DemoAdminEmail, bootstrap.DemoPassword)
				fmt.Fprintf(out, "  user:  %s / %s\n", bootstrap.DemoUserEmail, bootstrap.DemoPassword)
				return nil
			})
		},
	}
}

// withStore opens the database named by --db, falling back to the
// configured path, and closes it after fn.
func withStore(cmd *cobra.Command, fn func(context.Context, *db.Store) error) (err error) {
	path, _ := cmd.Flags().GetString(dbFlag)
	if path == "" {
		cfg, err := config.LoadWithDefaults()
		if err != nil {
			return err
		}
		path = cfg.Database.Path
	}
	s, err := db.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context(), s)
}
