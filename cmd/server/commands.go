package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taskboard/taskboard-api/internal/config"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/platform/postgres"
)

// migrationCommands are the goose commands accepted by "taskboard migrate".
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Multi-user task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"path to a config file (default: ./config.yaml or ./config/config.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newCleanupCmd(opts),
	)
	return root
}

// bootstrap loads configuration and installs the process logger.
func (o *rootOptions) bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Debug("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_enabled", cfg.Cache.RedisURL != "")
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			db, err := setupAppDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			if migrate {
				if err := postgres.Migrate(ctx, db, log, "up"); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}
			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, log, command)
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var in seedInput
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator account if it does not exist",
		Long: `Create an administrator account, or grant administrator rights to an
existing account with the same email. Values default to the
TASKBOARD_ADMIN_NAME, TASKBOARD_ADMIN_EMAIL and TASKBOARD_ADMIN_PASSWORD
environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.applyEnv(os.Getenv)

			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}
			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			seeder, err := newAdminSeeder(postgres.NewPostgresUserStore(db, log), cfg.Auth.BCryptCost, log)
			if err != nil {
				return err
			}
			user, created, err := seeder.Seed(cmd.Context(), in)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s\n", user.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s already exists\n", user.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "administrator name")
	cmd.Flags().StringVar(&in.Email, "email", "", "administrator email")
	cmd.Flags().StringVar(&in.Password, "password", "", "administrator password")
	return cmd
}

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tasks older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Jobs.TaskRetentionDays
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			deleted, err := app.taskService.CleanupOldTasks(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d tasks older than %d days\n", deleted, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention period in days (default: jobs.task_retention_days)")
	return cmd
}
