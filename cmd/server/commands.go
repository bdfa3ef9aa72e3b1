package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"

	"todo-manager/backend/internal/config"
	"todo-manager/backend/internal/logging"
	"todo-manager/backend/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "todo-server",
		Short: "Multi-user task manager HTTP API",
		Long: `todo-server serves the task manager REST API.

Configuration is read from the environment, optionally seeded from a .env file.
STORE_DRIVER selects postgres, sqlite or mongo.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withServer(ctx, func(srv *server.Server, logger *zap.Logger) error {
				if !skipMigrate {
					if err := srv.Migrate(ctx); err != nil {
						return fmt.Errorf("migrate: %w", err)
					}
				}
				return srv.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations before serving")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply store migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withServer(ctx, func(srv *server.Server, logger *zap.Logger) error {
				if err := srv.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				logger.Info("migrations applied")
				return nil
			})
		},
	}
}

func withServer(ctx context.Context, fn func(*server.Server, *zap.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(context.Background()); err != nil {
			logger.Warn("close server", zap.Error(err))
		}
	}()

	logger.Info("starting",
		zap.String("environment", cfg.Server.Environment),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
	)
	return fn(srv, logger)
}

// loadEnvFile loads path into the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
