package server

import (
	"context"
	"fmt"

	"todo-manager/backend/internal/config"
	"todo-manager/backend/internal/database"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/repositories/mongodb"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Stores bundles the credential and task stores of the configured backend.
type Stores struct {
	Users repositories.UserRepository
	Tasks repositories.TaskRepository
	Ping  func(ctx context.Context) error

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// Migrate applies schema migrations (relational) or creates indexes (document).
func (s *Stores) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		return openRelational(cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func openRelational(cfg *config.Config, log *zap.Logger) (*Stores, error) {
	poolConfig := &database.PoolConfig{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logger.Warn,
		Logger:          log,
	}
	if cfg.IsProduction() {
		poolConfig.LogLevel = logger.Error
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		return nil, err
	}

	tasks := repositories.NewGormTaskRepository(pool.DB, cfg.Store.Timeout)
	return &Stores{
		Users:   repositories.NewGormUserRepository(pool.DB, cfg.Store.Timeout),
		Tasks:   tasks,
		Ping:    tasks.Ping,
		migrate: func(ctx context.Context) error { return database.Migrate(ctx, pool) },
		close:   func(context.Context) error { return pool.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Stores, error) {
	store, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Store.Timeout)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Users:   store.Users(),
		Tasks:   store.Tasks(),
		Ping:    store.Ping,
		migrate: func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, store.Database()) },
		close:   store.Disconnect,
	}, nil
}
