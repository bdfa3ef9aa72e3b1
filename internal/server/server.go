// Package server assembles the stores, services and HTTP gateway into a runnable process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/config"
	"todo-manager/backend/internal/middleware"
	"todo-manager/backend/internal/monitoring"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	stores  *Stores
	cache   *cache.MultiLevelCache
	limiter *middleware.IPRateLimiter
	router  *gin.Engine
}

// New opens the configured stores and wires the services behind the router.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}

	s, err := build(cfg, logger, stores)
	if err != nil {
		_ = stores.Close(context.Background())
		return nil, err
	}
	return s, nil
}

func build(cfg *config.Config, logger *zap.Logger, stores *Stores) (*Server, error) {
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	authService, err := services.NewAuthService(stores.Users, tokens, cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	health := monitoring.NewHealthChecker(0)
	health.Register("store", stores.Ping)

	s := &Server{cfg: cfg, logger: logger, stores: stores}

	var taskService services.TaskService = services.NewTaskService(stores.Tasks)
	var extras []monitoring.Extra
	if cfg.Cache.Enabled {
		var redisCache *cache.RedisCache
		if cfg.Redis.Enabled {
			redisConfig := cache.DefaultCacheConfig()
			redisConfig.Addr = cfg.GetRedisAddr()
			redisConfig.Password = cfg.Redis.Password
			redisConfig.DB = cfg.Redis.DB
			redisConfig.PoolSize = cfg.Redis.PoolSize
			redisConfig.MinIdleConns = cfg.Redis.MinIdleConns
			redisConfig.MaxRetries = cfg.Redis.MaxRetries
			redisConfig.DialTimeout = cfg.Redis.DialTimeout
			redisConfig.ReadTimeout = cfg.Redis.ReadTimeout
			redisConfig.WriteTimeout = cfg.Redis.WriteTimeout
			redisCache = cache.NewRedisCache(redisConfig)
			health.Register("cache", redisCache.Health)
		}

		s.cache = cache.NewMultiLevelCache(redisCache, cfg.Cache.L1TTL)
		taskService = services.NewCachedTaskService(taskService, s.cache, cfg.Cache.TTL, logger)
		extras = append(extras, func() map[string]interface{} {
			return map[string]interface{}{"cache": s.cache.Stats()}
		})
	}

	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewIPRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.BurstSize,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		})
	}

	router, err := NewRouter(Dependencies{
		Auth:           authService,
		Tasks:          taskService,
		Health:         health,
		Metrics:        monitoring.NewCollector(),
		MetricsExtra:   extras,
		RateLimiter:    s.limiter,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

func (s *Server) Migrate(ctx context.Context) error {
	return s.stores.Migrate(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}
	if s.cache != nil {
		go s.cache.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	errs = append(errs, s.stores.Close(ctx))
	return errors.Join(errs...)
}
