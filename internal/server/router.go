package server

import (
	"fmt"
	"net/http"
	"time"

	"todo-manager/backend/internal/handlers"
	"todo-manager/backend/internal/middleware"
	"todo-manager/backend/internal/monitoring"
	"todo-manager/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP gateway routes to.
type Dependencies struct {
	Auth         services.AuthService
	Tasks        services.TaskService
	Health       *monitoring.HealthChecker
	Metrics      *monitoring.Collector
	MetricsExtra []monitoring.Extra
	RateLimiter  *middleware.IPRateLimiter
	CORSOrigins  []string
	// TrustedProxies may set X-Forwarded-For. Empty means the peer address is the client IP.
	TrustedProxies []string
	Logger         *zap.Logger
}

func NewRouter(deps Dependencies) (*gin.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthChecker(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewCollector()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(middleware.RecoveryWithLog(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(deps.Metrics.Middleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Task Manager API is running!"})
	})
	router.GET("/health", deps.Health.HealthHandler())
	router.GET("/health/ready", deps.Health.ReadinessHandler())
	router.GET("/health/live", deps.Health.LivenessHandler())
	router.GET("/metrics", deps.Metrics.Handler(deps.MetricsExtra...))

	api := router.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}

	authHandler := handlers.NewAuthHandler(deps.Auth)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	taskRoutes := api.Group("/tasks")
	taskRoutes.Use(middleware.Authenticate(deps.Auth))
	{
		taskRoutes.GET("", taskHandler.ListTasks)
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.GET("/:id", taskHandler.GetTask)
		taskRoutes.PUT("/:id", taskHandler.UpdateTask)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	return config
}
