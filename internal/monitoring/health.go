package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

// HealthChecker runs the registered dependency checks on every probe.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]HealthCheckFunc
	timeout time.Duration
	started time.Time
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]HealthCheckFunc),
		timeout: timeout,
		started: time.Now(),
	}
}

func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes all checks concurrently and reports whether every one passed.
func (h *HealthChecker) Run(ctx context.Context) ([]HealthCheck, bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	funcs := make([]HealthCheckFunc, len(names))
	for i, name := range names {
		funcs[i] = h.checks[name]
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]HealthCheck, len(names))
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result := HealthCheck{Name: names[i], Status: StatusHealthy, LastRun: time.Now().UTC()}
			if err := funcs[i](ctx); err != nil {
				result.Status = StatusUnhealthy
				result.Message = err.Error()
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	healthy := true
	for _, r := range results {
		if r.Status != StatusHealthy {
			healthy = false
		}
	}
	return results, healthy
}

func (h *HealthChecker) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, healthy := h.Run(c.Request.Context())

		overall, status := StatusHealthy, http.StatusOK
		if !healthy {
			overall, status = StatusUnhealthy, http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"timestamp": time.Now().UTC(),
			"checks":    checks,
			"uptime":    time.Since(h.started).String(),
		})
	}
}

func (h *HealthChecker) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, healthy := h.Run(c.Request.Context()); !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "timestamp": time.Now().UTC()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now().UTC()})
	}
}

func (h *HealthChecker) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(h.started).String(),
		})
	}
}
