package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	RequestCount    int64            `json:"request_count"`
	AverageDuration time.Duration    `json:"avg_request_duration"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
}

// Collector aggregates per-request counters for the /metrics endpoint.
type Collector struct {
	mu            sync.Mutex
	metrics       Metrics
	totalDuration time.Duration
}

func NewCollector() *Collector {
	return &Collector{
		metrics: Metrics{
			StatusCodes: make(map[string]int64),
			Endpoints:   make(map[string]int64),
			StartTime:   time.Now(),
		},
	}
}

func (m *Collector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.metrics.ActiveRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		endpoint = c.Request.Method + " " + endpoint

		m.mu.Lock()
		defer m.mu.Unlock()

		m.metrics.RequestCount++
		m.metrics.ActiveRequests--
		m.totalDuration += duration
		m.metrics.AverageDuration = m.totalDuration / time.Duration(m.metrics.RequestCount)
		m.metrics.LastRequest = time.Now()
		if statusCode >= 400 {
			m.metrics.ErrorCount++
		}
		m.metrics.StatusCodes[strconv.Itoa(statusCode)]++
		m.metrics.Endpoints[endpoint]++
	}
}

func (m *Collector) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.metrics
	snapshot.StatusCodes = make(map[string]int64, len(m.metrics.StatusCodes))
	for k, v := range m.metrics.StatusCodes {
		snapshot.StatusCodes[k] = v
	}
	snapshot.Endpoints = make(map[string]int64, len(m.metrics.Endpoints))
	for k, v := range m.metrics.Endpoints {
		snapshot.Endpoints[k] = v
	}
	return snapshot
}

func (m *Collector) Uptime() time.Duration {
	return time.Since(m.metrics.StartTime)
}

type SystemMetrics struct {
	Uptime         string      `json:"uptime"`
	MemoryUsage    MemoryStats `json:"memory"`
	GoroutineCount int         `json:"goroutine_count"`
	CPUCount       int         `json:"cpu_count"`
	GoVersion      string      `json:"go_version"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc_mb"`
	TotalAlloc uint64 `json:"total_alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
}

func (m *Collector) SystemMetrics() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemMetrics{
		Uptime: m.Uptime().String(),
		MemoryUsage: MemoryStats{
			Alloc:      bToMb(mem.Alloc),
			TotalAlloc: bToMb(mem.TotalAlloc),
			Sys:        bToMb(mem.Sys),
			NumGC:      mem.NumGC,
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// Extra returns additional sections for the metrics payload, such as cache statistics.
type Extra func() map[string]interface{}

func (m *Collector) Handler(extras ...Extra) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"application": m.Snapshot(),
			"system":      m.SystemMetrics(),
			"timestamp":   time.Now().UTC(),
		}
		for _, extra := range extras {
			for k, v := range extra() {
				response[k] = v
			}
		}
		c.JSON(http.StatusOK, response)
	}
}
