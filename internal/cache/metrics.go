package cache

import (
	"sync/atomic"
	"time"
)

type CacheMetrics struct {
	hits    atomic.Int64
	misses  atomic.Int64
	errors  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	started time.Time
}

// MetricsSnapshot is a point-in-time copy of CacheMetrics.
type MetricsSnapshot struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Errors    int64   `json:"errors"`
	Sets      int64   `json:"sets"`
	Deletes   int64   `json:"deletes"`
	HitRate   float64 `json:"hit_rate"`
	StartTime int64   `json:"start_time"`
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{started: time.Now()}
}

func (m *CacheMetrics) RecordHit()    { m.hits.Add(1) }
func (m *CacheMetrics) RecordMiss()   { m.misses.Add(1) }
func (m *CacheMetrics) RecordError()  { m.errors.Add(1) }
func (m *CacheMetrics) RecordSet()    { m.sets.Add(1) }
func (m *CacheMetrics) RecordDelete() { m.deletes.Add(1) }

// HitRate returns hits as a percentage of lookups.
func (m *CacheMetrics) HitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}

func (m *CacheMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Errors:    m.errors.Load(),
		Sets:      m.sets.Load(),
		Deletes:   m.deletes.Load(),
		HitRate:   m.HitRate(),
		StartTime: m.started.Unix(),
	}
}
