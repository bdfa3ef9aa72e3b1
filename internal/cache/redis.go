package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type RedisCache struct {
	client  *redis.Client
	breaker *CircuitBreaker
	timeout time.Duration
}

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Breaker      *CircuitBreakerConfig
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Breaker:      DefaultCircuitBreakerConfig(),
	}
}

func NewRedisCache(config *CacheConfig) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &RedisCache{
		client:  rdb,
		breaker: NewCircuitBreaker(config.Breaker),
		timeout: 3 * time.Second,
	}
}

// do runs fn through the circuit breaker. An open breaker is reported as ErrCacheDown.
func (r *RedisCache) do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.breaker.Execute(func() error { return fn(ctx) })
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return fmt.Errorf("%w: %v", ErrCacheDown, err)
	}
	return err
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.do(ctx, func(ctx context.Context) error {
		if err := r.client.Set(ctx, key, data, expiration).Err(); err != nil {
			return fmt.Errorf("failed to set cache: %w", err)
		}
		return nil
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	miss := false

	err := r.do(ctx, func(ctx context.Context) error {
		var err error
		data, err = r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get from cache: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if miss {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.do(ctx, func(ctx context.Context) error {
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Stats() map[string]interface{} {
	poolStats := r.client.PoolStats()

	return map[string]interface{}{
		"pool_hits":       poolStats.Hits,
		"pool_misses":     poolStats.Misses,
		"pool_timeouts":   poolStats.Timeouts,
		"pool_total":      poolStats.TotalConns,
		"pool_idle":       poolStats.IdleConns,
		"pool_stale":      poolStats.StaleConns,
		"circuit_breaker": r.breaker.GetStats(),
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
