package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker is rejecting cache calls.
var ErrCircuitOpen = errors.New("report cache circuit open")

const defaultKeyPrefix = "ledger:report:"

// RedisReportCache stores rendered reports in Redis. Keys embed a generation
// number; Invalidate bumps it so every older entry becomes unreachable and
// expires on its own TTL.
type RedisReportCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	metrics metrics.Recorder
	logger  *slog.Logger
}

var _ portssvc.ReportCache = (*RedisReportCache)(nil)

// RedisReportCacheOption is a functional option for configuring the cache
type RedisReportCacheOption func(*RedisReportCache)

// WithTTL sets how long a rendered report stays cached.
func WithTTL(ttl time.Duration) RedisReportCacheOption {
	return func(c *RedisReportCache) { c.ttl = ttl }
}

// WithKeyPrefix namespaces every key written by the cache.
func WithKeyPrefix(prefix string) RedisReportCacheOption {
	return func(c *RedisReportCache) { c.prefix = prefix }
}

// WithTimeout bounds each Redis round trip.
func WithTimeout(d time.Duration) RedisReportCacheOption {
	return func(c *RedisReportCache) { c.timeout = d }
}

// WithMetrics reports breaker state changes.
func WithMetrics(m metrics.Recorder) RedisReportCacheOption {
	return func(c *RedisReportCache) { c.metrics = m }
}

// WithLogger sets the logger for the cache
func WithLogger(l *slog.Logger) RedisReportCacheOption {
	return func(c *RedisReportCache) { c.logger = l }
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisReportCache wraps client. The caller keeps ownership of client.
func NewRedisReportCache(client *redis.Client, opts ...RedisReportCacheOption) *RedisReportCache {
	c := &RedisReportCache{
		client:  client,
		prefix:  defaultKeyPrefix,
		ttl:     time.Minute,
		timeout: 500 * time.Millisecond,
		metrics: metrics.NoOpRecorder{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "report-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			c.metrics.RecordCircuitState(name, circuitState(to))
		},
	})
	return c
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}

// execute runs op through the breaker with the per call timeout.
func (c *RedisReportCache) execute(ctx context.Context, op func(ctx context.Context) (any, error)) (any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.cb.Execute(func() (any, error) { return op(ctx) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return res, err
}

func (c *RedisReportCache) generationKey() string { return c.prefix + "generation" }

// entryKey resolves key under the current generation.
func (c *RedisReportCache) entryKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s", c.prefix, gen, key), nil
}

// Get loads the entry for key into dest and reports whether it existed.
func (c *RedisReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	res, err := c.execute(ctx, func(ctx context.Context) (any, error) {
		k, err := c.entryKey(ctx, key)
		if err != nil {
			return nil, err
		}
		raw, err := c.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		return false, fmt.Errorf("report cache get %s: %w", key, err)
	}
	raw, _ := res.([]byte)
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for the configured TTL.
func (c *RedisReportCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", key, err)
	}
	_, err = c.execute(ctx, func(ctx context.Context) (any, error) {
		k, err := c.entryKey(ctx, key)
		if err != nil {
			return nil, err
		}
		return nil, c.client.Set(ctx, k, raw, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("report cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate moves to a new generation.
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	_, err := c.execute(ctx, func(ctx context.Context) (any, error) {
		return nil, c.client.Incr(ctx, c.generationKey()).Err()
	})
	if err != nil {
		return fmt.Errorf("report cache invalidate: %w", err)
	}
	return nil
}
