package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/db"
)

// ResponseCache stores generated answers keyed by the sha256 of the
// trimmed query text. Keys are case-sensitive. Concurrent identical
// queries are collapsed to one pipeline execution via singleflight.
type ResponseCache struct {
	store      store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewResponseCache creates a response cache.
func NewResponseCache(
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *ResponseCache {
	return &ResponseCache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached answer for query. Backend errors degrade to a miss.
func (c *ResponseCache) Get(ctx context.Context, query string) (string, bool) {
	key := Key(ResponsePrefix, query)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return "", false
	}
	if len(data) == 0 {
		c.inc("miss")
		return "", false
	}

	c.inc("hit")
	return string(data), true
}

// Set writes the answer best-effort + TTL.
func (c *ResponseCache) Set(ctx context.Context, query, answer string) {
	key := Key(ResponsePrefix, query)
	if err := c.store.SetWithTTL(ctx, key, []byte(answer), c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}

// computed carries one compute call's outcome through singleflight so
// collapsed callers share the full result, not just the answer text.
type computed struct {
	answer  string
	payload any
}

// GetOrCompute returns the cached answer or runs compute, storing its
// answer when cacheable. The payload travels alongside the answer but is
// never cached; a cache hit returns a nil payload. Concurrent callers with
// the same query share one compute call and all receive its payload.
func (c *ResponseCache) GetOrCompute(
	ctx context.Context,
	query string,
	compute func() (answer string, payload any, cacheable bool, err error),
) (string, any, bool, error) {
	if answer, ok := c.Get(ctx, query); ok {
		return answer, nil, true, nil
	}

	v, err, _ := c.group.Do(Key(ResponsePrefix, query), func() (any, error) {
		answer, payload, cacheable, err := compute()
		if err != nil {
			return nil, err
		}
		if cacheable {
			c.Set(ctx, query, answer)
		}
		return computed{answer: answer, payload: payload}, nil
	})
	if err != nil {
		return "", nil, false, err
	}

	res, _ := v.(computed)
	return res.answer, res.payload, false, nil
}

func (c *ResponseCache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
