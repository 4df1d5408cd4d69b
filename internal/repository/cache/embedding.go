package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/db"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// store is the consumer interface for cache storage (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// EmbeddingCache stores embedding vectors keyed by the sha256 of their text.
type EmbeddingCache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewEmbeddingCache creates an embedding cache. cacheTotal is a counter vec
// with label "result" ("hit"/"miss"), passed explicitly.
func NewEmbeddingCache(
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *EmbeddingCache {
	return &EmbeddingCache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached vector for text. Any backend error or corrupt
// payload is a miss, never an error.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	key := Key(EmbeddingPrefix, text)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil || len(vec) == 0 {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return nil, false
	}

	c.inc("hit")
	return vec, true
}

// Set writes the vector best-effort + TTL. A failed write is logged and
// must not fail the surrounding operation.
func (c *EmbeddingCache) Set(ctx context.Context, text string, vec []float32) {
	key := Key(EmbeddingPrefix, text)
	if err := c.store.SetWithTTL(ctx, key, vectorToBytes(vec), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func (c *EmbeddingCache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// CachedEmbedder is a cache-aside decorator around an Embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
type CachedEmbedder struct {
	inner domain.Embedder
	cache *EmbeddingCache
}

// NewCachedEmbedder creates the caching decorator.
func NewCachedEmbedder(inner domain.Embedder, cache *EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

// Embed returns a cached embedding or calls the inner embedder. Exactly one
// provider call happens per miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if vec, ok := c.cache.Get(ctx, text); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.cache.Set(ctx, text, result.Embedding)
	return result, nil
}

// CachedBatchEmbedder is a cache-aside decorator around a BatchEmbedder.
// Hits are served from the cache; all misses go to the provider in a single
// batched call, keeping the one-call-per-ingest invariant.
type CachedBatchEmbedder struct {
	inner domain.BatchEmbedder
	cache *EmbeddingCache
}

// NewCachedBatchEmbedder creates the batch caching decorator.
func NewCachedBatchEmbedder(inner domain.BatchEmbedder, cache *EmbeddingCache) *CachedBatchEmbedder {
	return &CachedBatchEmbedder{inner: inner, cache: cache}
}

// BatchEmbed resolves each text from the cache and batch-embeds the rest.
func (c *CachedBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}

	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if vec, ok := c.cache.Get(ctx, text); ok {
			out.Embeddings[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	res, err := c.inner.BatchEmbed(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"batch embed returned %d vectors for %d texts: %w",
			len(res.Embeddings), len(missTexts), domain.ErrEmbeddingProviderError,
		)
	}

	for j, i := range missIdx {
		out.Embeddings[i] = res.Embeddings[j]
		c.cache.Set(ctx, texts[i], res.Embeddings[j])
	}
	out.PromptTokens = res.PromptTokens
	out.TotalTokens = res.TotalTokens

	return out, nil
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
