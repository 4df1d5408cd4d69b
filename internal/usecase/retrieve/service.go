// Package retrieve embeds a query, searches the vector index, filters by
// score, and hydrates the surviving chunks.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/index"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/rank"
)

// Service handles vector retrieval.
type Service struct {
	embed  Embedder
	index  Searcher
	chunks ChunkReader
	logger *zap.Logger
}

// New creates a retrieval service.
func New(embed Embedder, idx Searcher, chunks ChunkReader, logger *zap.Logger) *Service {
	return &Service{embed: embed, index: idx, chunks: chunks, logger: logger}
}

// Retrieve embeds query once, issues a single index search, and returns
// hydrated results in the index's native descending-relevance order. Hits
// are dropped when the id is the no-result sentinel or, with threshold set,
// when the raw score falls below it; a missing hydration is skipped, not
// fatal. Zero surviving results is a successful outcome, never an error.
//
// The index reports similarities (see index.Flat); callers fronting a
// distance-reporting backend convert via rank.DistanceToSimilarity before
// thresholding.
func (s *Service) Retrieve(
	ctx context.Context, query string, topK int, threshold *float64,
) ([]domain.RetrievalResult, error) {
	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scores, ids, err := s.index.Search(embRes.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	var results []domain.RetrievalResult
	for i, id := range ids {
		if id == index.NoResult {
			continue
		}
		if threshold != nil && scores[i] < *threshold {
			continue
		}

		chunk, ok, err := s.chunks.GetChunk(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("hydrate chunk %d: %w", id, err)
		}
		if !ok {
			s.logger.Warn("Index hit has no stored chunk", zap.Int64("id", id))
			continue
		}

		results = append(results, domain.RetrievalResult{Chunk: chunk, RawScore: scores[i]})
	}

	// Normalized scores are presentation-only; thresholding above uses raw
	// scores.
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.RawScore
	}
	for i, n := range rank.MinMax(raw) {
		results[i].NormalizedScore = n
	}

	return results, nil
}
