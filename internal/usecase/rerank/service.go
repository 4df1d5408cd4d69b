// Package rerank re-orders retrieval candidates by cross-encoder relevance.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// Service handles cross-encoder re-ranking.
type Service struct {
	scorer CrossEncoder
}

// New creates a rerank service.
func New(scorer CrossEncoder) *Service {
	return &Service{scorer: scorer}
}

// Rerank scores all candidates against query in one batched model call,
// sorts descending (stable, so the upstream retrieval order breaks ties),
// and truncates to topN. Empty input returns empty without invoking the
// model. A model failure surfaces to the caller.
func (s *Service) Rerank(
	ctx context.Context, query string, candidates []domain.RetrievalResult, topN int,
) ([]domain.RankedResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Chunk.Text
	}

	scores, err := s.scorer.ScorePairs(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("%w: score pairs: %w", domain.ErrRerankFailed, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf(
			"%w: got %d scores for %d candidates", domain.ErrRerankFailed, len(scores), len(candidates),
		)
	}

	ranked := make([]domain.RankedResult, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedResult{Chunk: c.Chunk, RerankScore: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankScore > ranked[j].RerankScore
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked, nil
}
