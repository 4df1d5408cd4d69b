package rerank

import "context"

// CrossEncoder scores (query, passage) pairs in a single batched call.
type CrossEncoder interface {
	ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error)
}
