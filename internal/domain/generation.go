package domain

import "context"

// Generator produces a grounded answer from a fully built prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CrossEncoder scores (query, passage) pairs jointly. One call scores the
// whole batch; implementations never return partial batches.
type CrossEncoder interface {
	ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error)
}
