package pipeline

import (
	"context"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// Retriever returns candidate chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, threshold *float64) ([]domain.RetrievalResult, error)
}

// Reranker re-orders candidates by cross-encoder relevance.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.RetrievalResult, topN int) ([]domain.RankedResult, error)
}

// Generator produces the grounded answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ResponseCache short-circuits the query flow for repeated queries. The
// payload rides along with the answer so callers collapsed onto one compute
// share its full result; it is never cached.
type ResponseCache interface {
	GetOrCompute(
		ctx context.Context,
		query string,
		compute func() (answer string, payload any, cacheable bool, err error),
	) (answer string, payload any, hit bool, err error)
}

// Indexer is the vector index write contract. Train is idempotent once the
// index is trained.
type Indexer interface {
	Train(vectors [][]float32) error
	Add(vectors [][]float32) ([]int64, error)
}

// ChunkWriter persists chunk records behind their index ids.
type ChunkWriter interface {
	PutChunks(ctx context.Context, ids []int64, chunks []domain.Chunk) error
}
