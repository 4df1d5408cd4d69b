package retrieve

import (
	"context"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher is the vector index search contract. ids[i] == -1 marks an
// absent result at position i.
type Searcher interface {
	Search(query []float32, topK int) (scores []float64, ids []int64, err error)
}

// ChunkReader hydrates chunk records behind index ids.
type ChunkReader interface {
	GetChunk(ctx context.Context, id int64) (domain.Chunk, bool, error)
}
