package domain

import "errors"

var (
	// ErrInvalidChunking signals invalid chunking parameters (non-positive stride).
	ErrInvalidChunking = errors.New("invalid chunking config")
	// ErrUnsupportedDocument signals a document kind with no loader.
	ErrUnsupportedDocument = errors.New("unsupported document kind")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch at the index boundary.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRerankFailed signals a cross-encoder scoring failure. Never silently
	// absorbed: a degraded rerank changes answer content without signal.
	ErrRerankFailed = errors.New("rerank failed")
	// ErrGenerationFailed is the single failure surfaced to the caller when
	// any query-flow stage (retrieve, rerank, generate) fails.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrIngestFailed signals an ingest-stage failure. Aborts the remaining
	// stages for that document only.
	ErrIngestFailed = errors.New("ingest failed")
)
