package domain

// Document is an ingested source text. Immutable once created; owned by the
// ingest path.
type Document struct {
	ID       string
	Title    string
	Source   string
	RawText  string
	Metadata map[string]string
}

// Chunk is a bounded, possibly overlapping token window of a document's text.
// Chunks are the unit of embedding and retrieval. A chunk is never mutated
// after creation.
type Chunk struct {
	ID         string
	DocID      string
	Title      string
	Text       string
	TokenCount int
	CharCount  int

	// Token offset range within the source document, for provenance.
	// TokenEnd is exclusive and clamped to the document's token count.
	TokenStart int
	TokenEnd   int
}

// RetrievalResult is a chunk returned by vector search, in the index's
// native descending-relevance order.
type RetrievalResult struct {
	Chunk           Chunk
	RawScore        float64
	NormalizedScore float64
}

// RankedResult is a chunk after cross-encoder scoring, ordered by
// RerankScore descending.
type RankedResult struct {
	Chunk       Chunk
	RerankScore float64
}
