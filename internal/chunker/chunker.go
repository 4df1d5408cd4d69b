// Package chunker splits cleaned document text into overlapping, bounded
// token windows. Splitting is a pure function of text and config: identical
// inputs always yield byte-identical chunk sequences, which makes
// re-ingestion idempotent at the chunk level.
package chunker

import (
	"fmt"
	"strings"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

// Config holds chunking parameters.
type Config struct {
	// ChunkSize is the token window length. Windows never exceed it.
	ChunkSize int
	// ChunkOverlap is the token overlap between consecutive windows.
	// Must be smaller than ChunkSize.
	ChunkOverlap int
	// MinChars drops windows whose decoded text is shorter than this,
	// preventing near-empty trailing fragments.
	MinChars int
}

// Split chunks text into token windows of cfg.ChunkSize advancing by
// cfg.ChunkSize - cfg.ChunkOverlap. Each emitted chunk records its token
// offset range (end clamped to the token count) for provenance. Empty text,
// or text whose every window decodes below MinChars, yields no chunks.
func Split(text, docID, title string, cfg Config) ([]domain.Chunk, error) {
	stride := cfg.ChunkSize - cfg.ChunkOverlap
	if stride <= 0 {
		return nil, fmt.Errorf(
			"%w: chunk_overlap %d must be smaller than chunk_size %d",
			domain.ErrInvalidChunking, cfg.ChunkOverlap, cfg.ChunkSize,
		)
	}

	spans := Tokenize(text)

	var chunks []domain.Chunk
	seq := 0
	for start := 0; start < len(spans); start += stride {
		end := start + cfg.ChunkSize
		if end > len(spans) {
			end = len(spans)
		}

		piece := strings.TrimSpace(Decode(text, spans, start, end))
		if len(piece) >= cfg.MinChars {
			chunks = append(chunks, domain.Chunk{
				ID:         fmt.Sprintf("%s_chunk_%04d", docID, seq),
				DocID:      docID,
				Title:      title,
				Text:       piece,
				TokenCount: end - start,
				CharCount:  len(piece),
				TokenStart: start,
				TokenEnd:   end,
			})
		}
		seq++
	}

	return chunks, nil
}
