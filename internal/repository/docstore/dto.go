package docstore

import "github.com/asheesh07/Production-Grade-RAG-System/internal/domain"

// chunkDTO is the persisted JSON form of a chunk record.
type chunkDTO struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	CharCount  int    `json:"char_count"`
	TokenStart int    `json:"token_start"`
	TokenEnd   int    `json:"token_end"`
}

func toDTO(c domain.Chunk) chunkDTO {
	return chunkDTO{
		ID:         c.ID,
		DocID:      c.DocID,
		Title:      c.Title,
		Text:       c.Text,
		TokenCount: c.TokenCount,
		CharCount:  c.CharCount,
		TokenStart: c.TokenStart,
		TokenEnd:   c.TokenEnd,
	}
}

func fromDTO(d chunkDTO) domain.Chunk {
	return domain.Chunk{
		ID:         d.ID,
		DocID:      d.DocID,
		Title:      d.Title,
		Text:       d.Text,
		TokenCount: d.TokenCount,
		CharCount:  d.CharCount,
		TokenStart: d.TokenStart,
		TokenEnd:   d.TokenEnd,
	}
}
