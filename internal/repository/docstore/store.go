// Package docstore persists chunk records keyed by their vector index id,
// so retrieval can hydrate the full text behind a search hit.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/db"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

const defaultKeyPrefix = "rag:chunk:"

// kvStore is the consumer interface for chunk storage (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store maps vector index ids to chunk records.
type Store struct {
	kv     kvStore
	prefix string
}

// New creates a chunk store.
func New(kv kvStore) *Store {
	return &Store{kv: kv, prefix: defaultKeyPrefix}
}

// WithKeyPrefix overrides the storage key prefix.
func (s *Store) WithKeyPrefix(prefix string) *Store {
	if prefix != "" {
		s.prefix = prefix
	}
	return s
}

// PutChunks stores one record per (id, chunk) pair. ids and chunks must be
// parallel; a length mismatch rejects the whole batch.
func (s *Store) PutChunks(ctx context.Context, ids []int64, chunks []domain.Chunk) error {
	if len(ids) != len(chunks) {
		return fmt.Errorf("docstore: %d ids for %d chunks", len(ids), len(chunks))
	}

	for i, chunk := range chunks {
		data, err := json.Marshal(toDTO(chunk))
		if err != nil {
			return fmt.Errorf("marshal chunk %s: %w", chunk.ID, err)
		}
		if err := s.kv.Set(ctx, s.key(ids[i]), data); err != nil {
			return fmt.Errorf("store chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// GetChunk returns the chunk behind an index id. A missing record reports
// ok=false without an error; retrieval skips it.
func (s *Store) GetChunk(ctx context.Context, id int64) (domain.Chunk, bool, error) {
	data, err := s.kv.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Chunk{}, false, nil
		}
		return domain.Chunk{}, false, fmt.Errorf("get chunk %d: %w", id, err)
	}

	var dto chunkDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Chunk{}, false, fmt.Errorf("unmarshal chunk %d: %w", id, err)
	}
	return fromDTO(dto), true, nil
}

func (s *Store) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}
