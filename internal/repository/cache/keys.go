// Package cache provides content-addressed, cache-aside wrappers around the
// key-value store: an embedding cache and a response cache. Cache keys are
// derived from content alone, never from document or chunk identifiers, so
// identical text always cache-hits regardless of ingest history. The cache
// is an optimization, not a correctness dependency: reads degrade to misses
// and writes are best-effort.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key prefixes keep the embedding and response namespaces apart even when
// the cached content coincides.
const (
	EmbeddingPrefix = "embedding"
	ResponsePrefix  = "response"
)

// Key derives the persisted cache key: <prefix>:<sha256-hex of content>.
// This layout is the only persisted state owned by the pipeline and must
// stay stable across process restarts.
func Key(prefix, content string) string {
	h := sha256.Sum256([]byte(content))
	return prefix + ":" + hex.EncodeToString(h[:])
}
