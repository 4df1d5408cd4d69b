package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

var (
	// ErrNotTrained signals Add before Train.
	ErrNotTrained = errors.New("index: not trained")
	// ErrTrainingSetTooSmall signals a training set below the index minimum.
	ErrTrainingSetTooSmall = errors.New("index: training set too small")
)

// Flat is an exact inner-product index over unit-normalized vectors. Both
// stored and query vectors are L2-normalized at this boundary, so scores
// are cosine similarities in descending order and no distance conversion is
// needed downstream.
//
// Ids are assigned sequentially in insertion order and never reused. The
// index is append-only: re-adding an identical vector creates a duplicate
// entry. Safe for concurrent use.
type Flat struct {
	mu       sync.RWMutex
	dim      int
	minTrain int
	trained  bool
	vectors  [][]float32
}

// NewFlat creates a flat index for vectors of the given dimensionality.
// A flat index needs no training data, so it starts trained and Train is
// an idempotent no-op.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim, trained: true}
}

// NewTrainable creates a flat index that requires an explicit Train call
// with at least minTrain vectors before Add, like a quantizing index would.
func NewTrainable(dim, minTrain int) *Flat {
	return &Flat{dim: dim, minTrain: minTrain}
}

// Train marks the index trained. No-op if already trained; fails if the
// training set is smaller than the index minimum.
func (f *Flat) Train(vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.trained {
		return nil
	}
	if len(vectors) < f.minTrain {
		return fmt.Errorf("%w: got %d vectors, need %d", ErrTrainingSetTooSmall, len(vectors), f.minTrain)
	}
	for _, v := range vectors {
		if err := f.checkDim(v); err != nil {
			return err
		}
	}
	f.trained = true
	return nil
}

// Add appends vectors and returns their assigned ids in order. All-or-
// nothing: a dimension mismatch anywhere rejects the whole batch.
func (f *Flat) Add(vectors [][]float32) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.trained {
		return nil, ErrNotTrained
	}
	for _, v := range vectors {
		if err := f.checkDim(v); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(vectors))
	for i, v := range vectors {
		ids[i] = int64(len(f.vectors))
		f.vectors = append(f.vectors, normalize(v))
	}
	return ids, nil
}

// Search returns the topK nearest vectors by cosine similarity. Output
// slices always have length topK; absent positions carry NoResult ids and
// zero scores.
func (f *Flat) Search(query []float32, topK int) ([]float64, []int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.checkDim(query); err != nil {
		return nil, nil, err
	}
	if topK <= 0 {
		return nil, nil, fmt.Errorf("index: topK must be positive, got %d", topK)
	}

	q := normalize(query)

	type hit struct {
		id    int64
		score float64
	}
	hits := make([]hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = hit{id: int64(i), score: dot(q, v)}
	}

	// Stable keeps insertion order as the tie-break for equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	scores := make([]float64, topK)
	ids := make([]int64, topK)
	for i := range ids {
		if i < len(hits) {
			scores[i] = hits[i].score
			ids[i] = hits[i].id
		} else {
			ids[i] = NoResult
		}
	}
	return scores, ids, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

func (f *Flat) checkDim(v []float32) error {
	if len(v) != f.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(v), f.dim)
	}
	return nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
