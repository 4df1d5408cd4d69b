package index

import (
	"errors"
	"testing"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

func TestFlat_AddAndSearch(t *testing.T) {
	idx := NewFlat(2)

	ids, err := idx.Add([][]float32{
		{1, 0},
		{0, 1},
		{0.7, 0.7},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 0 || ids[1] != 1 || ids[2] != 2 {
		t.Fatalf("expected sequential ids 0..2, got %v", ids)
	}

	scores, got, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if got[0] != 0 {
		t.Errorf("expected exact match first, got id %d", got[0])
	}
	if got[1] != 2 {
		t.Errorf("expected diagonal vector second, got id %d", got[1])
	}
	if scores[0] < scores[1] || scores[1] < scores[2] {
		t.Errorf("expected descending scores, got %v", scores)
	}
	if scores[0] < 0.999 {
		t.Errorf("expected cosine ~1.0 for exact match, got %v", scores[0])
	}
}

func TestFlat_SearchPadsWithNoResult(t *testing.T) {
	idx := NewFlat(2)
	if _, err := idx.Add([][]float32{{1, 0}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	scores, ids, err := idx.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(ids) != 5 || len(scores) != 5 {
		t.Fatalf("expected outputs of length 5, got %d/%d", len(ids), len(scores))
	}
	for i := 1; i < 5; i++ {
		if ids[i] != NoResult {
			t.Errorf("position %d: expected NoResult, got %d", i, ids[i])
		}
		if scores[i] != 0 {
			t.Errorf("position %d: expected zero score, got %v", i, scores[i])
		}
	}
}

func TestFlat_SearchEmptyIndex(t *testing.T) {
	idx := NewFlat(3)

	_, ids, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, id := range ids {
		if id != NoResult {
			t.Errorf("expected only NoResult ids, got %v", ids)
		}
	}
}

func TestFlat_DimMismatch(t *testing.T) {
	idx := NewFlat(3)

	if _, err := idx.Add([][]float32{{1, 0}}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("Add: expected ErrVectorDimMismatch, got %v", err)
	}
	if _, _, err := idx.Search([]float32{1, 0}, 1); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("Search: expected ErrVectorDimMismatch, got %v", err)
	}

	// A mismatch anywhere in the batch rejects the whole batch.
	before := idx.Len()
	if _, err := idx.Add([][]float32{{1, 0, 0}, {1, 0}}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("batch Add: expected ErrVectorDimMismatch, got %v", err)
	}
	if idx.Len() != before {
		t.Errorf("expected no vectors stored after rejected batch, got %d", idx.Len())
	}
}

func TestTrainable_AddBeforeTrain(t *testing.T) {
	idx := NewTrainable(2, 2)

	if _, err := idx.Add([][]float32{{1, 0}}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}
}

func TestTrainable_TrainTooSmall(t *testing.T) {
	idx := NewTrainable(2, 3)

	err := idx.Train([][]float32{{1, 0}})
	if !errors.Is(err, ErrTrainingSetTooSmall) {
		t.Errorf("expected ErrTrainingSetTooSmall, got %v", err)
	}
}

func TestTrainable_TrainIdempotent(t *testing.T) {
	idx := NewTrainable(2, 1)

	if err := idx.Train([][]float32{{1, 0}}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	// Second Train is a no-op even with an undersized set.
	if err := idx.Train(nil); err != nil {
		t.Errorf("expected trained index to accept Train as no-op, got %v", err)
	}
	if _, err := idx.Add([][]float32{{0, 1}}); err != nil {
		t.Errorf("Add after Train failed: %v", err)
	}
}

func TestFlat_AppendOnlyDuplicates(t *testing.T) {
	idx := NewFlat(2)

	first, err := idx.Add([][]float32{{1, 0}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	second, err := idx.Add([][]float32{{1, 0}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if first[0] == second[0] {
		t.Errorf("expected fresh id for duplicate vector, got %d twice", first[0])
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 stored vectors, got %d", idx.Len())
	}
}

func TestFlat_TopKValidation(t *testing.T) {
	idx := NewFlat(2)

	if _, _, err := idx.Search([]float32{1, 0}, 0); err == nil {
		t.Error("expected error for topK=0")
	}
}
