// Package index defines the vector index contract the pipeline consumes
// and an in-process exact-search implementation of it.
package index

// NoResult is the canonical "no result" id sentinel. Search pads its output
// with it when fewer than topK vectors exist.
const NoResult int64 = -1

// Index is the vector index contract: Train must precede Add, Search
// returns parallel (scores, ids) slices of length topK in descending score
// order with NoResult padding.
type Index interface {
	Train(vectors [][]float32) error
	Add(vectors [][]float32) ([]int64, error)
	Search(query []float32, topK int) (scores []float64, ids []int64, err error)
}
