// Package rank provides stateless transforms over score sequences. All
// functions are total: empty input returns an empty sequence, never an
// error.
package rank

import "math"

// MinMax rescales scores into [0,1]. A degenerate all-equal input maps
// every score to 1.0, treating the tie as full relevance.
func MinMax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	minS, maxS := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minS {
			minS = s
		}
		if s > maxS {
			maxS = s
		}
	}

	if maxS == minS {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	for i, s := range scores {
		out[i] = (s - minS) / (maxS - minS)
	}
	return out
}

// ZScore centers scores on their mean and divides by the population
// standard deviation. Zero variance divides by 1.0 instead. Output is
// unbounded and mean-centered.
func ZScore(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))

	std := 1.0
	if variance > 0 {
		std = math.Sqrt(variance)
	}

	for i, s := range scores {
		out[i] = (s - mean) / std
	}
	return out
}

// Softmax is the numerically stabilized exponential normalization: the max
// score is subtracted before exponentiating. Outputs sum to 1.0.
func Softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	maxS := scores[0]
	for _, s := range scores[1:] {
		if s > maxS {
			maxS = s
		}
	}

	var total float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxS)
		total += out[i]
	}

	for i := range out {
		out[i] /= total
	}
	return out
}

// DistanceToSimilarity maps distances to similarities via 1/(1+d),
// monotonically sending 0..inf to 1..0. Callers searching a
// distance-reporting index apply this before thresholding; the retriever
// never applies it implicitly.
func DistanceToSimilarity(distances []float64) []float64 {
	out := make([]float64, len(distances))
	for i, d := range distances {
		out[i] = 1.0 / (1.0 + d)
	}
	return out
}
