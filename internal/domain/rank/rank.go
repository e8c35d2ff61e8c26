// Package rank scores corpus documents against a query embedding by cosine
// similarity and selects the best matches.
package rank

import (
	"math"
	"sort"

	"github.com/foliochat/foliochat/internal/domain"
)

// epsilon guards the cosine denominator against division by zero.
const epsilon = 1e-9

// Ranked pairs a corpus document with its similarity score in [-1, 1].
type Ranked struct {
	Doc   domain.Document
	Score float64
}

// Cosine computes the cosine similarity between two vectors. Vectors of
// unequal length are compared over the overlapping prefix only; this is a
// degenerate-input policy, not expected in normal operation.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}

// Top ranks docs by descending cosine similarity between query and the
// index-aligned vecs, truncated to at most k entries. Tie order follows the
// underlying sort and is not part of the contract.
func Top(query []float32, docs []domain.Document, vecs [][]float32, k int) []Ranked {
	ranked := make([]Ranked, 0, len(docs))
	for i, doc := range docs {
		if i >= len(vecs) {
			break
		}
		ranked = append(ranked, Ranked{Doc: doc, Score: Cosine(query, vecs[i])})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
