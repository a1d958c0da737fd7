// Package fusion combines ranked hit lists from multiple retrieval backends
// into a single ranked list via reciprocal rank fusion (RRF).
package fusion

import (
	"sort"

	"github.com/ragforge/queryengine/domain"
)

// rrfK is the standard RRF rank-damping constant.
const rrfK = 60

// Fuse merges vector and lexical hit lists, weighting each backend's
// contribution. A document's fusionScore is the sum of
// weight/(rrfK+rank) across every backend that surfaced it. Output is
// ordered by fusionScore descending; ties break by backend coverage (both
// beats one), then combined backend-local rank (lower is better), then
// docId lexicographically.
func Fuse(vectorHits, lexicalHits []domain.RetrievalHit, vectorWeight, lexicalWeight float64) []domain.FusedHit {
	byDoc := make(map[string]*domain.FusedHit)
	order := make([]string, 0, len(vectorHits)+len(lexicalHits))

	contribute := func(hits []domain.RetrievalHit, backend domain.Backend, weight float64) {
		for _, h := range hits {
			fh, ok := byDoc[h.DocID]
			if !ok {
				fh = &domain.FusedHit{
					DocID:                 h.DocID,
					Payload:               h.Payload,
					Content:               h.Content,
					ContributingBackends:  make(map[domain.Backend]bool),
				}
				byDoc[h.DocID] = fh
				order = append(order, h.DocID)
			}
			fh.FusionScore += weight / float64(rrfK+h.Rank)
			fh.ContributingBackends[backend] = true
			switch backend {
			case domain.BackendVector:
				fh.VectorRank = h.Rank
			case domain.BackendLexical:
				fh.LexicalRank = h.Rank
			}
		}
	}

	contribute(vectorHits, domain.BackendVector, vectorWeight)
	contribute(lexicalHits, domain.BackendLexical, lexicalWeight)

	out := make([]domain.FusedHit, 0, len(order))
	for _, docID := range order {
		out = append(out, *byDoc[docID])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	return out
}

// less reports whether a should sort before b (a is "better").
func less(a, b domain.FusedHit) bool {
	if a.FusionScore != b.FusionScore {
		return a.FusionScore > b.FusionScore
	}
	aBoth := len(a.ContributingBackends) > 1
	bBoth := len(b.ContributingBackends) > 1
	if aBoth != bBoth {
		return aBoth
	}
	aRankSum := rankSum(a)
	bRankSum := rankSum(b)
	if aRankSum != bRankSum {
		return aRankSum < bRankSum
	}
	return a.DocID < b.DocID
}

func rankSum(h domain.FusedHit) int {
	return h.VectorRank + h.LexicalRank
}
