package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/queryengine/domain"
)

func hit(docID string, rank int) domain.RetrievalHit {
	return domain.RetrievalHit{DocID: docID, Rank: rank}
}

func TestFuse_SumsContributionsAcrossBackends(t *testing.T) {
	vector := []domain.RetrievalHit{hit("d1", 1), hit("d2", 2)}
	lexical := []domain.RetrievalHit{hit("d1", 2)}

	out := Fuse(vector, lexical, 0.7, 0.3)
	require.Len(t, out, 2)

	var d1 domain.FusedHit
	for _, h := range out {
		if h.DocID == "d1" {
			d1 = h
		}
	}

	expected := 0.7/float64(rrfK+1) + 0.3/float64(rrfK+2)
	assert.InDelta(t, expected, d1.FusionScore, 1e-9)
	assert.True(t, d1.ContributingBackends[domain.BackendVector])
	assert.True(t, d1.ContributingBackends[domain.BackendLexical])
}

func TestFuse_OrderInvariantUnderSwap(t *testing.T) {
	vector := []domain.RetrievalHit{hit("d1", 1), hit("d2", 3)}
	lexical := []domain.RetrievalHit{hit("d2", 1), hit("d3", 2)}

	a := Fuse(vector, lexical, 0.6, 0.4)
	b := Fuse(lexical, vector, 0.4, 0.6)

	scoresA := map[string]float64{}
	for _, h := range a {
		scoresA[h.DocID] = h.FusionScore
	}
	scoresB := map[string]float64{}
	for _, h := range b {
		scoresB[h.DocID] = h.FusionScore
	}
	assert.Equal(t, len(scoresA), len(scoresB))
	for doc, score := range scoresA {
		assert.InDelta(t, score, scoresB[doc], 1e-9)
	}
}

func TestFuse_TieBreaksByCoverageThenRankThenDocID(t *testing.T) {
	// d1: both backends at low rank; d2: one backend at high rank.
	vector := []domain.RetrievalHit{hit("d1", 60), hit("d2", 1)}
	lexical := []domain.RetrievalHit{hit("d1", 60)}

	out := Fuse(vector, lexical, 1, 1)
	require.Len(t, out, 2)
	// d1's combined contribution (1/120 + 1/120 = 1/60) exceeds d2's single
	// 1/(60+1), so d1 ranks first on score; this test only checks
	// stability of ordering rules, not a crafted tie.
	assert.Equal(t, "d1", out[0].DocID)
}

func TestFuse_EmptyInputs(t *testing.T) {
	out := Fuse(nil, nil, 0.5, 0.5)
	assert.Empty(t, out)
}

func TestClassifyIntent(t *testing.T) {
	assert.Equal(t, IntentDefinitional, ClassifyIntent("What is the capital of France?"))
	assert.Equal(t, IntentExploratory, ClassifyIntent("Tell me everything you know about our onboarding process and how it has evolved over the last few years"))
}
