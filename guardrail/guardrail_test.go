package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/tenant"
)

func candidate(score float64) domain.RerankedHit {
	return domain.RerankedHit{RerankScore: score}
}

func moderateConfig() tenant.GuardrailConfig {
	return tenant.GuardrailConfig{
		Preset:         tenant.PresetModerate,
		MinConfidence:  0.35,
		MinTopScore:    0.15,
		MinMeanScore:   0.05,
		MinResultCount: 1,
	}
}

func TestEvaluate_NoCandidates_NoRelevantDocs(t *testing.T) {
	g := New(moderateConfig(), nil)
	decision := g.Evaluate(context.Background(), domain.Query{}, nil)

	assert.False(t, decision.IsAnswerable)
	assert.Equal(t, domain.ReasonNoRelevantDocs, decision.ReasonCode)
	assert.Equal(t, 0, decision.ScoreStats.Count)
}

func TestEvaluate_StrongCandidates_Answerable(t *testing.T) {
	g := New(moderateConfig(), nil)
	candidates := []domain.RerankedHit{
		candidate(0.9), candidate(0.85), candidate(0.8), candidate(0.82), candidate(0.88),
	}

	decision := g.Evaluate(context.Background(), domain.Query{}, candidates)

	require.True(t, decision.IsAnswerable)
	assert.Empty(t, decision.ReasonCode)
	assert.Greater(t, decision.Confidence, moderateConfig().MinConfidence)
}

func TestEvaluate_WeakCandidates_LowConfidence(t *testing.T) {
	g := New(moderateConfig(), nil)
	candidates := []domain.RerankedHit{candidate(0.1), candidate(0.02)}

	decision := g.Evaluate(context.Background(), domain.Query{}, candidates)

	assert.False(t, decision.IsAnswerable)
	assert.Equal(t, domain.ReasonLowConfidence, decision.ReasonCode)
}

func TestEvaluate_BorderlineCandidates_UnclearAnswer(t *testing.T) {
	g := New(moderateConfig(), nil)
	// Top score and mean each clear their individual bars, but the
	// aggregate confidence (which also weighs consistency and count)
	// still falls short of the configured minimum.
	candidates := []domain.RerankedHit{
		candidate(0.16), candidate(0.05), candidate(0.04), candidate(0.03),
	}

	decision := g.Evaluate(context.Background(), domain.Query{}, candidates)

	assert.False(t, decision.IsAnswerable)
	assert.Equal(t, domain.ReasonUnclearAnswer, decision.ReasonCode)
}

func TestEvaluate_PriorDecisionTrustedVerbatim(t *testing.T) {
	g := New(moderateConfig(), nil)
	prior := &domain.GuardrailDecision{
		IsAnswerable: true,
		Confidence:   0.99,
		ReasonCode:   "",
		Rationale:    "cached from earlier turn",
	}
	query := domain.Query{PriorGuardrail: prior}

	decision := g.Evaluate(context.Background(), query, nil)

	assert.Equal(t, *prior, decision)
}

func TestComputeConfidence_PerfectAgreement(t *testing.T) {
	stats := domain.ScoreStats{Mean: 1, Max: 1, Min: 1, Count: 5}
	confidence := computeConfidence(stats)
	assert.InDelta(t, 1.0, confidence, 1e-9)
}

func TestComputeConfidence_EmptySet(t *testing.T) {
	assert.Equal(t, 0.0, computeConfidence(domain.ScoreStats{}))
}
