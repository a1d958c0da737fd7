// Package guardrail decides, before any LLM call is made, whether the
// retrieved/reranked candidates actually support an answer. A request that
// fails the gate short-circuits straight to an "I don't know" response and
// never reaches the LLM.
package guardrail

import (
	"context"
	"log/slog"
	"math"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/tenant"
)

// consistencySpread is the score spread (max-min) above which the
// consistency term bottoms out at zero.
const consistencySpread = 0.8

// countScoreSaturation is the candidate count at which the count term
// saturates at 1.0.
const countScoreSaturation = 5.0

// Guardrail gates answer synthesis on whether the candidate set plausibly
// answers the query, per tenant-configured thresholds.
type Guardrail struct {
	Config tenant.GuardrailConfig
	Logger *slog.Logger
}

// New builds a Guardrail from a resolved tenant configuration.
func New(cfg tenant.GuardrailConfig, logger *slog.Logger) *Guardrail {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guardrail{Config: cfg, Logger: logger}
}

// Evaluate decides answerability for a single query. If query carries a
// PriorGuardrail decision (e.g. a retry within the same conversation turn),
// it is trusted verbatim and returned without re-evaluation.
func (g *Guardrail) Evaluate(ctx context.Context, query domain.Query, candidates []domain.RerankedHit) domain.GuardrailDecision {
	if query.PriorGuardrail != nil {
		return *query.PriorGuardrail
	}

	stats := computeStats(candidates)
	confidence := computeConfidence(stats)

	decision := domain.GuardrailDecision{
		Confidence: confidence,
		ScoreStats: stats,
	}

	decision.IsAnswerable = stats.Count >= g.Config.MinResultCount &&
		stats.Max >= g.Config.MinTopScore &&
		stats.Mean >= g.Config.MinMeanScore &&
		confidence >= g.Config.MinConfidence

	if decision.IsAnswerable {
		decision.Rationale = "candidate set clears all answerability thresholds"
		return decision
	}

	decision.ReasonCode = reasonCode(stats, confidence, g.Config)
	decision.Rationale = rationale(decision.ReasonCode)

	g.logger().Debug("guardrail refused answer",
		"reasonCode", decision.ReasonCode,
		"confidence", confidence,
		"count", stats.Count,
		"max", stats.Max,
		"mean", stats.Mean,
	)

	return decision
}

func (g *Guardrail) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// computeStats summarizes the rerank-score distribution of the effective
// candidate list.
func computeStats(candidates []domain.RerankedHit) domain.ScoreStats {
	if len(candidates) == 0 {
		return domain.ScoreStats{}
	}

	sum := 0.0
	max := candidates[0].RerankScore
	min := candidates[0].RerankScore
	for _, c := range candidates {
		sum += c.RerankScore
		if c.RerankScore > max {
			max = c.RerankScore
		}
		if c.RerankScore < min {
			min = c.RerankScore
		}
	}
	mean := sum / float64(len(candidates))

	variance := 0.0
	for _, c := range candidates {
		d := c.RerankScore - mean
		variance += d * d
	}
	variance /= float64(len(candidates))

	return domain.ScoreStats{
		Mean:   mean,
		Max:    max,
		Min:    min,
		StdDev: math.Sqrt(variance),
		Count:  len(candidates),
	}
}

// computeConfidence combines the score distribution into a single
// answerability confidence in [0,1]:
//
//	confidence = 0.4*normalize(mean) + 0.3*normalize(max) + 0.2*consistency + 0.1*countScore
//	consistency = max(0, 1-(max-min)/0.8)
//	countScore  = min(count/5, 1)
//
// normalize clamps a raw relevance score (already roughly in [0,1] from the
// reranker, but not guaranteed) into [0,1].
func computeConfidence(stats domain.ScoreStats) float64 {
	if stats.Count == 0 {
		return 0
	}

	consistency := 1 - (stats.Max-stats.Min)/consistencySpread
	if consistency < 0 {
		consistency = 0
	}

	countScore := float64(stats.Count) / countScoreSaturation
	if countScore > 1 {
		countScore = 1
	}

	confidence := 0.4*normalize(stats.Mean) +
		0.3*normalize(stats.Max) +
		0.2*consistency +
		0.1*countScore

	return clamp01(confidence)
}

func normalize(score float64) float64 {
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// reasonCode picks the first threshold (in the fixed order below) that the
// candidate set fails, matching the order the thresholds are documented in:
// no candidates at all is the bluntest failure, then raw relevance
// (top/mean score), then the aggregate confidence signal.
func reasonCode(stats domain.ScoreStats, confidence float64, cfg tenant.GuardrailConfig) domain.ReasonCode {
	if stats.Count < cfg.MinResultCount || stats.Count == 0 {
		return domain.ReasonNoRelevantDocs
	}
	if stats.Max < cfg.MinTopScore || stats.Mean < cfg.MinMeanScore {
		return domain.ReasonLowConfidence
	}
	_ = confidence
	return domain.ReasonUnclearAnswer
}

func rationale(code domain.ReasonCode) string {
	switch code {
	case domain.ReasonNoRelevantDocs:
		return "no candidate documents met the minimum relevance bar"
	case domain.ReasonLowConfidence:
		return "top or mean relevance score fell below its configured threshold"
	case domain.ReasonUnclearAnswer:
		return "aggregate confidence fell below the configured threshold despite adequate per-document scores"
	default:
		return ""
	}
}
