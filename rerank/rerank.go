// Package rerank cross-encoder rescoring of fused retrieval candidates,
// with graceful fallback to fusion order when the scoring backend fails.
package rerank

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ragforge/queryengine/apperr"
	"github.com/ragforge/queryengine/domain"
)

// Scorer scores a single (query, candidate content) pair. Implementations
// wrap whatever model or service does the actual cross-encoding; see
// rerank/llm for an LLM-backed implementation.
type Scorer interface {
	Score(ctx context.Context, query, content string) (float64, error)
}

const defaultConcurrency = 4

// Reranker reorders fused hits by cross-encoder relevance, bounded to the
// top TopIn candidates, producing the top TopOut.
type Reranker struct {
	Scorer          Scorer
	Enabled         bool
	TopIn           int
	TopOut          int
	FallbackOnError bool
	Timeout         time.Duration
	Logger          *slog.Logger
}

// Result carries the reranked hits plus whether the reranker bypassed
// scoring (disabled, or degraded after a failure with fallback enabled).
type Result struct {
	Hits      []domain.RerankedHit
	Bypassed  bool
}

// Rerank scores fused hits and returns the reordered top-N. When disabled,
// it is a pure passthrough of the first TopOut fused hits by fusionScore.
// On scorer failure: if FallbackOnError, returns the bypass result with
// rerankScore := fusionScore; otherwise returns RerankerError.
func (r *Reranker) Rerank(ctx context.Context, query string, fused []domain.FusedHit) (Result, error) {
	topOut := r.TopOut
	if topOut <= 0 || topOut > len(fused) {
		topOut = len(fused)
	}

	if !r.Enabled || r.Scorer == nil {
		return Result{Hits: passthrough(fused, topOut), Bypassed: !r.Enabled}, nil
	}

	topIn := r.TopIn
	if topIn <= 0 || topIn > len(fused) {
		topIn = len(fused)
	}
	candidates := fused[:topIn]

	scored, err := r.scoreAll(ctx, query, candidates)
	if err != nil {
		if r.FallbackOnError {
			r.logger().Warn("reranker failed, falling back to fusion order", "error", err)
			return Result{Hits: passthrough(fused, topOut), Bypassed: true}, nil
		}
		return Result{}, apperr.Reranker(err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return rerankLess(scored[i], scored[j])
	})

	if len(scored) > topOut {
		scored = scored[:topOut]
	}
	for i := range scored {
		scored[i].FinalRank = i + 1
	}

	return Result{Hits: scored}, nil
}

func (r *Reranker) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// scoreAll scores candidates concurrently, bounded by defaultConcurrency,
// degrading a single failed score to its original fusion score rather than
// failing the whole batch. The whole batch fails only when the context
// itself is cancelled/timed out or when every score call fails.
func (r *Reranker) scoreAll(ctx context.Context, query string, candidates []domain.FusedHit) ([]domain.RerankedHit, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type scoredResult struct {
		idx   int
		score float64
		err   error
	}

	results := make(chan scoredResult, len(candidates))
	sem := make(chan struct{}, defaultConcurrency)
	done := make(chan struct{})
	var wg, failed int
	var lastErr error

	out := make([]domain.RerankedHit, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RerankedHit{FusedHit: c, RerankScore: c.FusionScore}
	}

	wg = len(candidates)
	for i, c := range candidates {
		go func(idx int, content string) {
			select {
			case sem <- struct{}{}:
			case <-callCtx.Done():
				results <- scoredResult{idx: idx, score: out[idx].RerankScore}
				return
			}
			defer func() { <-sem }()

			score, err := r.Scorer.Score(callCtx, query, content)
			if err != nil {
				score = out[idx].RerankScore
			}
			results <- scoredResult{idx: idx, score: score, err: err}
		}(i, c.Content)
	}

	go func() {
		for range candidates {
			res := <-results
			if res.err != nil {
				failed++
				lastErr = res.err
			}
			out[res.idx].RerankScore = res.score
			wg--
			if wg == 0 {
				close(done)
				return
			}
		}
	}()

	select {
	case <-done:
		if failed == len(candidates) {
			return nil, lastErr
		}
		return out, nil
	case <-callCtx.Done():
		return nil, callCtx.Err()
	}
}

func passthrough(fused []domain.FusedHit, topOut int) []domain.RerankedHit {
	if topOut > len(fused) {
		topOut = len(fused)
	}
	out := make([]domain.RerankedHit, topOut)
	for i := 0; i < topOut; i++ {
		out[i] = domain.RerankedHit{
			FusedHit:    fused[i],
			RerankScore: fused[i].FusionScore,
			FinalRank:   i + 1,
		}
	}
	return out
}

func rerankLess(a, b domain.RerankedHit) bool {
	if a.RerankScore != b.RerankScore {
		return a.RerankScore > b.RerankScore
	}
	if a.FusionScore != b.FusionScore {
		return a.FusionScore > b.FusionScore
	}
	return a.DocID < b.DocID
}
