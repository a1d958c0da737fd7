// Package engine wires the tenant resolver, retrieval fan-out, fusion,
// reranker, guardrail, citation builder, context packer, and LLM client
// into the single request-scoped state machine that turns a Query into a
// SynthesisResult:
//
//	VALIDATING -> GUARDRAIL_CHECK -> { IDK_EMIT | PACKING -> LLM_CALL -> FORMATTING -> EMIT }
//
// Every request produces exactly one audit record, regardless of which
// branch it takes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragforge/queryengine/apperr"
	"github.com/ragforge/queryengine/audit"
	"github.com/ragforge/queryengine/citation"
	"github.com/ragforge/queryengine/contextpack"
	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/fusion"
	"github.com/ragforge/queryengine/guardrail"
	"github.com/ragforge/queryengine/llm"
	"github.com/ragforge/queryengine/model/chat"
	"github.com/ragforge/queryengine/rerank"
	"github.com/ragforge/queryengine/retrieval"
	"github.com/ragforge/queryengine/stream"
	"github.com/ragforge/queryengine/tenant"
)

// QualityPolicy enforces the "enhanced variant" of C9: post-hoc quality
// thresholds that are logged as warnings and never change the response,
// except a failed citation-validity check which is terminal.
type QualityPolicy struct {
	MinConfidence float64
	MinCitations  int
	MaxLatency    time.Duration
	Logger        *slog.Logger
}

func (q *QualityPolicy) logger() *slog.Logger {
	if q.Logger != nil {
		return q.Logger
	}
	return slog.Default()
}

func (q *QualityPolicy) enforce(result *domain.SynthesisResult, elapsed time.Duration) error {
	logger := q.logger()
	if q.MinConfidence > 0 && result.Confidence < q.MinConfidence {
		logger.Warn("quality warning: confidence below threshold", "confidence", result.Confidence, "min", q.MinConfidence)
	}
	if q.MinCitations > 0 && len(result.Citations) < q.MinCitations {
		logger.Warn("quality warning: citation count below threshold", "count", len(result.Citations), "min", q.MinCitations)
	}
	if q.MaxLatency > 0 && elapsed > q.MaxLatency {
		logger.Warn("quality warning: latency above threshold", "elapsed", elapsed, "max", q.MaxLatency)
	}
	if !citation.ValidateCitations(result.Answer, result.Citations) {
		return apperr.CitationValidation("answer cites a citation number not present in the packed context")
	}
	return nil
}

// Engine wires every pipeline component behind the Ask/AskStream facade.
// Every field is request-scoped except the components themselves, which
// are long-lived and safe for concurrent use across requests.
type Engine struct {
	Retrieval *retrieval.Service
	Reranker  *rerank.Reranker
	Guardrail *guardrail.Guardrail
	Citations *citation.Builder
	Packer    *contextpack.Packer
	LLM       *llm.Client
	Audit     audit.Sink
	Config    tenant.Config
	Logger    *slog.Logger

	// Quality is optional; nil disables the enhanced post-hoc checks.
	Quality *QualityPolicy
}

// New builds an Engine from its resolved components. A nil audit sink
// falls back to a slog-backed audit.LogSink so every deployment still gets
// an audit trail.
func New(cfg tenant.Config, retrievalSvc *retrieval.Service, reranker *rerank.Reranker, guard *guardrail.Guardrail, citations *citation.Builder, packer *contextpack.Packer, llmClient *llm.Client, auditSink audit.Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if auditSink == nil {
		auditSink = audit.NewLogSink(logger)
	}
	return &Engine{
		Retrieval: retrievalSvc,
		Reranker:  reranker,
		Guardrail: guard,
		Citations: citations,
		Packer:    packer,
		LLM:       llmClient,
		Audit:     auditSink,
		Config:    cfg,
		Logger:    logger,
	}
}

// requestState carries everything accumulated over the course of a single
// Ask/AskStream call: the pieces the audit record is built from, plus the
// intermediate pipeline artifacts both entry points need.
type requestState struct {
	requestID string
	start     time.Time
	entry     audit.Entry
}

func (e *Engine) newRequestState(query domain.Query) *requestState {
	now := time.Now()
	requestID := uuid.NewString()
	return &requestState{
		requestID: requestID,
		start:     now,
		entry: audit.Entry{
			RequestID:      requestID,
			TenantID:       query.User.TenantID,
			UserID:         query.User.UserID,
			Timestamp:      now,
			StageDurations: map[string]time.Duration{},
		},
	}
}

func (e *Engine) finishAudit(ctx context.Context, st *requestState) {
	e.Audit.Append(ctx, st.entry)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) withOverallDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.Config.OverallTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Ask runs the full state machine for one request and returns a single
// SynthesisResult.
func (e *Engine) Ask(ctx context.Context, query domain.Query) (result *domain.SynthesisResult, err error) {
	st := e.newRequestState(query)
	ctx, cancel := e.withOverallDeadline(ctx)
	defer cancel()
	defer func() {
		if err != nil {
			st.entry.ErrorCode = string(errorCode(err))
			e.logger().Warn("ask failed", "requestId", st.requestID, "error", err)
		}
		e.finishAudit(context.WithoutCancel(ctx), st)
	}()

	reranked, decision, pipelineErr := e.retrieveAndGate(ctx, query, st)
	if pipelineErr != nil {
		return nil, pipelineErr
	}

	if !decision.IsAnswerable {
		return e.idkResult(query, decision, reranked), nil
	}

	return e.synthesize(ctx, query, decision, reranked, st)
}

// retrieveAndGate runs retrieval (C2), fusion (C3), reranking (C4),
// VALIDATING, and GUARDRAIL_CHECK (C5), updating the audit entry as it
// goes. It returns the reranked candidate set (needed by both the IDK and
// synthesis branches) and the guardrail decision.
func (e *Engine) retrieveAndGate(ctx context.Context, query domain.Query, st *requestState) ([]domain.RerankedHit, domain.GuardrailDecision, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, domain.GuardrailDecision{}, apperr.InvalidRequest("query text must not be empty")
	}
	if !query.User.WellFormed() {
		return nil, domain.GuardrailDecision{}, apperr.Unauthorized("user context missing userId or tenantId")
	}

	k := query.K
	if k <= 0 {
		k = e.Config.Retrieval.KBase
	}

	retrievalStart := time.Now()
	retResult, err := e.Retrieval.Search(ctx, query, k)
	st.entry.StageDurations["retrieval"] = time.Since(retrievalStart)
	if err != nil {
		return nil, domain.GuardrailDecision{}, err
	}
	st.entry.VectorDegraded = retResult.VectorDegraded
	st.entry.LexicalDegraded = retResult.LexicalDegraded

	fused := fusion.Fuse(retResult.VectorHits, retResult.LexicalHits, e.Config.Retrieval.VectorWeight, e.Config.Retrieval.LexicalWeight)
	st.entry.RetrievedCount = len(fused)

	rerankStart := time.Now()
	rerankResult, err := e.Reranker.Rerank(ctx, query.Text, fused)
	st.entry.StageDurations["rerank"] = time.Since(rerankStart)
	if err != nil {
		return nil, domain.GuardrailDecision{}, err
	}
	st.entry.RerankerBypassed = rerankResult.Bypassed
	st.entry.RerankedCount = len(rerankResult.Hits)

	if len(rerankResult.Hits) == 0 {
		return nil, domain.GuardrailDecision{}, apperr.InvalidRequest("no retrieval candidates for this query")
	}

	decision := e.Guardrail.Evaluate(ctx, query, rerankResult.Hits)
	st.entry.GuardrailDecision = &decision
	st.entry.ReasonCode = decision.ReasonCode

	return rerankResult.Hits, decision, nil
}

// idkResult builds the IDK_EMIT response: a templated refusal, no
// citations, guardrail confidence carried through, and freshness stats
// computed from the candidate set purely for UI context.
func (e *Engine) idkResult(query domain.Query, decision domain.GuardrailDecision, candidates []domain.RerankedHit) *domain.SynthesisResult {
	candidateCitations := e.Citations.ExtractCitations(candidates)
	return &domain.SynthesisResult{
		Answer:           idkTemplate(decision.ReasonCode),
		Citations:        map[int]domain.Citation{},
		ModelUsed:        "guardrail",
		Confidence:       decision.Confidence,
		ContextTruncated: false,
		FreshnessStats:   freshnessStats(candidateCitations),
		ReasonCode:       decision.ReasonCode,
		QualityScore:     0.1,
	}
}

func idkTemplate(code domain.ReasonCode) string {
	switch code {
	case domain.ReasonNoRelevantDocs:
		return "I don't have any relevant documents to answer this question."
	case domain.ReasonLowConfidence:
		return "I found some potentially related documents, but I'm not confident enough in them to answer this reliably."
	case domain.ReasonUnclearAnswer:
		return "The available documents don't provide a clear enough answer to this question."
	default:
		return "I can't answer this question from the available documents."
	}
}

// synthesize runs PACKING (C6+C7), LLM_CALL (C8), and FORMATTING, producing
// the final SynthesisResult.
func (e *Engine) synthesize(ctx context.Context, query domain.Query, decision domain.GuardrailDecision, reranked []domain.RerankedHit, st *requestState) (*domain.SynthesisResult, error) {
	packStart := time.Now()
	policy := contextpack.FromConfig(e.Config.Context)
	if query.MaxContextTokens > 0 {
		policy.MaxContextTokens = query.MaxContextTokens
	}
	packed := e.Packer.Pack(ctx, query.Text, reranked, policy, false)
	st.entry.StageDurations["packing"] = time.Since(packStart)

	citations := e.Citations.ExtractCitations(packed.SelectedDocs)
	st.entry.CitationCount = len(citations)

	template := llm.SelectPromptTemplate(decision.Confidence, e.Config.Guardrail.MinConfidence)
	systemPrompt := llm.SystemPrompt(template, e.Config.Language)
	userPrompt := buildUserPrompt(query.Text, packed.Text)

	llmStart := time.Now()
	completion, err := e.LLM.Complete(ctx, llm.CompletionRequest{
		SystemPrompt:    systemPrompt,
		UserPrompt:      userPrompt,
		Model:           e.Config.LLM.Model,
		Temperature:     e.Config.LLM.Temperature,
		TopP:            e.Config.LLM.TopP,
		MaxOutputTokens: e.Config.LLM.MaxOutputTokens,
	})
	st.entry.StageDurations["llm_call"] = time.Since(llmStart)
	if err != nil {
		return nil, err
	}

	answer := formatAnswer(completion.Text, citations, query.Format)
	elapsed := time.Since(st.start)

	result := &domain.SynthesisResult{
		Answer:           answer,
		Citations:        citations,
		TokensUsed:       packed.TokensUsed + int(completion.Usage.CompletionTokens),
		SynthesisTime:    elapsed,
		Confidence:       decision.Confidence,
		ModelUsed:        completion.Model,
		ContextTruncated: packed.Truncated,
		FreshnessStats:   freshnessStats(citations),
		ReasonCode:       decision.ReasonCode,
		QualityScore:     heuristicQualityScore(answer, packed.Truncated, avgScore(reranked), freshnessStats(citations)),
	}

	if e.Quality != nil {
		if err := e.Quality.enforce(result, elapsed); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func buildUserPrompt(question, packedContext string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", packedContext, question)
}

var citationMarkerRe = regexp.MustCompile(`\[\^?(\d+)\]`)

// formatAnswer applies §4.6 citation formatting: a markdown answer gets its
// bibliography appended when it has any citations; a plain-text answer has
// every [n]/[^n] marker stripped instead.
func formatAnswer(text string, citations map[int]domain.Citation, format domain.Format) string {
	if format == domain.FormatPlain {
		return strings.TrimSpace(citationMarkerRe.ReplaceAllString(text, ""))
	}
	if len(citations) == 0 {
		return text
	}
	return text + citation.Bibliography(citations)
}

func freshnessStats(citations map[int]domain.Citation) map[domain.FreshnessCategory]int {
	out := map[domain.FreshnessCategory]int{}
	for _, c := range citations {
		if c.Freshness != nil {
			out[c.Freshness.Category]++
		}
	}
	return out
}

func avgScore(hits []domain.RerankedHit) float64 {
	if len(hits) == 0 {
		return 0
	}
	var sum float64
	for _, h := range hits {
		sum += h.RerankScore
	}
	return sum / float64(len(hits))
}

var refusalPattern = regexp.MustCompile(`(?i)i (don't|do not) (have|know)|cannot answer|i'm not (sure|confident)`)

// heuristicQualityScore is a quality-warning-only signal, never used for
// guardrail gating. It starts from a base score and applies independent
// multiplicative penalties for truncation, weak candidate scores, stale
// freshness, and short answers, then clamps to a floor if the text itself
// reads like a refusal.
func heuristicQualityScore(answer string, truncated bool, avgCandidateScore float64, freshness map[domain.FreshnessCategory]int) float64 {
	score := 0.8

	if truncated {
		score *= 0.8
	}

	candidateFactor := avgCandidateScore + 0.3
	if candidateFactor > 1 {
		candidateFactor = 1
	}
	score *= candidateFactor

	score *= freshnessFactor(freshness)

	if len(answer) < 50 {
		score *= 0.6
	}

	if refusalPattern.MatchString(answer) {
		return 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// freshnessFactor maps the fresh/recent/stale mix of cited documents onto a
// [0.6, 1] multiplier: an answer built entirely on stale sources is
// penalized, one built entirely on fresh sources gets no penalty at all.
func freshnessFactor(stats map[domain.FreshnessCategory]int) float64 {
	total := 0
	for _, n := range stats {
		total += n
	}
	if total == 0 {
		return 1
	}
	fresh := stats[domain.FreshnessFresh]
	recent := stats[domain.FreshnessRecent]
	weighted := float64(fresh) + 0.7*float64(recent)
	factor := 0.6 + 0.4*(weighted/float64(total))
	if factor > 1 {
		factor = 1
	}
	return factor
}

// errorCode extracts the apperr.Code for the audit record, falling back to
// a generic classification for errors that never passed through apperr
// (e.g. a raw context.Canceled that reached here without being wrapped).
func errorCode(err error) apperr.Code {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return apperr.CodeCancellation
	}
	return "UNKNOWN_ERROR"
}

// AskStream runs the same state machine as Ask but yields a stream of
// envelopes: chunk events as the LLM generates, followed by the fixed
// EMIT-phase order (citations, metadata, formatted_answer,
// response_completed, done) for the synthesis path, or the shorter
// (chunk, metadata, done) sequence for IDK_EMIT.
func (e *Engine) AskStream(ctx context.Context, query domain.Query) iter.Seq[*stream.Envelope] {
	return func(yield func(*stream.Envelope) bool) {
		st := e.newRequestState(query)
		ctx, cancel := e.withOverallDeadline(ctx)
		defer cancel()

		var finalErr error
		defer func() {
			if finalErr != nil {
				st.entry.ErrorCode = string(errorCode(finalErr))
			}
			e.finishAudit(context.WithoutCancel(ctx), st)
		}()

		seq := stream.NewSequencer(st.requestID)

		reranked, decision, err := e.retrieveAndGate(ctx, query, st)
		if err != nil {
			finalErr = err
			yield(seq.Error(err))
			return
		}

		if !decision.IsAnswerable {
			e.streamIDK(query, decision, reranked, st, seq, yield)
			return
		}

		e.streamSynthesis(ctx, query, decision, reranked, st, seq, yield)
	}
}

func (e *Engine) streamIDK(query domain.Query, decision domain.GuardrailDecision, reranked []domain.RerankedHit, st *requestState, seq *stream.Sequencer, yield func(*stream.Envelope) bool) {
	result := e.idkResult(query, decision, reranked)

	chunkEnv, _ := seq.Chunk(result.Answer)
	if !yield(chunkEnv) {
		return
	}
	metaEnv := stream.NewEnvelope(st.requestID, stream.EventMetadata, stream.MetadataData{
		Model:        result.ModelUsed,
		FinishReason: "stop",
	})
	if !yield(metaEnv) {
		return
	}
	yield(stream.NewEnvelope(st.requestID, stream.EventDone, nil))
}

func (e *Engine) streamSynthesis(ctx context.Context, query domain.Query, decision domain.GuardrailDecision, reranked []domain.RerankedHit, st *requestState, seq *stream.Sequencer, yield func(*stream.Envelope) bool) {
	policy := contextpack.FromConfig(e.Config.Context)
	if query.MaxContextTokens > 0 {
		policy.MaxContextTokens = query.MaxContextTokens
	}
	packed := e.Packer.Pack(ctx, query.Text, reranked, policy, false)

	citations := e.Citations.ExtractCitations(packed.SelectedDocs)
	st.entry.CitationCount = len(citations)

	template := llm.SelectPromptTemplate(decision.Confidence, e.Config.Guardrail.MinConfidence)
	systemPrompt := llm.SystemPrompt(template, e.Config.Language)
	userPrompt := buildUserPrompt(query.Text, packed.Text)

	req := llm.CompletionRequest{
		SystemPrompt:    systemPrompt,
		UserPrompt:      userPrompt,
		Model:           e.Config.LLM.Model,
		Temperature:     e.Config.LLM.Temperature,
		TopP:            e.Config.LLM.TopP,
		MaxOutputTokens: e.Config.LLM.MaxOutputTokens,
	}

	var fullText string
	var finishReason chat.FinishReason
	var usage llm.Usage
	modelUsed := e.Config.LLM.Model

	for event, err := range e.LLM.CompleteStreaming(ctx, req) {
		if err != nil {
			yield(seq.Error(err))
			return
		}
		if event.Delta != "" {
			fullText += event.Delta
			chunkEnv, _ := seq.Chunk(event.Delta)
			if !yield(chunkEnv) {
				return
			}
		}
		if event.Done {
			finishReason = chat.FinishReason(event.FinishReason)
			if event.Usage != nil {
				usage = *event.Usage
			}
			break
		}
	}

	answer := formatAnswer(fullText, citations, query.Format)

	citationsEnv, _ := seq.Emit(stream.EventCitations, citations)
	if !yield(citationsEnv) {
		return
	}

	metaEnv, _ := seq.Emit(stream.EventMetadata, stream.MetadataData{
		Model:        modelUsed,
		FinishReason: stream.NormalizeFinishReason(finishReason),
		TotalTokens:  usage.TotalTokens,
	})
	if !yield(metaEnv) {
		return
	}

	formattedEnv, _ := seq.Emit(stream.EventFormattedAnswer, answer)
	if !yield(formattedEnv) {
		return
	}

	completedEnv, _ := seq.Emit(stream.EventResponseCompleted, domain.SynthesisResult{
		Answer:           answer,
		Citations:        citations,
		TokensUsed:       packed.TokensUsed + int(usage.CompletionTokens),
		Confidence:       decision.Confidence,
		ModelUsed:        modelUsed,
		ContextTruncated: packed.Truncated,
		FreshnessStats:   freshnessStats(citations),
		ReasonCode:       decision.ReasonCode,
	})
	if !yield(completedEnv) {
		return
	}

	doneEnv, _ := seq.Emit(stream.EventDone, nil)
	yield(doneEnv)
}
