package llm

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"math"
	"time"

	"github.com/ragforge/queryengine/apperr"
	"github.com/ragforge/queryengine/tenant"
)

// PromptTemplate names a system-prompt variant selected by the guardrail's
// answerability confidence: a high-confidence result lets the model answer
// directly, while anything closer to the answerability threshold gets a
// stricter instruction to hedge and to refuse rather than guess.
type PromptTemplate string

const (
	TemplateHighConfidence PromptTemplate = "high_confidence"
	TemplateCautious       PromptTemplate = "cautious"

	// highConfidenceMargin is how far above the guardrail's minimum
	// confidence threshold a decision must sit to earn the direct-answer
	// template instead of the hedging one.
	highConfidenceMargin = 0.25
)

// SelectPromptTemplate picks a system-prompt variant from the guardrail's
// confidence and the tenant's configured minimum.
func SelectPromptTemplate(confidence, minConfidence float64) PromptTemplate {
	if confidence >= minConfidence+highConfidenceMargin {
		return TemplateHighConfidence
	}
	return TemplateCautious
}

// SystemPrompt renders the instruction text for a template in the given
// answer language.
func SystemPrompt(template PromptTemplate, language string) string {
	base := "You are a retrieval-augmented assistant. Answer only from the numbered " +
		"documents given in context, and cite every claim with its document number " +
		"in square brackets, e.g. [1]. Respond in " + language + "."

	switch template {
	case TemplateHighConfidence:
		return base
	default:
		return base + " The supporting evidence is thin: hedge any claim you are not " +
			"confident the context fully supports, and say so explicitly rather than guessing."
	}
}

// Client wraps a primary provider and an ordered fallback chain with
// retries, per-call timeout, and exponential backoff.
type Client struct {
	providers map[tenant.ProviderName]Provider
	config    tenant.LLMConfig
	logger    *slog.Logger
}

// New builds a resilient Client. providers must contain an entry for
// config.Provider and for every name in config.FallbackProviders; a chain
// member missing from the map is simply skipped at call time.
func New(config tenant.LLMConfig, providers map[tenant.ProviderName]Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{providers: providers, config: config, logger: logger}
}

// chain returns the primary provider followed by the fallback chain, in
// order, skipping any name with no registered implementation.
func (c *Client) chain() []Provider {
	names := append([]tenant.ProviderName{c.config.Provider}, c.config.FallbackProviders...)
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		if p, ok := c.providers[name]; ok && p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Complete tries the primary provider, retrying transient failures with
// exponential backoff, then falls through the configured fallback chain if
// the primary is exhausted. It fails only once every provider in the chain
// has exhausted its retries.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	providers := c.chain()
	if len(providers) == 0 {
		return nil, apperr.LLMProvider(string(c.config.Provider), errors.New("no provider configured"))
	}

	var lastErr error
	var lastName tenant.ProviderName
	for _, p := range providers {
		completion, err := c.completeWithRetry(ctx, p, req)
		if err == nil {
			return completion, nil
		}
		lastErr = err
		lastName = p.Name()
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, apperr.Cancellation(ctx.Err())
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Timeout("llm_call", ctx.Err())
		}
		c.logger.Warn("llm provider exhausted, trying next in fallback chain", "provider", p.Name(), "error", err)
	}

	return nil, apperr.LLMProvider(string(lastName), lastErr)
}

func (c *Client) completeWithRetry(ctx context.Context, p Provider, req CompletionRequest) (*Completion, error) {
	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	maxRetries := c.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		completion, err := p.Complete(callCtx, req)
		cancel()
		if err == nil {
			return completion, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// sleepBackoff waits 2^attempt seconds, or returns early with the context's
// error if it is cancelled first.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetryable reports whether err is retried. Only context cancellation and
// apperr codes InvalidRequest, Unauthorized and CitationValidation count as
// terminal; every other error, including a vendor rejection that carries no
// apperr code, is retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperr.CodeInvalidRequest, apperr.CodeUnauthorized, apperr.CodeCitationValidation:
			return false
		}
	}
	return true
}

// CompleteStreaming streams from the primary provider. If the stream fails
// before yielding any delta, it degrades to a single non-streaming call on
// the same provider (and, if that also fails, the remaining fallback
// chain) and replays the full answer as one synthetic StreamEvent. A
// failure after some deltas have already been yielded is terminal: partial
// output cannot be un-sent, so the sequence ends with the error.
func (c *Client) CompleteStreaming(ctx context.Context, req CompletionRequest) iter.Seq2[*StreamEvent, error] {
	return func(yield func(*StreamEvent, error) bool) {
		providers := c.chain()
		if len(providers) == 0 {
			yield(nil, apperr.LLMProvider(string(c.config.Provider), errors.New("no provider configured")))
			return
		}

		primary := providers[0]
		yielded := false
		streamErr := error(nil)

		for event, err := range primary.CompleteStreaming(ctx, req) {
			if err != nil {
				streamErr = err
				break
			}
			yielded = true
			if !yield(event, nil) {
				return
			}
			if event.Done {
				return
			}
		}

		if yielded {
			// Output already reached the caller; a failure now cannot be
			// retried from a vendor with guaranteed-unique no-op retries.
			if streamErr != nil {
				yield(nil, apperr.LLMProvider(string(primary.Name()), streamErr))
			}
			return
		}

		c.logger.Warn("streaming failed before first chunk, degrading to one non-streaming call", "provider", primary.Name(), "error", streamErr)

		completion, err := c.Complete(ctx, req)
		if err != nil {
			yield(nil, err)
			return
		}

		yield(&StreamEvent{
			Delta:        completion.Text,
			FinishReason: completion.FinishReason,
			Done:         true,
			Usage:        &completion.Usage,
		}, nil)
	}
}
