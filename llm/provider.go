// Package llm defines the provider-agnostic contract every vendor-specific
// completion backend implements, plus a resilient client that adds
// retries, timeouts, and cross-provider fallback on top of it. Concrete
// vendor adapters live in llm/openai and llm/anthropic.
package llm

import (
	"context"
	"iter"

	"github.com/ragforge/queryengine/tenant"
)

// Usage reports token accounting for a single completion.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// CompletionRequest is the provider-agnostic shape of a single synthesis
// call: a system prompt (instructions, guardrail-confidence-selected
// template) and a user prompt (the packed context plus the question).
type CompletionRequest struct {
	SystemPrompt    string
	UserPrompt      string
	Model           string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// FinishReason carries a provider's finish reason as a chat.FinishReason
// value (e.g. "stop", "length", "tool_calls"); see stream.NormalizeFinishReason
// for how it maps onto the wire-level categories (stop, length,
// content_filter, function_call).
type FinishReason string

// Completion is a single, fully-materialized generation result.
type Completion struct {
	Text         string
	FinishReason FinishReason
	Usage        Usage
	Model        string
}

// StreamEvent is one increment of a streaming generation.
type StreamEvent struct {
	Delta        string
	FinishReason FinishReason
	Done         bool
	Usage        *Usage
}

// Provider is implemented once per LLM vendor. Dispatch on vendor is always
// through an explicit Provider value looked up by tenant.ProviderName,
// never a string switch threaded through call sites.
type Provider interface {
	// Name identifies which tenant.ProviderName this implementation serves.
	Name() tenant.ProviderName

	// Complete performs one non-streaming generation call.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// CompleteStreaming performs one streaming generation call, yielding
	// incremental StreamEvents. Iteration stops either when a StreamEvent
	// with Done=true has been yielded, or when the sequence is exhausted
	// with an error.
	CompleteStreaming(ctx context.Context, req CompletionRequest) iter.Seq2[*StreamEvent, error]
}
