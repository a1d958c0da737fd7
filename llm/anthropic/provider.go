// Package anthropic adapts the Anthropic Messages API to the llm.Provider
// contract. Unlike llm/openai there is no existing chat.Model wrapper to
// build on here, so this talks to the vendor SDK directly.
package anthropic

import (
	"context"
	"errors"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ragforge/queryengine/llm"
	"github.com/ragforge/queryengine/tenant"
)

var _ llm.Provider = (*Provider)(nil)

// defaultMaxTokens bounds generations when a tenant's LLMConfig doesn't set
// MaxOutputTokens; Anthropic's API requires a max_tokens value on every call.
const defaultMaxTokens = 1024

// Provider is the Anthropic-backed llm.Provider.
type Provider struct {
	client       anthropic.Client
	defaultModel string
}

// New builds a Provider from an API key and default model. Extra
// option.RequestOption values are forwarded to the underlying SDK client.
func New(apiKey string, defaultModel string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Provider{client: anthropic.NewClient(reqOpts...), defaultModel: defaultModel}, nil
}

func (p *Provider) Name() tenant.ProviderName { return tenant.ProviderAnthropic }

func (p *Provider) model(req llm.CompletionRequest) anthropic.Model {
	if req.Model != "" {
		return anthropic.Model(req.Model)
	}
	return anthropic.Model(p.defaultModel)
}

func (p *Provider) maxTokens(req llm.CompletionRequest) int64 {
	if req.MaxOutputTokens > 0 {
		return int64(req.MaxOutputTokens)
	}
	return defaultMaxTokens
}

// buildParams turns a provider-agnostic CompletionRequest into a single
// user-turn Messages API call, with the guardrail-selected system prompt
// passed through Anthropic's separate System field rather than as a message.
func (p *Provider) buildParams(req llm.CompletionRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     p.model(req),
		MaxTokens: p.maxTokens(req),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature != 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.TopP != 0 {
		params.TopP = anthropic.Float(req.TopP)
	}
	return params
}

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	msg, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, err
	}
	return toCompletion(msg), nil
}

func toCompletion(msg *anthropic.Message) *llm.Completion {
	var text string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return &llm.Completion{
		Text:         text,
		FinishReason: normalizeStopReason(msg.StopReason),
		Model:        string(msg.Model),
		Usage: llm.Usage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
			TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
	}
}

// normalizeStopReason maps Anthropic's stop reasons onto the OpenAI-shaped
// chat.FinishReason values ("stop", "length", "tool_calls") that the OpenAI
// provider also reports, so stream.NormalizeFinishReason maps both providers
// onto the wire categories the same way.
func normalizeStopReason(reason anthropic.StopReason) llm.FinishReason {
	switch reason {
	case anthropic.StopReasonMaxTokens:
		return "length"
	case anthropic.StopReasonToolUse:
		return "tool_calls"
	default:
		return "stop"
	}
}

// CompleteStreaming streams content-block deltas as they arrive. Usage and
// the final stop reason only become available once the stream completes, so
// they are attached to the terminal Done event rather than any delta.
func (p *Provider) CompleteStreaming(ctx context.Context, req llm.CompletionRequest) iter.Seq2[*llm.StreamEvent, error] {
	return func(yield func(*llm.StreamEvent, error) bool) {
		stream := p.client.Messages.NewStreaming(ctx, p.buildParams(req))

		var usage llm.Usage
		var stopReason anthropic.StopReason

		for stream.Next() {
			switch variant := stream.Current().AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if variant.Delta.Text == "" {
					continue
				}
				if !yield(&llm.StreamEvent{Delta: variant.Delta.Text}, nil) {
					return
				}
			case anthropic.MessageDeltaEvent:
				if variant.Delta.StopReason != "" {
					stopReason = variant.Delta.StopReason
				}
				usage.CompletionTokens = variant.Usage.OutputTokens
			case anthropic.MessageStartEvent:
				usage.PromptTokens = variant.Message.Usage.InputTokens
			}
		}

		if err := stream.Err(); err != nil {
			yield(nil, err)
			return
		}

		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		yield(&llm.StreamEvent{
			Done:         true,
			FinishReason: normalizeStopReason(stopReason),
			Usage:        &usage,
		}, nil)
	}
}
