// Package openai adapts the ChatModel client in extensions/models/openai to
// the llm.Provider contract, so the synthesis engine drives it through the
// same vendor-agnostic interface as every other provider.
package openai

import (
	"context"
	"iter"

	"github.com/openai/openai-go/v3/option"

	"github.com/ragforge/queryengine/extensions/models/openai"
	"github.com/ragforge/queryengine/llm"
	"github.com/ragforge/queryengine/model"
	"github.com/ragforge/queryengine/model/chat"
	"github.com/ragforge/queryengine/tenant"
)

var _ llm.Provider = (*Provider)(nil)

// Provider is the OpenAI-backed llm.Provider, wrapping a chat.Model so the
// request/response translation, tool-call loop, and streaming accumulation
// already implemented there is reused rather than re-derived.
type Provider struct {
	model chat.Model
}

// New builds a Provider from an API key and default options. Extra
// option.RequestOption values (base URL overrides, custom HTTP clients,
// etc.) are forwarded to the underlying SDK client.
func New(apiKey model.ApiKey, defaultModel string, opts ...option.RequestOption) (*Provider, error) {
	defaultOptions, err := chat.NewOptions(defaultModel)
	if err != nil {
		return nil, err
	}

	chatModel, err := openai.NewChatModel(apiKey, defaultOptions, opts...)
	if err != nil {
		return nil, err
	}

	return &Provider{model: chatModel}, nil
}

func (p *Provider) Name() tenant.ProviderName { return tenant.ProviderOpenAI }

// buildRequest turns a provider-agnostic CompletionRequest into the
// two-message (system, user) chat.Request this adapter always sends: the
// guardrail-selected prompt template as the system message, the packed
// context plus question as the user message.
func buildRequest(req llm.CompletionRequest) (*chat.Request, *chat.Options, error) {
	messages := []chat.Message{
		chat.NewSystemMessage(req.SystemPrompt),
		chat.NewUserMessage(req.UserPrompt),
	}

	chatReq, err := chat.NewRequest(messages)
	if err != nil {
		return nil, nil, err
	}

	opts, err := chat.NewOptions(req.Model)
	if err != nil {
		return nil, nil, err
	}
	if req.Temperature != 0 {
		t := req.Temperature
		opts.Temperature = &t
	}
	if req.TopP != 0 {
		tp := req.TopP
		opts.TopP = &tp
	}
	if req.MaxOutputTokens > 0 {
		mt := int64(req.MaxOutputTokens)
		opts.MaxTokens = &mt
	}
	chatReq.Options = opts

	return chatReq, opts, nil
}

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	chatReq, _, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.model.Call(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	return toCompletion(resp), nil
}

func (p *Provider) CompleteStreaming(ctx context.Context, req llm.CompletionRequest) iter.Seq2[*llm.StreamEvent, error] {
	return func(yield func(*llm.StreamEvent, error) bool) {
		chatReq, _, err := buildRequest(req)
		if err != nil {
			yield(nil, err)
			return
		}

		for resp, err := range p.model.Stream(ctx, chatReq) {
			if err != nil {
				yield(nil, err)
				return
			}

			result := resp.Result()
			if result == nil || result.AssistantMessage == nil {
				continue
			}

			delta := result.AssistantMessage.Text

			finishReason := llm.FinishReason("")
			done := false
			if result.Metadata != nil && !result.Metadata.FinishReason.IsNull() {
				finishReason = llm.FinishReason(result.Metadata.FinishReason.String())
				done = true
			}

			event := &llm.StreamEvent{Delta: delta, FinishReason: finishReason, Done: done}
			if done && resp.Metadata != nil && resp.Metadata.Usage != nil {
				event.Usage = &llm.Usage{
					PromptTokens:     resp.Metadata.Usage.PromptTokens,
					CompletionTokens: resp.Metadata.Usage.CompletionTokens,
					TotalTokens:      resp.Metadata.Usage.TotalTokens(),
				}
			}

			if !yield(event, nil) {
				return
			}
		}
	}
}

func toCompletion(resp *chat.Response) *llm.Completion {
	result := resp.Result()

	completion := &llm.Completion{}
	if result != nil && result.AssistantMessage != nil {
		completion.Text = result.AssistantMessage.Text
	}
	if result != nil && result.Metadata != nil {
		completion.FinishReason = llm.FinishReason(result.Metadata.FinishReason.String())
	}
	if resp.Metadata != nil {
		completion.Model = resp.Metadata.Model
		if resp.Metadata.Usage != nil {
			completion.Usage = llm.Usage{
				PromptTokens:     resp.Metadata.Usage.PromptTokens,
				CompletionTokens: resp.Metadata.Usage.CompletionTokens,
				TotalTokens:      resp.Metadata.Usage.TotalTokens(),
			}
		}
	}
	return completion
}
