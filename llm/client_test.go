package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/queryengine/apperr"
	"github.com/ragforge/queryengine/tenant"
)

type fakeProvider struct {
	name           tenant.ProviderName
	completeCalls  int
	failCount      int
	failErr        error
	streamEvents   []*StreamEvent
	streamFailFast error
}

func (f *fakeProvider) Name() tenant.ProviderName { return f.name }

func (f *fakeProvider) Complete(_ context.Context, _ CompletionRequest) (*Completion, error) {
	f.completeCalls++
	if f.completeCalls <= f.failCount {
		return nil, f.failErr
	}
	return &Completion{Text: "answer from " + string(f.name), Model: "test-model"}, nil
}

func (f *fakeProvider) CompleteStreaming(_ context.Context, _ CompletionRequest) iter.Seq2[*StreamEvent, error] {
	return func(yield func(*StreamEvent, error) bool) {
		if f.streamFailFast != nil {
			yield(nil, f.streamFailFast)
			return
		}
		for _, ev := range f.streamEvents {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func baseConfig() tenant.LLMConfig {
	return tenant.LLMConfig{
		Provider:          tenant.ProviderOpenAI,
		MaxRetries:        2,
		FallbackProviders: []tenant.ProviderName{tenant.ProviderAnthropic},
	}
}

func TestComplete_SucceedsOnPrimary(t *testing.T) {
	primary := &fakeProvider{name: tenant.ProviderOpenAI}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{tenant.ProviderOpenAI: primary}, nil)

	completion, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Contains(t, completion.Text, "openai")
}

func TestComplete_RetriesTransientFailureThenSucceeds(t *testing.T) {
	primary := &fakeProvider{name: tenant.ProviderOpenAI, failCount: 1, failErr: errors.New("503 backend unavailable")}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{tenant.ProviderOpenAI: primary}, nil)

	completion, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.NotNil(t, completion)
	assert.Equal(t, 2, primary.completeCalls)
}

func TestComplete_FallsBackToSecondProviderAfterExhaustion(t *testing.T) {
	primary := &fakeProvider{name: tenant.ProviderOpenAI, failCount: 99, failErr: errors.New("persistent outage")}
	fallback := &fakeProvider{name: tenant.ProviderAnthropic}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{
		tenant.ProviderOpenAI:    primary,
		tenant.ProviderAnthropic: fallback,
	}, nil)

	completion, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Contains(t, completion.Text, "anthropic")
}

func TestComplete_NonRetryableErrorSkipsRetries(t *testing.T) {
	primary := &fakeProvider{name: tenant.ProviderOpenAI, failCount: 99, failErr: apperr.InvalidRequest("bad request")}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{tenant.ProviderOpenAI: primary}, nil)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, primary.completeCalls)
}

func TestComplete_AllProvidersExhausted(t *testing.T) {
	primary := &fakeProvider{name: tenant.ProviderOpenAI, failCount: 99, failErr: errors.New("down")}
	fallback := &fakeProvider{name: tenant.ProviderAnthropic, failCount: 99, failErr: errors.New("also down")}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{
		tenant.ProviderOpenAI:    primary,
		tenant.ProviderAnthropic: fallback,
	}, nil)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	var llmErr *apperr.LLMProviderError
	require.ErrorAs(t, err, &llmErr)
}

func TestCompleteStreaming_YieldsDeltasOnSuccess(t *testing.T) {
	primary := &fakeProvider{
		name: tenant.ProviderOpenAI,
		streamEvents: []*StreamEvent{
			{Delta: "hello "},
			{Delta: "world", Done: true},
		},
	}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{tenant.ProviderOpenAI: primary}, nil)

	var deltas []string
	for ev, err := range client.CompleteStreaming(context.Background(), CompletionRequest{}) {
		require.NoError(t, err)
		deltas = append(deltas, ev.Delta)
	}
	assert.Equal(t, []string{"hello ", "world"}, deltas)
}

func TestCompleteStreaming_DegradesToNonStreamingOnEarlyFailure(t *testing.T) {
	primary := &fakeProvider{
		name:           tenant.ProviderOpenAI,
		streamFailFast: errors.New("stream setup failed"),
	}
	client := New(baseConfig(), map[tenant.ProviderName]Provider{tenant.ProviderOpenAI: primary}, nil)

	var events []*StreamEvent
	for ev, err := range client.CompleteStreaming(context.Background(), CompletionRequest{}) {
		require.NoError(t, err)
		events = append(events, ev)
	}
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Contains(t, events[0].Delta, "openai")
}

func TestSelectPromptTemplate(t *testing.T) {
	assert.Equal(t, TemplateHighConfidence, SelectPromptTemplate(0.9, 0.35))
	assert.Equal(t, TemplateCautious, SelectPromptTemplate(0.4, 0.35))
}
