package chat

import "errors"

// FinishReason indicates why the LLM stopped generating tokens.
type FinishReason string

func (r FinishReason) String() string {
	return string(r)
}

const (
	// FinishReasonStop indicates the model completed generation naturally or hit a stop sequence.
	FinishReasonStop FinishReason = "stop"

	// FinishReasonLength indicates the response was truncated due to token limits.
	FinishReasonLength FinishReason = "length"

	// FinishReasonToolCalls indicates the model finished by requesting tool/function calls.
	FinishReasonToolCalls FinishReason = "tool_calls"

	// FinishReasonContentFilter indicates the response was blocked by safety filters.
	FinishReasonContentFilter FinishReason = "content_filter"

	// FinishReasonReturnDirect indicates tool results were returned without further model processing.
	FinishReasonReturnDirect FinishReason = "return_direct"

	// FinishReasonOther covers any completion reason not covered by the standard cases.
	FinishReasonOther FinishReason = "other"

	// FinishReasonNull represents an undefined or unset finish reason, as seen mid-stream.
	FinishReasonNull FinishReason = "null"
)

func (r FinishReason) IsStop() bool          { return r == FinishReasonStop }
func (r FinishReason) IsLength() bool        { return r == FinishReasonLength }
func (r FinishReason) IsToolCalls() bool     { return r == FinishReasonToolCalls }
func (r FinishReason) IsContentFilter() bool { return r == FinishReasonContentFilter }
func (r FinishReason) IsReturnDirect() bool  { return r == FinishReasonReturnDirect }
func (r FinishReason) IsOther() bool         { return r == FinishReasonOther }
func (r FinishReason) IsNull() bool          { return r == FinishReasonNull }

// ResultMetadata carries completion status and provider-specific details for
// a single generation result.
type ResultMetadata struct {
	FinishReason FinishReason
	Extra        map[string]any
}

func (m *ResultMetadata) ensureExtra() {
	if m.Extra == nil {
		m.Extra = make(map[string]any)
	}
}

// Get retrieves a provider-specific metadata value by key.
func (m *ResultMetadata) Get(key string) (any, bool) {
	m.ensureExtra()
	v, ok := m.Extra[key]
	return v, ok
}

// Set stores a provider-specific metadata value.
func (m *ResultMetadata) Set(key string, value any) {
	m.ensureExtra()
	m.Extra[key] = value
}

// Result is a single generation result: the model's reply, the metadata
// describing how it finished, and, for tool-enhanced turns, the tool
// execution results that followed it.
type Result struct {
	AssistantMessage *AssistantMessage
	Metadata         *ResultMetadata
	ToolMessage      *ToolMessage
}

// NewResult builds a Result from its required components. AssistantMessage
// and Metadata are mandatory; the tool message, if any, is attached
// separately once tool execution completes.
func NewResult(assistantMessage *AssistantMessage, metadata *ResultMetadata) (*Result, error) {
	if assistantMessage == nil {
		return nil, errors.New("assistant message cannot be nil")
	}
	if metadata == nil {
		return nil, errors.New("result metadata cannot be nil")
	}

	return &Result{
		AssistantMessage: assistantMessage,
		Metadata:         metadata,
	}, nil
}
