package chat

// Model is a chat-completion backend supporting both synchronous and
// streaming generation.
//
// Synchronous mode returns a complete Response once generation finishes;
// streaming mode yields incremental Response chunks as tokens arrive,
// following the same accumulation contract as ResponseAccumulator.
type Model interface {
	CallHandler
	StreamHandler

	// DefaultOptions returns this model's baseline generation parameters.
	// Callers may override any field per request.
	DefaultOptions() *Options

	// Info returns metadata about the backend serving this model.
	Info() ModelInfo
}

// ModelInfo contains metadata information about a chat model.
type ModelInfo struct {
	// Provider identifies the service or organization that provides this
	// chat model. Examples: "OpenAI", "Anthropic".
	Provider string `json:"provider"`
}
