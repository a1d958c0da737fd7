package chat

import "errors"

// Request is a single chat generation request: the conversation history,
// generation options, and free-form provider parameters.
type Request struct {
	Messages []Message
	Options  *Options
	Params   map[string]any
}

// NewRequest builds a Request from a message list, filtering out nil
// entries. At least one valid message is required.
func NewRequest(messages []Message) (*Request, error) {
	filtered := filterOutNilMessages(messages)
	if len(filtered) == 0 {
		return nil, errors.New("must contain at least one valid message")
	}
	return &Request{
		Messages: filtered,
		Params:   make(map[string]any),
	}, nil
}

func (r *Request) ensureParams() {
	if r.Params == nil {
		r.Params = make(map[string]any)
	}
}

// Get retrieves a provider-specific request parameter by key.
func (r *Request) Get(key string) (any, bool) {
	r.ensureParams()
	v, ok := r.Params[key]
	return v, ok
}

// Set stores a provider-specific request parameter.
func (r *Request) Set(key string, value any) {
	r.ensureParams()
	r.Params[key] = value
}

// AppendToLastUserMessage appends text to the most recent user message,
// separated by a blank line. A no-op if there is no user message.
func (r *Request) AppendToLastUserMessage(text string) {
	appendTextToLastMessageOfType(r.Messages, MessageTypeUser, text)
}

// ReplaceOfLastUserMessage replaces the text of the most recent user
// message. A no-op if there is no user message.
func (r *Request) ReplaceOfLastUserMessage(text string) {
	replaceTextOfLastMessageOfType(r.Messages, MessageTypeUser, text)
}

// UserMessage returns the most recent user message, or a zero-value
// UserMessage if there is none, so callers can read Text without a nil
// check.
func (r *Request) UserMessage() *UserMessage {
	_, msg := findLastMessageIndexOfType(r.Messages, MessageTypeUser)
	if msg == nil {
		return &UserMessage{}
	}
	return msg.(*UserMessage)
}

// SystemMessage returns the most recent system message, or a zero-value
// SystemMessage if there is none, so callers can read Text without a nil
// check.
func (r *Request) SystemMessage() *SystemMessage {
	_, msg := findLastMessageIndexOfType(r.Messages, MessageTypeSystem)
	if msg == nil {
		return &SystemMessage{}
	}
	return msg.(*SystemMessage)
}
