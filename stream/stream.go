// Package stream normalizes provider-specific streaming output into a
// single wire envelope and enforces the fixed event ordering every
// streamed answer must follow, regardless of which LLM provider produced
// it.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tangerg/lynx/sse"

	"github.com/ragforge/queryengine/model/chat"
)

// EventType names one of the envelope kinds emitted over the course of a
// single streamed answer.
type EventType string

const (
	EventChunk             EventType = "chunk"
	EventCitations         EventType = "citations"
	EventMetadata          EventType = "metadata"
	EventFormattedAnswer   EventType = "formatted_answer"
	EventResponseCompleted EventType = "response_completed"
	EventDone              EventType = "done"
	EventError             EventType = "error"
)

// Envelope is the normalized shape every streamed event is wrapped in,
// regardless of the upstream LLM provider's own wire format.
type Envelope struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
	Data      any       `json:"data,omitempty"`
}

// ChunkData is the payload of an EventChunk envelope: one incremental
// slice of generated answer text.
type ChunkData struct {
	Text string `json:"text"`
}

// MetadataData is the payload of an EventMetadata envelope.
type MetadataData struct {
	Model        string `json:"model"`
	FinishReason string `json:"finishReason"`
	TotalTokens  int64  `json:"totalTokens"`
}

// ErrorData is the payload of an EventError envelope.
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NormalizeFinishReason maps a provider's chat.FinishReason onto the four
// finish-reason categories exposed on the wire: stop, length,
// content_filter, function_call. ReturnDirect (a tool result returned
// without further model processing) is treated as a normal stop; Other and
// Null (no reason reported, e.g. mid-stream) also default to stop since the
// caller has no better signal.
func NormalizeFinishReason(reason chat.FinishReason) string {
	switch {
	case reason.IsLength():
		return "length"
	case reason.IsContentFilter():
		return "content_filter"
	case reason.IsToolCalls():
		return "function_call"
	default:
		return "stop"
	}
}

// order is the fixed sequence every Sequencer enforces after the chunk
// phase: citations, then metadata, then the fully formatted answer, then
// response_completed, then done.
var order = []EventType{
	EventCitations,
	EventMetadata,
	EventFormattedAnswer,
	EventResponseCompleted,
	EventDone,
}

// Sequencer enforces invariant 8: a streamed answer emits zero or more
// chunk events, then exactly the EMIT-phase events in a fixed order. Any
// call that violates the order is a programming error in the orchestrator,
// not a runtime condition callers should branch on, so it returns an error
// rather than silently reordering.
type Sequencer struct {
	requestID string
	chunking  bool
	next      int
	done      bool
}

// NewSequencer starts a new ordering session for one request.
func NewSequencer(requestID string) *Sequencer {
	return &Sequencer{requestID: requestID}
}

// Chunk builds a chunk envelope. Any number of chunk events may be emitted
// before the EMIT phase begins; none may be emitted after it.
func (s *Sequencer) Chunk(text string) (*Envelope, error) {
	if s.next != 0 {
		return nil, errors.New("stream: chunk emitted after EMIT phase began")
	}
	s.chunking = true
	return s.envelope(EventChunk, ChunkData{Text: text}), nil
}

// Emit advances to the next envelope in the fixed EMIT order. Calling it
// out of order, more times than the order has stages, or after Done
// returns an error.
func (s *Sequencer) Emit(eventType EventType, data any) (*Envelope, error) {
	if s.done {
		return nil, errors.New("stream: emit called after done")
	}
	if s.next >= len(order) {
		return nil, fmt.Errorf("stream: no more EMIT stages after %s", order[len(order)-1])
	}
	expected := order[s.next]
	if eventType != expected {
		return nil, fmt.Errorf("stream: out-of-order emit: expected %s, got %s", expected, eventType)
	}
	s.next++
	if eventType == EventDone {
		s.done = true
	}
	return s.envelope(eventType, data), nil
}

// Error builds a terminal error envelope. It may be emitted at any point
// and bypasses ordering: a mid-stream failure pre-empts whatever phase the
// sequencer was in.
func (s *Sequencer) Error(err error) *Envelope {
	s.done = true
	return s.envelope(EventError, ErrorData{Message: err.Error()})
}

// NewEnvelope builds a standalone envelope outside any Sequencer's
// ordering guarantee. The IDK_EMIT state produces a different, shorter
// sequence (chunk, metadata, done) than the main EMIT phase, so it
// constructs its envelopes directly rather than through a Sequencer meant
// to enforce the longer citations/metadata/formatted_answer/response_completed/done order.
func NewEnvelope(requestID string, eventType EventType, data any) *Envelope {
	return &Envelope{Type: eventType, Timestamp: time.Now(), RequestID: requestID, Data: data}
}

func (s *Sequencer) envelope(eventType EventType, data any) *Envelope {
	return &Envelope{
		Type:      eventType,
		Timestamp: time.Now(),
		RequestID: s.requestID,
		Data:      data,
	}
}

// Encode renders an Envelope as a single SSE wire message, JSON-marshaling
// Data into the message body and mapping the envelope's Type onto the SSE
// event field so clients can dispatch on event name without parsing JSON
// first.
func Encode(env *Envelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	encoder := sse.NewEncoder()
	return encoder.Encode(&sse.Message{
		Event: string(env.Type),
		Data:  payload,
	})
}
