package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/ragforge/queryengine/media"
)

// MessageType identifies the role a message plays in a conversation.
type MessageType string

const (
	MessageTypeSystem    MessageType = "system"
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeTool      MessageType = "tool"
)

func (t MessageType) String() string { return string(t) }

func (t MessageType) IsSystem() bool    { return t == MessageTypeSystem }
func (t MessageType) IsUser() bool      { return t == MessageTypeUser }
func (t MessageType) IsAssistant() bool { return t == MessageTypeAssistant }
func (t MessageType) IsTool() bool      { return t == MessageTypeTool }

// Message is implemented by every conversation turn accepted by a Model.
type Message interface {
	Type() MessageType
}

// MessageParams is a catch-all constructor payload for NewMessage and the
// per-type constructors, so callers can build any message kind through a
// single struct literal when the concrete type isn't known up front.
type MessageParams struct {
	Type        MessageType
	Text        string
	Media       []*media.Media
	ToolCalls   []*ToolCall
	ToolReturns []*ToolReturn
	Metadata    map[string]any
}

// ToolCall is a single function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolReturn carries the result of executing a ToolCall back to the model.
type ToolReturn struct {
	ID     string
	Name   string
	Result string
}

// SystemMessage carries instructions that set the assistant's behavior.
type SystemMessage struct {
	Text     string
	Metadata map[string]any
}

var _ Message = (*SystemMessage)(nil)

func (m *SystemMessage) Type() MessageType { return MessageTypeSystem }

// NewSystemMessage builds a SystemMessage from a plain string or a MessageParams.
func NewSystemMessage[T string | MessageParams](param T) *SystemMessage {
	msg := &SystemMessage{}
	switch p := any(param).(type) {
	case string:
		msg.Text = p
	case MessageParams:
		msg.Text, msg.Metadata = p.Text, p.Metadata
	}
	if msg.Metadata == nil {
		msg.Metadata = make(map[string]any)
	}
	return msg
}

// UserMessage carries end-user input, optionally with media attachments.
type UserMessage struct {
	Text     string
	Media    []*media.Media
	Metadata map[string]any
}

var _ Message = (*UserMessage)(nil)

func (m *UserMessage) Type() MessageType { return MessageTypeUser }
func (m *UserMessage) HasMedia() bool    { return len(m.Media) > 0 }

// NewUserMessage builds a UserMessage from a string, a media slice, or a MessageParams.
func NewUserMessage[T string | []*media.Media | MessageParams](param T) *UserMessage {
	msg := &UserMessage{}
	switch p := any(param).(type) {
	case string:
		msg.Text = p
	case []*media.Media:
		msg.Media = p
	case MessageParams:
		msg.Text, msg.Media, msg.Metadata = p.Text, p.Media, p.Metadata
	}
	if msg.Media == nil {
		msg.Media = make([]*media.Media, 0)
	}
	if msg.Metadata == nil {
		msg.Metadata = make(map[string]any)
	}
	return msg
}

// AssistantMessage carries the model's generated output: text, media,
// tool calls, or any combination.
type AssistantMessage struct {
	Text      string
	Media     []*media.Media
	ToolCalls []*ToolCall
	Metadata  map[string]any
}

var _ Message = (*AssistantMessage)(nil)

func (m *AssistantMessage) Type() MessageType  { return MessageTypeAssistant }
func (m *AssistantMessage) HasMedia() bool     { return len(m.Media) > 0 }
func (m *AssistantMessage) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Meta returns the message's metadata map, lazily initializing it so
// callers can merge into it without a nil check.
func (m *AssistantMessage) Meta() map[string]any {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	return m.Metadata
}

// NewAssistantMessage builds an AssistantMessage from any of its common
// shapes: plain text, media, tool calls, metadata, or a full MessageParams.
func NewAssistantMessage[T string | []*media.Media | []*ToolCall | map[string]any | MessageParams](param T) *AssistantMessage {
	var msg *AssistantMessage
	switch p := any(param).(type) {
	case string:
		msg = &AssistantMessage{Text: p}
	case []*media.Media:
		msg = &AssistantMessage{Media: p}
	case []*ToolCall:
		msg = &AssistantMessage{ToolCalls: p}
	case map[string]any:
		msg = &AssistantMessage{Metadata: p}
	case MessageParams:
		msg = &AssistantMessage{Text: p.Text, Media: p.Media, ToolCalls: p.ToolCalls, Metadata: p.Metadata}
	default:
		msg = &AssistantMessage{}
	}
	if msg.Media == nil {
		msg.Media = make([]*media.Media, 0)
	}
	if msg.ToolCalls == nil {
		msg.ToolCalls = make([]*ToolCall, 0)
	}
	return msg
}

// ToolMessage carries the results of one or more tool executions back to
// the model as a single conversation turn.
type ToolMessage struct {
	ToolReturns []*ToolReturn
	Metadata    map[string]any
}

var _ Message = (*ToolMessage)(nil)

func (m *ToolMessage) Type() MessageType { return MessageTypeTool }

// Meta returns the message's metadata map, lazily initializing it so
// callers can merge into it without a nil check.
func (m *ToolMessage) Meta() map[string]any {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	return m.Metadata
}

// NewToolMessage builds a ToolMessage from a slice of ToolReturn or a
// MessageParams. At least one tool return is required.
func NewToolMessage[T []*ToolReturn | MessageParams](param T) (*ToolMessage, error) {
	var returns []*ToolReturn
	var metadata map[string]any

	switch p := any(param).(type) {
	case []*ToolReturn:
		returns = p
	case MessageParams:
		returns = p.ToolReturns
		metadata = p.Metadata
	}

	if len(returns) == 0 {
		return nil, errors.New("tool message requires at least one tool return")
	}

	return &ToolMessage{ToolReturns: returns, Metadata: metadata}, nil
}

// NewMessage dispatches to the correct constructor based on params.Type.
func NewMessage(params MessageParams) (Message, error) {
	switch params.Type {
	case MessageTypeSystem:
		return NewSystemMessage(params), nil
	case MessageTypeUser:
		return NewUserMessage(params), nil
	case MessageTypeAssistant:
		return NewAssistantMessage(params), nil
	case MessageTypeTool:
		return NewToolMessage(params)
	default:
		return nil, fmt.Errorf("unsupported message type: %s", params.Type)
	}
}

// FilterMessages returns the messages for which predicate returns true,
// skipping nil entries. Panics if predicate is nil.
func FilterMessages(messages []Message, predicate func(Message) bool) []Message {
	if predicate == nil {
		panic("chat: FilterMessages predicate cannot be nil")
	}
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		if predicate(m) {
			out = append(out, m)
		}
	}
	return out
}

func filterOutNilMessages(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// FilterMessagesByMessageTypes returns messages whose Type() is one of
// types. With no types given, returns all non-nil messages.
func FilterMessagesByMessageTypes(messages []Message, types ...MessageType) []Message {
	if len(types) == 0 {
		return filterOutNilMessages(messages)
	}
	allowed := make(map[MessageType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return FilterMessages(messages, func(m Message) bool { return allowed[m.Type()] })
}

// MergeSystemMessages concatenates the text of every SystemMessage in
// messages (in order) with a blank-line separator, merging their metadata
// with later values winning. Returns nil if there are none.
func MergeSystemMessages(messages []Message) *SystemMessage {
	var merged *SystemMessage
	for _, m := range messages {
		sysMsg, ok := m.(*SystemMessage)
		if !ok {
			continue
		}
		if merged == nil {
			merged = &SystemMessage{Text: sysMsg.Text}
		} else {
			merged.Text += "\n\n" + sysMsg.Text
		}
		if len(sysMsg.Metadata) > 0 {
			if merged.Metadata == nil {
				merged.Metadata = make(map[string]any, len(sysMsg.Metadata))
			}
			maps.Copy(merged.Metadata, sysMsg.Metadata)
		}
	}
	return merged
}

// MergeUserMessages concatenates the text and combines the media of every
// UserMessage in messages, merging their metadata with later values
// winning. Returns nil if there are none.
func MergeUserMessages(messages []Message) *UserMessage {
	var merged *UserMessage
	for _, m := range messages {
		userMsg, ok := m.(*UserMessage)
		if !ok {
			continue
		}
		if merged == nil {
			merged = &UserMessage{Text: userMsg.Text, Media: append([]*media.Media{}, userMsg.Media...)}
		} else {
			merged.Text += "\n\n" + userMsg.Text
			merged.Media = append(merged.Media, userMsg.Media...)
		}
		if len(userMsg.Metadata) > 0 {
			if merged.Metadata == nil {
				merged.Metadata = make(map[string]any, len(userMsg.Metadata))
			}
			maps.Copy(merged.Metadata, userMsg.Metadata)
		}
	}
	return merged
}

// MergeToolMessages combines the tool returns of every ToolMessage in
// messages into one. Returns (nil, nil) if there are none.
func MergeToolMessages(messages []Message) (*ToolMessage, error) {
	var returns []*ToolReturn
	var metadata map[string]any
	for _, m := range messages {
		toolMsg, ok := m.(*ToolMessage)
		if !ok {
			continue
		}
		returns = append(returns, toolMsg.ToolReturns...)
		if len(toolMsg.Metadata) > 0 {
			if metadata == nil {
				metadata = make(map[string]any, len(toolMsg.Metadata))
			}
			maps.Copy(metadata, toolMsg.Metadata)
		}
	}
	if len(returns) == 0 {
		return nil, nil
	}
	return &ToolMessage{ToolReturns: returns, Metadata: metadata}, nil
}

// MergeMessages merges every message of the given type in messages into a
// single message of that type. Only System, User, and Tool types support
// merging; Assistant messages are never merged since each represents a
// distinct generation turn.
func MergeMessages(messages []Message, typ MessageType) (Message, error) {
	switch typ {
	case MessageTypeSystem:
		merged := MergeSystemMessages(messages)
		if merged == nil {
			return nil, nil
		}
		return merged, nil
	case MessageTypeUser:
		merged := MergeUserMessages(messages)
		if merged == nil {
			return nil, nil
		}
		return merged, nil
	case MessageTypeTool:
		return MergeToolMessages(messages)
	default:
		return nil, fmt.Errorf("unsupported message type for merging: %s", typ)
	}
}

// MergeAdjacentSameTypeMessages compresses consecutive runs of messages
// sharing the same type into a single merged message, leaving Assistant
// messages (which cannot be merged) and isolated messages untouched.
func MergeAdjacentSameTypeMessages(messages []Message) []Message {
	messages = filterOutNilMessages(messages)
	if len(messages) == 0 {
		return messages
	}

	out := make([]Message, 0, len(messages))
	run := []Message{messages[0]}

	flush := func() {
		if len(run) == 1 {
			out = append(out, run[0])
			return
		}
		merged, err := MergeMessages(run, run[0].Type())
		if err != nil || merged == nil {
			out = append(out, run...)
			return
		}
		out = append(out, merged)
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Type() == run[0].Type() && messages[i].Type() != MessageTypeAssistant {
			run = append(run, messages[i])
			continue
		}
		flush()
		run = []Message{messages[i]}
	}
	flush()

	return out
}

func findLastMessageIndexOfType(messages []Message, typ MessageType) (int, Message) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i] == nil {
			continue
		}
		if messages[i].Type() == typ {
			return i, messages[i]
		}
	}
	return -1, nil
}

func hasMessageTypeAt(messages []Message, index int, typ MessageType) bool {
	if index < 0 {
		index += len(messages)
	}
	if index < 0 || index >= len(messages) {
		return false
	}
	if messages[index] == nil {
		return false
	}
	return messages[index].Type() == typ
}

func hasMessageTypeAtLast(messages []Message, typ MessageType) bool {
	return hasMessageTypeAt(messages, -1, typ)
}

func appendTextToLastMessageOfType(messages []Message, typ MessageType, text string) {
	_, msg := findLastMessageIndexOfType(messages, typ)
	if msg == nil {
		return
	}
	switch m := msg.(type) {
	case *UserMessage:
		m.Text += "\n\n" + text
	case *SystemMessage:
		m.Text += "\n\n" + text
	}
}

func replaceTextOfLastMessageOfType(messages []Message, typ MessageType, text string) {
	_, msg := findLastMessageIndexOfType(messages, typ)
	if msg == nil {
		return
	}
	switch m := msg.(type) {
	case *UserMessage:
		m.Text = text
	case *SystemMessage:
		m.Text = text
	}
}

// MessageToString renders a message for logging and debugging as
// "<type>: <text-or-json>".
func MessageToString(msg Message) string {
	switch m := msg.(type) {
	case *SystemMessage:
		return fmt.Sprintf("%s: %s", MessageTypeSystem, m.Text)
	case *UserMessage:
		return fmt.Sprintf("%s: %s", MessageTypeUser, m.Text)
	case *AssistantMessage:
		if m.HasToolCalls() {
			b, _ := json.Marshal(m.ToolCalls)
			return fmt.Sprintf("%s: %s", MessageTypeAssistant, string(b))
		}
		return fmt.Sprintf("%s: %s", MessageTypeAssistant, m.Text)
	case *ToolMessage:
		b, _ := json.Marshal(m.ToolReturns)
		return fmt.Sprintf("%s: %s", MessageTypeTool, string(b))
	default:
		return ""
	}
}

// MessagesToStrings renders every message via MessageToString.
func MessagesToStrings(messages []Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = MessageToString(m)
	}
	return out
}
