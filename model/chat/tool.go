package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	pkgSlices "github.com/Tangerg/lynx/pkg/slices"
)

// ToolDefinition represents a tool definition that enables LLM models to understand
// when and how to invoke external functions.
//
// Contains essential metadata for LLM tool calling:
//   - Name: Unique tool identifier for LLM recognition
//   - Description: Human-readable explanation for LLM decision-making
//   - InputSchema: JSON Schema defining required input parameter structure
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema string
}

// ToolMetadata represents execution configuration that controls how the LLM framework
// processes tool results.
type ToolMetadata struct {
	// ReturnDirect determines whether tool results bypass further LLM processing.
	ReturnDirect bool
}

// Tool represents a tool definition that can be invoked by LLM models.
//
// Execution Patterns:
//
// 1. External tools (delegation pattern): implement only Tool, the caller
// executes them outside the framework and results always return directly.
//
// 2. Internal tools (direct execution pattern): implement CallableTool as
// well, and are invoked in-process by InvokeToolCalls.
type Tool interface {
	Definition() ToolDefinition
	Metadata() ToolMetadata
}

// CallableTool extends Tool with internal execution capability.
type CallableTool interface {
	Tool

	// Call executes the tool's business logic within the framework.
	Call(ctx context.Context, arguments string) (string, error)
}

// tool is the base implementation for external tools requiring delegation.
type tool struct {
	definition ToolDefinition
	metadata   ToolMetadata
}

func (t *tool) Definition() ToolDefinition {
	return t.definition
}

func (t *tool) Metadata() ToolMetadata {
	return t.metadata
}

// callableTool combines the base tool with an execution function.
type callableTool struct {
	tool
	execFunc func(ctx context.Context, arguments string) (string, error)
}

func (t *callableTool) Call(ctx context.Context, arguments string) (string, error) {
	if t.execFunc == nil {
		return "", fmt.Errorf("execution function is required for tool %s", t.definition.Name)
	}
	return t.execFunc(ctx, arguments)
}

// NewTool creates a new tool instance. If execFunc is provided, the returned
// value also satisfies CallableTool; otherwise it is an external tool whose
// execution is delegated to the caller.
func NewTool(definition ToolDefinition, metadata ToolMetadata, execFunc func(ctx context.Context, arguments string) (string, error)) (Tool, error) {
	if definition.Name == "" {
		return nil, errors.New("tool name cannot be empty")
	}
	if definition.InputSchema == "" {
		return nil, errors.New("tool input schema cannot be empty")
	}

	t := tool{
		definition: definition,
		metadata:   metadata,
	}

	if execFunc == nil {
		return &t, nil
	}

	return &callableTool{
		tool:     t,
		execFunc: execFunc,
	}, nil
}

// ToolRegistry provides thread-safe management of tool instances, keyed by
// name. Registration never overwrites an existing entry.
type ToolRegistry struct {
	mu    sync.RWMutex
	store map[string]Tool
}

// newToolRegistry creates a new registry with an optional initial capacity.
// Negative capacity values default to 0.
func newToolRegistry(capacity ...int) *ToolRegistry {
	c, _ := pkgSlices.First(capacity)
	if c < 0 {
		c = 0
	}
	return &ToolRegistry{
		store: make(map[string]Tool, c),
	}
}

// Register adds tools to the registry. Duplicate names are silently
// ignored to prevent overwriting existing tools.
func (r *ToolRegistry) Register(tools ...Tool) *ToolRegistry {
	if len(tools) == 0 {
		return r
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if t == nil {
			continue
		}
		name := t.Definition().Name
		if _, exists := r.store[name]; !exists {
			r.store[name] = t
		}
	}
	return r
}

// Unregister removes tools by name. Non-existent names are silently
// ignored.
func (r *ToolRegistry) Unregister(names ...string) *ToolRegistry {
	if len(names) == 0 {
		return r
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		delete(r.store, name)
	}
	return r
}

// Find retrieves a tool by name.
func (r *ToolRegistry) Find(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[name]
	return t, ok
}

// Exists checks if a tool with the specified name is registered.
func (r *ToolRegistry) Exists(name string) bool {
	_, ok := r.Find(name)
	return ok
}

// All returns a defensive copy of all registered tools.
func (r *ToolRegistry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.store))
	for _, t := range r.store {
		tools = append(tools, t)
	}
	return tools
}

// Names returns a copy of all registered tool names.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.store))
	for name := range r.store {
		names = append(names, name)
	}
	return names
}

// Size returns the total number of registered tools.
func (r *ToolRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.store)
}

// Clear removes all tools from the registry.
func (r *ToolRegistry) Clear() *ToolRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.store)
	return r
}

// ToolInvocationResult represents the outcome of invoking the tool calls
// found in an assistant response, and determines the next step in the
// conversation flow.
type ToolInvocationResult struct {
	request           *Request
	response          *Response
	toolMessage       *ToolMessage
	externalToolCalls []*ToolCall
	allReturnDirect   bool
}

// ShouldContinue reports whether conversation should continue with another
// LLM call. True only when there are no external tool calls awaiting
// client-side execution and at least one internal tool requires its result
// to be fed back to the model.
func (r *ToolInvocationResult) ShouldContinue() bool {
	return len(r.externalToolCalls) == 0 && !r.allReturnDirect
}

// ShouldReturn is the exact inverse of ShouldContinue.
func (r *ToolInvocationResult) ShouldReturn() bool {
	return !r.ShouldContinue()
}

// BuildContinueRequest constructs a new chat request that folds the tool
// results into conversation history, ready for the next LLM call. Valid
// only when ShouldContinue is true.
func (r *ToolInvocationResult) BuildContinueRequest() (*Request, error) {
	if r.allReturnDirect {
		return nil, errors.New("should return directly")
	}
	if r.request == nil {
		return nil, errors.New("original chat request is required")
	}
	if r.response == nil {
		return nil, errors.New("chat response is required")
	}
	if r.toolMessage == nil {
		return nil, errors.New("tool response message is required")
	}

	res := r.response.findFirstResultWithToolCalls()
	if res == nil {
		return nil, errors.New("tool calls result is required")
	}

	msgs := slices.Clone(r.request.Messages)
	msgs = append(msgs, res.AssistantMessage)
	msgs = append(msgs, r.toolMessage)

	req, err := NewRequest(msgs)
	if err != nil {
		return nil, err
	}
	req.Options = r.request.Options
	return req, nil
}

// BuildReturnResponse constructs a chat response for direct return to the
// caller, surfacing any external tool calls that require client-side
// execution. Valid only when ShouldReturn is true.
func (r *ToolInvocationResult) BuildReturnResponse() (*Response, error) {
	if r.ShouldContinue() {
		return nil, errors.New("should continue with LLM")
	}
	if r.response == nil {
		return nil, errors.New("chat response is required")
	}

	res := r.response.findFirstResultWithToolCalls()
	if res == nil {
		return nil, errors.New("tool calls result is required")
	}

	msg := res.AssistantMessage
	newMsg := NewAssistantMessage(
		MessageParams{
			Text:      msg.Text,
			Media:     msg.Media,
			ToolCalls: r.externalToolCalls,
			Metadata:  msg.Metadata,
		})

	newRes, err := NewResult(newMsg, res.Metadata)
	if err != nil {
		return nil, err
	}
	newRes.ToolMessage = r.toolMessage

	return NewResponse([]*Result{newRes}, r.response.Metadata)
}

// canInvokeToolCalls reports whether response contains tool calls that can
// be processed, validating that all requested tools exist in the registry.
func canInvokeToolCalls(registry *ToolRegistry, response *Response) (bool, error) {
	res := response.findFirstResultWithToolCalls()
	if res == nil {
		return false, nil
	}

	for _, call := range res.AssistantMessage.ToolCalls {
		if _, ok := registry.Find(call.Name); !ok {
			return false, fmt.Errorf("tool not found: %s", call.Name)
		}
	}

	return true, nil
}

// invokeToolCalls executes internal tools immediately and collects external
// tools for client-side processing.
func invokeToolCalls(ctx context.Context, registry *ToolRegistry, toolCalls []*ToolCall) (*ToolInvocationResult, error) {
	var (
		extCalls        []*ToolCall
		allReturnDirect = true
		returns         []*ToolReturn
	)

	for _, call := range toolCalls {
		// existence guaranteed by canInvokeToolCalls precheck
		t, _ := registry.Find(call.Name)

		ct, ok := t.(CallableTool)
		if !ok {
			extCalls = append(extCalls, call)
			continue
		}

		result, err := ct.Call(ctx, call.Arguments)
		if err != nil {
			return nil, fmt.Errorf("failed to call tool %s: %w", call.Name, err)
		}

		allReturnDirect = allReturnDirect && ct.Metadata().ReturnDirect
		returns = append(returns, &ToolReturn{
			ID:     call.ID,
			Name:   call.Name,
			Result: result,
		})
	}

	toolMsg, err := NewToolMessage(returns)
	if err != nil {
		return nil, err
	}

	return &ToolInvocationResult{
		toolMessage:       toolMsg,
		externalToolCalls: extCalls,
		allReturnDirect:   allReturnDirect && len(extCalls) == 0,
	}, nil
}

// ToolSupport provides a high-level interface for managing tools and
// processing tool calls in LLM chat interactions.
type ToolSupport struct {
	registry *ToolRegistry
}

// NewToolSupport creates a new ToolSupport with an internal tool registry.
// The optional capacity parameter sizes the registry up front.
func NewToolSupport(capacity ...int) *ToolSupport {
	return &ToolSupport{
		registry: newToolRegistry(capacity...),
	}
}

// Registry returns the internal tool registry for direct management.
func (h *ToolSupport) Registry() *ToolRegistry {
	return h.registry
}

// RegisterTools registers multiple tools to the internal registry.
func (h *ToolSupport) RegisterTools(tools ...Tool) {
	h.registry.Register(tools...)
}

// UnregisterTools removes tools by name from the registry.
func (h *ToolSupport) UnregisterTools(names ...string) {
	h.registry.Unregister(names...)
}

// ShouldReturnDirect reports whether a conversation should return directly
// to the caller based on the last message in history: true when the last
// message is a ToolMessage whose tools are all registered and all
// configured with ReturnDirect=true.
func (h *ToolSupport) ShouldReturnDirect(msgs []Message) bool {
	if !hasMessageTypeAtLast(msgs, MessageTypeTool) {
		return false
	}

	msg, _ := pkgSlices.Last(msgs)
	toolMsg, ok := msg.(*ToolMessage)
	if !ok {
		return false
	}

	returnDirect := true
	for _, ret := range toolMsg.ToolReturns {
		t, ok := h.registry.Find(ret.Name)
		if !ok {
			return false
		}
		returnDirect = returnDirect && t.Metadata().ReturnDirect
	}

	return returnDirect
}

// BuildReturnDirectResponse builds a chat response for direct return when
// all conditions checked by ShouldReturnDirect are met.
func (h *ToolSupport) BuildReturnDirectResponse(msgs []Message) (*Response, error) {
	if !h.ShouldReturnDirect(msgs) {
		return nil, errors.New("conditions not met for a direct return response")
	}

	msg, _ := pkgSlices.Last(msgs)
	toolMsg := msg.(*ToolMessage)

	assistantMsg := NewAssistantMessage(map[string]any{
		"create_by": FinishReasonReturnDirect.String(),
	})

	meta := &ResultMetadata{
		FinishReason: FinishReasonReturnDirect,
	}

	res, err := NewResult(assistantMsg, meta)
	if err != nil {
		return nil, err
	}
	res.ToolMessage = toolMsg

	return NewResponse([]*Result{res}, &ResponseMetadata{})
}

// ShouldInvokeToolCalls reports whether response contains tool calls that
// should be processed, validating that all requested tools are registered.
func (h *ToolSupport) ShouldInvokeToolCalls(response *Response) (bool, error) {
	return canInvokeToolCalls(h.registry, response)
}

// InvokeToolCalls executes the tool calls in response: internal tools run
// immediately, external tools are collected for client-side execution. The
// returned ToolInvocationResult determines the next step in the
// conversation flow.
func (h *ToolSupport) InvokeToolCalls(ctx context.Context, request *Request, response *Response) (*ToolInvocationResult, error) {
	canInvoke, err := canInvokeToolCalls(h.registry, response)
	if err != nil {
		return nil, err
	}
	if !canInvoke {
		return nil, errors.New("no valid tool calls to invoke")
	}

	res := response.findFirstResultWithToolCalls()

	invResult, err := invokeToolCalls(ctx, h.registry, res.AssistantMessage.ToolCalls)
	if err != nil {
		return nil, err
	}

	invResult.request = request
	invResult.response = response

	return invResult, nil
}
