package assistant

import (
	"context"
	"encoding/json"
)

// Message roles exchanged with a provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a conversation in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string `json:"toolCallId,omitempty"`
}

// ToolCall is a model-issued request to run a tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDescriptor advertises a tool to the model.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// ChatRequest is one completion request to a provider.
type ChatRequest struct {
	Model    string
	System   string
	Messages []Message
	Tools    []ToolDescriptor
}

// StreamEvent is one element of a provider completion stream. Text deltas
// arrive first; any tool calls the model issued are delivered on the final
// event before the channel closes.
type StreamEvent struct {
	Text      string
	ToolCalls []ToolCall
	Err       error
}

// Provider streams completions from an LLM backend.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)
}
