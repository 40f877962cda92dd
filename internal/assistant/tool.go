package assistant

import (
	"context"
	"encoding/json"
)

// Error kinds tools return as tagged values inside a ToolResult. They are
// surfaced to the model as data, never raised as Go errors.
const (
	ErrAuthRequired = "auth-required"
	ErrNotFound     = "not-found"
	ErrForbidden    = "forbidden"
	ErrInvalidInput = "invalid-input"
	ErrBudget       = "tool-budget-exhausted"
)

// Tool is the capability surface exposed to the model. Schema returns the
// JSON Schema for the tool's parameters; the registry validates input
// against it before Execute runs.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the outcome handed back to the model. Content is always a
// JSON object; IsError marks tagged domain failures the model should relay
// rather than retry.
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

func jsonResult(v any) (*ToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &ToolResult{Content: string(data)}, nil
}

func errResult(kind string) *ToolResult {
	data, _ := json.Marshal(map[string]string{"error": kind})
	return &ToolResult{Content: string(data), IsError: true}
}

func errResultDetail(kind, detail string) *ToolResult {
	data, _ := json.Marshal(map[string]string{"error": kind, "detail": detail})
	return &ToolResult{Content: string(data), IsError: true}
}

// toolFunc adapts a closure to the Tool interface. All built-in tools use
// it; the interface stays open for out-of-tree tools.
type toolFunc struct {
	name        string
	description string
	schema      json.RawMessage
	run         func(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error)
}

func (t *toolFunc) Name() string            { return t.name }
func (t *toolFunc) Description() string     { return t.description }
func (t *toolFunc) Schema() json.RawMessage { return t.schema }

func (t *toolFunc) Execute(ctx context.Context, rc *RunContext, params json.RawMessage) (*ToolResult, error) {
	return t.run(ctx, rc, params)
}
