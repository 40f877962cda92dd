package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/observability"
)

// DefaultMaxToolCalls bounds tool invocations per user turn.
const DefaultMaxToolCalls = 15

// DefaultMaxWallTime bounds the wall-clock duration of one chat turn.
const DefaultMaxWallTime = 2 * time.Minute

// Chunk is one element of the loop's output stream. Exactly one of Text,
// ToolName, or Err is meaningful per chunk.
type Chunk struct {
	Text string `json:"text,omitempty"`

	// ToolName and ToolResult report a completed tool invocation.
	ToolName   string          `json:"tool,omitempty"`
	ToolResult json.RawMessage `json:"toolResult,omitempty"`

	Err error `json:"-"`
}

// LoopConfig tunes a Loop. Zero values fall back to defaults.
type LoopConfig struct {
	Model        string
	Persona      string
	MaxToolCalls int
	MaxWallTime  time.Duration
}

// Loop drives a tool-calling conversation: it streams model output,
// executes requested tools through the registry, feeds results back, and
// repeats until the model answers without tools or the budget runs out.
type Loop struct {
	provider Provider
	registry *Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
	config   LoopConfig
}

// NewLoop creates a Loop. logger and metrics may be nil.
func NewLoop(provider Provider, registry *Registry, config LoopConfig, logger *slog.Logger, metrics *observability.Metrics) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxToolCalls <= 0 {
		config.MaxToolCalls = DefaultMaxToolCalls
	}
	if config.MaxWallTime <= 0 {
		config.MaxWallTime = DefaultMaxWallTime
	}
	return &Loop{
		provider: provider,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		config:   config,
	}
}

// Run executes one chat turn. The returned channel is closed when the turn
// completes; a Chunk with Err set is always the final element on failure.
func (l *Loop) Run(ctx context.Context, rc *RunContext, messages []Message) <-chan Chunk {
	out := make(chan Chunk, 16)
	go func() {
		defer close(out)
		ctx, cancel := context.WithTimeout(ctx, l.config.MaxWallTime)
		defer cancel()
		l.run(ctx, rc, messages, out)
	}()
	return out
}

func (l *Loop) run(ctx context.Context, rc *RunContext, messages []Message, out chan<- Chunk) {
	convo := make([]Message, len(messages))
	copy(convo, messages)

	descriptors := l.descriptors()
	used := 0

	// Each iteration is one provider turn. The cap allows one turn that
	// only receives budget-exhausted results plus one final turn for the
	// model to answer in text.
	maxIterations := l.config.MaxToolCalls + 2
	for iteration := 0; iteration < maxIterations; iteration++ {
		req := &ChatRequest{
			Model:    l.config.Model,
			System:   SystemPrompt(l.config.Persona),
			Messages: convo,
			Tools:    descriptors,
		}
		stream, err := l.provider.Stream(ctx, req)
		if err != nil {
			l.countLLM("error")
			out <- Chunk{Err: err}
			return
		}

		var text string
		var calls []ToolCall
		for ev := range stream {
			if ev.Err != nil {
				l.countLLM("error")
				out <- Chunk{Err: ev.Err}
				return
			}
			if ev.Text != "" {
				text += ev.Text
				out <- Chunk{Text: ev.Text}
			}
			if len(ev.ToolCalls) > 0 {
				calls = append(calls, ev.ToolCalls...)
			}
		}
		l.countLLM("ok")

		if len(calls) == 0 {
			return
		}

		convo = append(convo, Message{Role: RoleAssistant, Content: text, ToolCalls: calls})
		for _, call := range calls {
			result := l.execute(ctx, rc, call, &used)
			out <- Chunk{ToolName: call.Name, ToolResult: json.RawMessage(result.Content)}
			convo = append(convo, Message{Role: RoleTool, ToolCallID: call.ID, Content: result.Content})
		}
	}
}

func (l *Loop) execute(ctx context.Context, rc *RunContext, call ToolCall, used *int) *ToolResult {
	if *used >= l.config.MaxToolCalls {
		return errResult(ErrBudget)
	}
	*used++
	result, err := l.registry.Execute(ctx, rc, call.Name, call.Arguments)
	if err != nil {
		l.logger.Error("tool call failed", "tool", call.Name, "request_id", rc.RequestID, "error", err)
		return errResultDetail("tool-failed", "the operation could not be completed")
	}
	return result
}

func (l *Loop) descriptors() []ToolDescriptor {
	tools := l.registry.List()
	out := make([]ToolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = ToolDescriptor{Name: t.Name(), Description: t.Description(), Schema: t.Schema()}
	}
	return out
}

func (l *Loop) countLLM(status string) {
	if l.metrics != nil {
		l.metrics.LLMRequests.WithLabelValues(l.provider.Name(), status).Inc()
	}
}
