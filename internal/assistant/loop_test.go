package assistant

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/hub"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
)

// scriptedProvider replays canned turns and records every request it saw.
type scriptedProvider struct {
	turns    [][]StreamEvent
	requests []*ChatRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	p.requests = append(p.requests, req)
	var turn []StreamEvent
	if len(p.turns) > 0 {
		turn = p.turns[0]
		p.turns = p.turns[1:]
	}
	out := make(chan StreamEvent, len(turn)+1)
	for _, ev := range turn {
		out <- ev
	}
	close(out)
	return out, nil
}

func newLoopFixture(t *testing.T, provider Provider, maxToolCalls int) *Loop {
	t.Helper()
	registry := NewRegistry(nil, nil)
	toolset := NewToolset(store.NewMemoryStore(), hub.New(), nil)
	if err := toolset.RegisterAll(registry); err != nil {
		t.Fatal(err)
	}
	return NewLoop(provider, registry, LoopConfig{Model: "test", MaxToolCalls: maxToolCalls}, nil, nil)
}

func collect(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var chunks []Chunk
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("unexpected loop error: %v", chunk.Err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestLoopTextOnly(t *testing.T) {
	provider := &scriptedProvider{turns: [][]StreamEvent{
		{{Text: "Hello "}, {Text: "there"}},
	}}
	loop := newLoopFixture(t, provider, 5)

	chunks := collect(t, loop.Run(context.Background(), NewRunContext(nil, nil, nil), []Message{
		{Role: RoleUser, Content: "hi"},
	}))

	var text string
	for _, c := range chunks {
		text += c.Text
	}
	if text != "Hello there" {
		t.Fatalf("got text %q", text)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.requests))
	}
}

func TestLoopToolRoundTrip(t *testing.T) {
	provider := &scriptedProvider{turns: [][]StreamEvent{
		{{ToolCalls: []ToolCall{{ID: "c1", Name: "getStats", Arguments: json.RawMessage(`{}`)}}}},
		{{Text: "all quiet"}},
	}}
	loop := newLoopFixture(t, provider, 5)

	chunks := collect(t, loop.Run(context.Background(), NewRunContext(nil, nil, nil), []Message{
		{Role: RoleUser, Content: "how busy is it?"},
	}))

	var toolChunks int
	for _, c := range chunks {
		if c.ToolName == "getStats" {
			toolChunks++
			var stats map[string]any
			if err := json.Unmarshal(c.ToolResult, &stats); err != nil {
				t.Fatalf("tool result is not JSON: %v", err)
			}
		}
	}
	if toolChunks != 1 {
		t.Fatalf("got %d tool chunks, want 1", toolChunks)
	}

	// The second request must carry the assistant tool call and its result.
	if len(provider.requests) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.requests))
	}
	second := provider.requests[1].Messages
	var sawCall, sawResult bool
	for _, msg := range second {
		if msg.Role == RoleAssistant && len(msg.ToolCalls) > 0 {
			sawCall = true
		}
		if msg.Role == RoleTool && msg.ToolCallID == "c1" {
			sawResult = true
		}
	}
	if !sawCall || !sawResult {
		t.Fatalf("second request missing tool exchange: call=%v result=%v", sawCall, sawResult)
	}
}

func TestLoopEnforcesToolBudget(t *testing.T) {
	call := func(id string) []StreamEvent {
		return []StreamEvent{{ToolCalls: []ToolCall{{ID: id, Name: "getStats", Arguments: json.RawMessage(`{}`)}}}}
	}
	provider := &scriptedProvider{turns: [][]StreamEvent{
		call("c1"),
		call("c2"),
		call("c3"),
		{{Text: "giving up on tools"}},
	}}
	loop := newLoopFixture(t, provider, 2)

	chunks := collect(t, loop.Run(context.Background(), NewRunContext(nil, nil, nil), []Message{
		{Role: RoleUser, Content: "stats, repeatedly"},
	}))

	var results []string
	for _, c := range chunks {
		if c.ToolName != "" {
			results = append(results, string(c.ToolResult))
		}
	}
	if len(results) != 3 {
		t.Fatalf("got %d tool results, want 3", len(results))
	}

	// First two calls run; the third exceeds the budget and is refused as
	// a value the model can read.
	var refused map[string]string
	if err := json.Unmarshal([]byte(results[2]), &refused); err != nil {
		t.Fatal(err)
	}
	if refused["error"] != ErrBudget {
		t.Fatalf("third call result %q, want %q", results[2], ErrBudget)
	}

	var text string
	for _, c := range chunks {
		text += c.Text
	}
	if text != "giving up on tools" {
		t.Fatalf("final text %q", text)
	}
}

func TestSystemPromptPersonaFallback(t *testing.T) {
	known := SystemPrompt("concise")
	unknown := SystemPrompt("pirate")
	def := SystemPrompt("default")

	if known == def {
		t.Error("persona suffix did not change the prompt")
	}
	if unknown != def {
		t.Error("unknown persona did not fall back to default")
	}
}
