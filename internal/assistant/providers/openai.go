// Package providers implements LLM backends for the assistant loop.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
)

// OpenAIProvider streams chat completions with tool calling from the
// OpenAI API. Safe for concurrent use; each Stream call owns its own
// goroutine and channel.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey)}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Stream sends the request and returns a channel of stream events. Tool
// calls arrive incrementally from OpenAI and are accumulated by index
// until the finish reason signals completion.
func (p *OpenAIProvider) Stream(ctx context.Context, req *assistant.ChatRequest) (<-chan assistant.StreamEvent, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req),
		Stream:   true,
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = convertTools(req.Tools)
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	out := make(chan assistant.StreamEvent)
	go p.processStream(ctx, stream, out)
	return out, nil
}

func (p *OpenAIProvider) processStream(ctx context.Context, stream *openai.ChatCompletionStream, out chan<- assistant.StreamEvent) {
	defer close(out)
	defer stream.Close()

	// Tool calls are keyed by index; OpenAI interleaves fragments of
	// multiple parallel calls.
	pending := make(map[int]*assistant.ToolCall)
	var order []int

	flush := func() {
		var calls []assistant.ToolCall
		for _, idx := range order {
			tc := pending[idx]
			if tc.ID != "" && tc.Name != "" {
				calls = append(calls, *tc)
			}
		}
		if len(calls) > 0 {
			out <- assistant.StreamEvent{ToolCalls: calls}
		}
		pending = make(map[int]*assistant.ToolCall)
		order = nil
	}

	for {
		select {
		case <-ctx.Done():
			out <- assistant.StreamEvent{Err: ctx.Err()}
			return
		default:
		}

		response, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				flush()
				return
			}
			out <- assistant.StreamEvent{Err: err}
			return
		}
		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta
		if delta.Content != "" {
			out <- assistant.StreamEvent{Text: delta.Content}
		}
		for _, tc := range delta.ToolCalls {
			index := 0
			if tc.Index != nil {
				index = *tc.Index
			}
			if pending[index] == nil {
				pending[index] = &assistant.ToolCall{}
				order = append(order, index)
			}
			if tc.ID != "" {
				pending[index].ID = tc.ID
			}
			if tc.Function.Name != "" {
				pending[index].Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				pending[index].Arguments = append(pending[index].Arguments, tc.Function.Arguments...)
			}
		}
		if response.Choices[0].FinishReason == openai.FinishReasonToolCalls {
			flush()
		}
	}
}

func convertMessages(req *assistant.ChatRequest) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case assistant.RoleTool:
			result = append(result, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
			})
		case assistant.RoleAssistant:
			oaiMsg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			result = append(result, oaiMsg)
		default:
			result = append(result, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		}
	}
	return result
}

func convertTools(tools []assistant.ToolDescriptor) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, tool := range tools {
		var schemaMap map[string]any
		if err := json.Unmarshal(tool.Schema, &schemaMap); err != nil {
			schemaMap = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  schemaMap,
			},
		}
	}
	return result
}
