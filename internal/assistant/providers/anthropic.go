package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
)

const anthropicMaxTokens = 4096

// AnthropicProvider streams chat completions with tool use from the
// Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Stream sends the request and returns a channel of stream events. Tool
// use input arrives as partial JSON deltas and is assembled per content
// block before the call is emitted.
func (p *AnthropicProvider) Stream(ctx context.Context, req *assistant.ChatRequest) (<-chan assistant.StreamEvent, error) {
	messages, err := convertAnthropicMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: anthropicMaxTokens,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := convertAnthropicTools(req.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	out := make(chan assistant.StreamEvent)
	go p.processStream(stream, out)
	return out, nil
}

func (p *AnthropicProvider) processStream(stream *ssestream.Stream[anthropic.MessageStreamEventUnion], out chan<- assistant.StreamEvent) {
	defer close(out)

	var current *assistant.ToolCall
	var currentInput strings.Builder
	var calls []assistant.ToolCall

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_start":
			block := event.AsContentBlockStart().ContentBlock
			if block.Type == "tool_use" {
				toolUse := block.AsToolUse()
				current = &assistant.ToolCall{ID: toolUse.ID, Name: toolUse.Name}
				currentInput.Reset()
			}

		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			switch delta.Type {
			case "text_delta":
				if delta.Text != "" {
					out <- assistant.StreamEvent{Text: delta.Text}
				}
			case "input_json_delta":
				if delta.PartialJSON != "" {
					currentInput.WriteString(delta.PartialJSON)
				}
			}

		case "content_block_stop":
			if current != nil {
				input := currentInput.String()
				if input == "" {
					input = "{}"
				}
				current.Arguments = json.RawMessage(input)
				calls = append(calls, *current)
				current = nil
			}

		case "message_stop":
			if len(calls) > 0 {
				out <- assistant.StreamEvent{ToolCalls: calls}
			}
			return
		}
	}
	if err := stream.Err(); err != nil {
		out <- assistant.StreamEvent{Err: err}
		return
	}
	if len(calls) > 0 {
		out <- assistant.StreamEvent{ToolCalls: calls}
	}
}

func convertAnthropicMessages(messages []assistant.Message) ([]anthropic.MessageParam, error) {
	var result []anthropic.MessageParam
	for _, msg := range messages {
		var content []anthropic.ContentBlockParamUnion

		switch msg.Role {
		case assistant.RoleTool:
			content = append(content, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
			result = append(result, anthropic.NewUserMessage(content...))

		case assistant.RoleAssistant:
			if msg.Content != "" {
				content = append(content, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input map[string]any
				if err := json.Unmarshal(tc.Arguments, &input); err != nil {
					return nil, fmt.Errorf("invalid tool call input: %w", err)
				}
				content = append(content, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			result = append(result, anthropic.NewAssistantMessage(content...))

		default:
			content = append(content, anthropic.NewTextBlock(msg.Content))
			result = append(result, anthropic.NewUserMessage(content...))
		}
	}
	return result, nil
}

func convertAnthropicTools(tools []assistant.ToolDescriptor) ([]anthropic.ToolUnionParam, error) {
	var result []anthropic.ToolUnionParam
	for _, tool := range tools {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(tool.Schema, &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", tool.Name, err)
		}
		param := anthropic.ToolUnionParamOfTool(schema, tool.Name)
		if param.OfTool == nil {
			return nil, fmt.Errorf("invalid tool schema for %s: missing tool definition", tool.Name)
		}
		param.OfTool.Description = anthropic.String(tool.Description)
		result = append(result, param)
	}
	return result, nil
}
