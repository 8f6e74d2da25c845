package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agentwire/agentwire/internal/message"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicClient implements Client over the Anthropic messages API.
type AnthropicClient struct {
	client anthropic.Client
}

func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

func (c *AnthropicClient) Chat(ctx context.Context, params ChatParams) (<-chan StreamEvent, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(params.Model),
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(params.Messages),
	}
	if params.System != "" {
		req.System = []anthropic.TextBlockParam{{Text: params.System}}
	}
	for _, t := range params.Tools {
		req.Tools = append(req.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: toAnthropicSchema(t.Parameters),
			},
		})
	}

	stream := c.client.Messages.NewStreaming(ctx, req)

	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)
		defer stream.Close()
		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if block, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
					out := StreamEvent{
						Type:          StreamToolCallDelta,
						ToolCallIndex: int(ev.Index),
						ToolCallID:    block.ID,
						ToolCallName:  block.Name,
					}
					if !sendEvent(ctx, ch, out) {
						return
					}
				}
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if !sendEvent(ctx, ch, StreamEvent{Type: StreamText, Text: delta.Text}) {
						return
					}
				case anthropic.InputJSONDelta:
					out := StreamEvent{
						Type:          StreamToolCallDelta,
						ToolCallIndex: int(ev.Index),
						ToolCallArgs:  delta.PartialJSON,
					}
					if !sendEvent(ctx, ch, out) {
						return
					}
				}
			case anthropic.MessageDeltaEvent:
				if ev.Usage.OutputTokens > 0 {
					out := StreamEvent{Type: StreamUsage, Usage: &Usage{
						OutputTokens: int(ev.Usage.OutputTokens),
					}}
					if !sendEvent(ctx, ch, out) {
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			sendEvent(ctx, ch, StreamEvent{Type: StreamError, Err: err})
			return
		}
		sendEvent(ctx, ch, StreamEvent{Type: StreamDone})
	}()

	return ch, nil
}

// toAnthropicMessages maps shared messages into Anthropic turns. System
// turns are skipped here; they travel in the request's System field. Tool
// results become user turns carrying tool_result blocks, with the error
// text standing in for content on failed calls.
func toAnthropicMessages(msgs []message.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for i := range msgs {
		m := msgs[i]
		switch m.Role {
		case "user", "developer":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, call := range m.ToolCalls {
				id := call.ID
				if id == "" {
					id = uuid.NewString()
				}
				var input map[string]any
				if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    id,
						Name:  call.Function.Name,
						Input: input,
					},
				})
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case "tool":
			isError := m.Error != ""
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.EffectiveContent(), isError),
			))
		}
	}
	return out
}

func toAnthropicSchema(raw json.RawMessage) anthropic.ToolInputSchemaParam {
	var schema anthropic.ToolInputSchemaParam
	if len(raw) == 0 {
		return schema
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return anthropic.ToolInputSchemaParam{}
	}
	return schema
}
