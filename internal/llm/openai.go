package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OpenAIClient implements Client over the OpenAI chat completions API and
// any compatible endpoint reachable through a base URL override.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
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
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client}
}

func (c *OpenAIClient) Chat(ctx context.Context, params ChatParams) (<-chan StreamEvent, error) {
	req := openai.ChatCompletionNewParams{
		Model:    params.Model,
		Messages: toOpenAIMessages(params),
	}
	if params.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(params.MaxTokens))
	}
	for _, t := range params.Tools {
		req.Tools = append(req.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(schemaToMap(t.Parameters)),
		}))
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, req)

	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)
		defer stream.Close()
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.Delta.Content != "" {
				if !sendEvent(ctx, ch, StreamEvent{Type: StreamText, Text: choice.Delta.Content}) {
					return
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				ev := StreamEvent{
					Type:          StreamToolCallDelta,
					ToolCallIndex: int(tc.Index),
					ToolCallID:    tc.ID,
					ToolCallName:  tc.Function.Name,
					ToolCallArgs:  tc.Function.Arguments,
				}
				if !sendEvent(ctx, ch, ev) {
					return
				}
			}
			if chunk.Usage.TotalTokens > 0 {
				ev := StreamEvent{Type: StreamUsage, Usage: &Usage{
					InputTokens:  int(chunk.Usage.PromptTokens),
					OutputTokens: int(chunk.Usage.CompletionTokens),
				}}
				if !sendEvent(ctx, ch, ev) {
					return
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

// toOpenAIMessages maps the shared model into the SDK's message unions.
// Developer turns travel as user messages; tool errors replace tool output.
func toOpenAIMessages(params ChatParams) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(params.Messages)+1)
	if params.System != "" {
		out = append(out, openai.SystemMessage(params.System))
	}
	for i := range params.Messages {
		m := params.Messages[i]
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "developer", "user":
			out = append(out, openai.UserMessage(m.Content))
		case "assistant":
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = param.NewOpt(m.Content)
			}
			for _, call := range m.ToolCalls {
				id := call.ID
				if id == "" {
					id = uuid.NewString()
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: id,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Function.Name,
							Arguments: call.Function.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case "tool":
			toolMsg := openai.ChatCompletionToolMessageParam{ToolCallID: m.ToolCallID}
			toolMsg.Content.OfString = param.NewOpt(m.EffectiveContent())
			out = append(out, openai.ChatCompletionMessageParamUnion{OfTool: &toolMsg})
		}
	}
	return out
}

// schemaToMap decodes a JSON Schema document, degrading to an empty schema
// when the document is missing or malformed.
func schemaToMap(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}
