package llm

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/internal/message"
)

func TestToOpenAIMessagesRoles(t *testing.T) {
	params := ChatParams{
		System: "be terse",
		Messages: []message.Message{
			message.User("hi"),
			message.Developer("note"),
			message.Assistant("hello"),
			message.ToolResult("call-1", "42"),
		},
	}
	out := toOpenAIMessages(params)
	require.Len(t, out, 5)

	assert.NotNil(t, out[0].OfSystem)
	assert.NotNil(t, out[1].OfUser)
	// Developer turns travel as user messages.
	assert.NotNil(t, out[2].OfUser)
	assert.NotNil(t, out[3].OfAssistant)
	require.NotNil(t, out[4].OfTool)
	assert.Equal(t, "call-1", out[4].OfTool.ToolCallID)
}

func TestToOpenAIMessagesAssistantToolCalls(t *testing.T) {
	params := ChatParams{
		Messages: []message.Message{
			message.AssistantToolCalls("", []message.ToolCall{{
				ID:   "call-9",
				Type: message.ToolCallTypeFunction,
				Function: message.FunctionCall{
					Name:      "lookup",
					Arguments: `{"q":"x"}`,
				},
			}}),
		},
	}
	out := toOpenAIMessages(params)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].OfAssistant)
	calls := out[0].OfAssistant.ToolCalls
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].OfFunction)
	assert.Equal(t, "call-9", calls[0].OfFunction.ID)
	assert.Equal(t, "lookup", calls[0].OfFunction.Function.Name)
	assert.Equal(t, `{"q":"x"}`, calls[0].OfFunction.Function.Arguments)
}

func TestToOpenAIMessagesGeneratesToolCallID(t *testing.T) {
	params := ChatParams{
		Messages: []message.Message{
			message.AssistantToolCalls("", []message.ToolCall{{
				Type:     message.ToolCallTypeFunction,
				Function: message.FunctionCall{Name: "lookup", Arguments: "{}"},
			}}),
		},
	}
	out := toOpenAIMessages(params)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].OfAssistant.ToolCalls[0].OfFunction.ID)
}

func TestToOpenAIToolErrorReplacesContent(t *testing.T) {
	failed := message.ToolError("call-1", "lookup failed")
	failed.Content = "stale output"
	out := toOpenAIMessages(ChatParams{Messages: []message.Message{failed}})
	require.Len(t, out, 1)
	require.NotNil(t, out[0].OfTool)
	assert.Equal(t, "lookup failed", out[0].OfTool.Content.OfString.Value)
}

func TestToAnthropicMessagesRolesAndToolResults(t *testing.T) {
	msgs := []message.Message{
		message.User("hi"),
		message.Assistant("hello"),
		message.ToolError("call-1", "boom"),
	}
	out := toAnthropicMessages(msgs)
	require.Len(t, out, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, out[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, out[1].Role)
	// Tool results ride in user turns.
	assert.Equal(t, anthropic.MessageParamRoleUser, out[2].Role)
}

func TestToAnthropicMessagesSkipsEmptyAssistant(t *testing.T) {
	out := toAnthropicMessages([]message.Message{
		message.User("hi"),
		message.Assistant(""),
	})
	require.Len(t, out, 1)
}

func TestSchemaToMapDegrades(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "object"}, schemaToMap(nil))
	assert.Equal(t, map[string]any{"type": "object"}, schemaToMap(json.RawMessage(`not json`)))

	m := schemaToMap(json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`))
	assert.Equal(t, "object", m["type"])
	assert.Contains(t, m, "properties")
}

func TestToAnthropicSchemaDegrades(t *testing.T) {
	schema := toAnthropicSchema(json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`))
	assert.NotNil(t, schema.Properties)

	empty := toAnthropicSchema(json.RawMessage(`broken`))
	assert.Nil(t, empty.Properties)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 429, Message: "rate limited"}
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
