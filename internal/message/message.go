// Package message holds the provider-agnostic conversation model that every
// integration maps into: role-tagged messages, tool calls, and tool
// definitions offered to the model.
package message

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one conversation turn. Role-specific fields are optional:
// assistant messages may carry ToolCalls, tool messages carry ToolCallID
// and optionally Error. When Error is set on a tool message it supersedes
// Content wherever the message is forwarded to a provider.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Name       string     `json:"name,omitempty"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ToolCall is a structured request by the model to invoke a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its raw JSON argument text.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallTypeFunction is the only tool call type the protocol defines.
const ToolCallTypeFunction = "function"

// EnsureID assigns a generated id if the message has none and returns the
// id in effect. Once assigned the id never changes.
func (m *Message) EnsureID() string {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m.ID
}

// EffectiveContent returns the text a provider should see: for tool
// messages the error, when present, wins over regular content.
func (m *Message) EffectiveContent() string {
	if m.Role == RoleTool && m.Error != "" {
		return m.Error
	}
	return m.Content
}

// ToolDefinition describes a tool offered to the model for one run.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ContextItem is one entry of caller-supplied run context.
type ContextItem struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// Helper constructors

func User(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: text}
}

func System(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleSystem, Content: text}
}

func Developer(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleDeveloper, Content: text}
}

func Assistant(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: text}
}

func AssistantToolCalls(text string, calls []ToolCall) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: text, ToolCalls: calls}
}

func ToolResult(toolCallID, content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

func ToolError(toolCallID, errText string) Message {
	return Message{ID: uuid.NewString(), Role: RoleTool, ToolCallID: toolCallID, Error: errText}
}
