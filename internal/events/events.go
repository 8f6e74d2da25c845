// Package events defines the protocol event taxonomy emitted by agents
// toward subscribers: run lifecycle, streaming text messages, tool calls,
// state synchronization, and pass-through payloads. Every event shares the
// {type, timestamp?, rawEvent?} envelope and serializes to a single tagged
// JSON object.
package events

import (
	"time"

	"github.com/agentwire/agentwire/internal/message"
)

// EventType discriminates the concrete event kind on the wire.
type EventType string

const (
	EventTypeRunStarted         EventType = "RUN_STARTED"
	EventTypeRunFinished        EventType = "RUN_FINISHED"
	EventTypeRunError           EventType = "RUN_ERROR"
	EventTypeStepStarted        EventType = "STEP_STARTED"
	EventTypeStepFinished       EventType = "STEP_FINISHED"
	EventTypeTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTypeTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTypeTextMessageChunk   EventType = "TEXT_MESSAGE_CHUNK"
	EventTypeTextMessageEnd     EventType = "TEXT_MESSAGE_END"
	EventTypeToolCallStart      EventType = "TOOL_CALL_START"
	EventTypeToolCallArgs       EventType = "TOOL_CALL_ARGS"
	EventTypeToolCallEnd        EventType = "TOOL_CALL_END"
	EventTypeToolCallResult     EventType = "TOOL_CALL_RESULT"
	EventTypeMessagesSnapshot   EventType = "MESSAGES_SNAPSHOT"
	EventTypeStateSnapshot      EventType = "STATE_SNAPSHOT"
	EventTypeStateDelta         EventType = "STATE_DELTA"
	EventTypeRaw                EventType = "RAW"
	EventTypeCustom             EventType = "CUSTOM"
)

// Event is the closed sum of protocol events. Concrete types live in this
// package only; dispatchers switch exhaustively over them.
type Event interface {
	Type() EventType
	// Base returns the shared envelope for timestamp/rawEvent access.
	Base() *BaseEvent
}

// BaseEvent is the envelope embedded by every concrete event.
// Timestamp is unix milliseconds; nil means the producer did not stamp it.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Timestamp *int64    `json:"timestamp,omitempty"`
	RawEvent  any       `json:"rawEvent,omitempty"`
}

func (b *BaseEvent) Type() EventType  { return b.EventType }
func (b *BaseEvent) Base() *BaseEvent { return b }

func newBase(t EventType) BaseEvent {
	ms := time.Now().UnixMilli()
	return BaseEvent{EventType: t, Timestamp: &ms}
}

// RunStartedEvent signals that a run has begun.
type RunStartedEvent struct {
	BaseEvent
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

// RunFinishedEvent signals successful run completion. It is the last event
// of a successful run.
type RunFinishedEvent struct {
	BaseEvent
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

// RunErrorEvent terminates a run with an error. No further events for the
// run are valid after it.
type RunErrorEvent struct {
	BaseEvent
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// StepStartedEvent opens a named step inside a run.
type StepStartedEvent struct {
	BaseEvent
	StepName string `json:"stepName"`
}

// StepFinishedEvent closes a named step.
type StepFinishedEvent struct {
	BaseEvent
	StepName string `json:"stepName"`
}

// TextMessageStartEvent opens a streaming text message.
type TextMessageStartEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
}

// TextMessageContentEvent carries one streamed content delta.
type TextMessageContentEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
	Delta     string `json:"delta"`
}

// TextMessageChunkEvent is the provider-near form of a content delta.
// Subscribers never observe it through a typed handler; the dispatcher
// rewrites it into a TextMessageContentEvent first.
type TextMessageChunkEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
	Delta     string `json:"delta"`
}

// TextMessageEndEvent closes a streaming text message.
type TextMessageEndEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
}

// ToolCallStartEvent opens a tool call. ParentMessageID binds the call to
// the assistant message that requested it.
type ToolCallStartEvent struct {
	BaseEvent
	ToolCallID      string `json:"toolCallId"`
	ToolCallName    string `json:"toolCallName"`
	ParentMessageID string `json:"parentMessageId,omitempty"`
}

// ToolCallArgsEvent carries a fragment of the tool call's argument text.
type ToolCallArgsEvent struct {
	BaseEvent
	ToolCallID string `json:"toolCallId"`
	Delta      string `json:"delta"`
}

// ToolCallEndEvent closes a tool call's argument stream.
type ToolCallEndEvent struct {
	BaseEvent
	ToolCallID string `json:"toolCallId"`
}

// ToolCallResultEvent reports the result of executing a tool call.
type ToolCallResultEvent struct {
	BaseEvent
	ToolCallID string `json:"toolCallId"`
	MessageID  string `json:"messageId"`
	Content    string `json:"content"`
	Role       string `json:"role,omitempty"`
}

// MessagesSnapshotEvent carries the full message history.
type MessagesSnapshotEvent struct {
	BaseEvent
	Messages []message.Message `json:"messages"`
}

// StateSnapshotEvent carries a complete opaque state snapshot.
type StateSnapshotEvent struct {
	BaseEvent
	Snapshot map[string]any `json:"snapshot"`
}

// JSONPatchOperation is one RFC 6902 operation of a state delta.
type JSONPatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// StateDeltaEvent carries incremental state changes as a JSON Patch.
// The core transports the patch; applying it is the consumer's job.
type StateDeltaEvent struct {
	BaseEvent
	Delta []JSONPatchOperation `json:"delta"`
}

// RawEvent passes an external payload through unmodified.
type RawEvent struct {
	BaseEvent
	Event  any    `json:"event"`
	Source string `json:"source,omitempty"`
}

// CustomEvent carries an implementation-defined named payload.
type CustomEvent struct {
	BaseEvent
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

// Constructors. Integrations use these instead of struct literals so every
// event leaves with a well-formed envelope.

func NewRunStarted(threadID, runID string) *RunStartedEvent {
	return &RunStartedEvent{BaseEvent: newBase(EventTypeRunStarted), ThreadID: threadID, RunID: runID}
}

func NewRunFinished(threadID, runID string) *RunFinishedEvent {
	return &RunFinishedEvent{BaseEvent: newBase(EventTypeRunFinished), ThreadID: threadID, RunID: runID}
}

func NewRunError(message string) *RunErrorEvent {
	return &RunErrorEvent{BaseEvent: newBase(EventTypeRunError), Message: message}
}

func NewStepStarted(stepName string) *StepStartedEvent {
	return &StepStartedEvent{BaseEvent: newBase(EventTypeStepStarted), StepName: stepName}
}

func NewStepFinished(stepName string) *StepFinishedEvent {
	return &StepFinishedEvent{BaseEvent: newBase(EventTypeStepFinished), StepName: stepName}
}

func NewTextMessageStart(messageID, role string) *TextMessageStartEvent {
	return &TextMessageStartEvent{BaseEvent: newBase(EventTypeTextMessageStart), MessageID: messageID, Role: role}
}

func NewTextMessageContent(messageID, delta string) *TextMessageContentEvent {
	return &TextMessageContentEvent{BaseEvent: newBase(EventTypeTextMessageContent), MessageID: messageID, Delta: delta}
}

func NewTextMessageChunk(messageID, delta string) *TextMessageChunkEvent {
	return &TextMessageChunkEvent{BaseEvent: newBase(EventTypeTextMessageChunk), MessageID: messageID, Delta: delta}
}

func NewTextMessageEnd(messageID string) *TextMessageEndEvent {
	return &TextMessageEndEvent{BaseEvent: newBase(EventTypeTextMessageEnd), MessageID: messageID}
}

func NewToolCallStart(toolCallID, toolCallName, parentMessageID string) *ToolCallStartEvent {
	return &ToolCallStartEvent{
		BaseEvent:       newBase(EventTypeToolCallStart),
		ToolCallID:      toolCallID,
		ToolCallName:    toolCallName,
		ParentMessageID: parentMessageID,
	}
}

func NewToolCallArgs(toolCallID, delta string) *ToolCallArgsEvent {
	return &ToolCallArgsEvent{BaseEvent: newBase(EventTypeToolCallArgs), ToolCallID: toolCallID, Delta: delta}
}

func NewToolCallEnd(toolCallID string) *ToolCallEndEvent {
	return &ToolCallEndEvent{BaseEvent: newBase(EventTypeToolCallEnd), ToolCallID: toolCallID}
}

func NewToolCallResult(toolCallID, messageID, content string) *ToolCallResultEvent {
	return &ToolCallResultEvent{
		BaseEvent:  newBase(EventTypeToolCallResult),
		ToolCallID: toolCallID,
		MessageID:  messageID,
		Content:    content,
		Role:       string(message.RoleTool),
	}
}

func NewMessagesSnapshot(messages []message.Message) *MessagesSnapshotEvent {
	return &MessagesSnapshotEvent{BaseEvent: newBase(EventTypeMessagesSnapshot), Messages: messages}
}

func NewStateSnapshot(snapshot map[string]any) *StateSnapshotEvent {
	return &StateSnapshotEvent{BaseEvent: newBase(EventTypeStateSnapshot), Snapshot: snapshot}
}

func NewStateDelta(ops []JSONPatchOperation) *StateDeltaEvent {
	return &StateDeltaEvent{BaseEvent: newBase(EventTypeStateDelta), Delta: ops}
}

func NewRaw(payload any, source string) *RawEvent {
	return &RawEvent{BaseEvent: newBase(EventTypeRaw), Event: payload, Source: source}
}

func NewCustom(name string, value any) *CustomEvent {
	return &CustomEvent{BaseEvent: newBase(EventTypeCustom), Name: name, Value: value}
}
