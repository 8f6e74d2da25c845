package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/internal/events"
	"github.com/agentwire/agentwire/internal/message"
)

// recorder captures the order of OnEvent and typed handler invocations.
type recorder struct {
	raw      []events.Event
	typed    []string
	contents []*events.TextMessageContentEvent

	newMessages     []message.Message
	initialized     int
	finalized       int
	messagesChanged int
}

func (r *recorder) OnEvent(ev events.Event) { r.raw = append(r.raw, ev) }

func (r *recorder) OnRunStarted(*events.RunStartedEvent)   { r.typed = append(r.typed, "runStarted") }
func (r *recorder) OnRunFinished(*events.RunFinishedEvent) { r.typed = append(r.typed, "runFinished") }
func (r *recorder) OnRunError(*events.RunErrorEvent)       { r.typed = append(r.typed, "runError") }
func (r *recorder) OnStepStarted(*events.StepStartedEvent) { r.typed = append(r.typed, "stepStarted") }
func (r *recorder) OnStepFinished(*events.StepFinishedEvent) {
	r.typed = append(r.typed, "stepFinished")
}
func (r *recorder) OnTextMessageStart(*events.TextMessageStartEvent) {
	r.typed = append(r.typed, "textStart")
}
func (r *recorder) OnTextMessageContent(ev *events.TextMessageContentEvent) {
	r.typed = append(r.typed, "textContent")
	r.contents = append(r.contents, ev)
}
func (r *recorder) OnTextMessageEnd(*events.TextMessageEndEvent) {
	r.typed = append(r.typed, "textEnd")
}
func (r *recorder) OnToolCallStart(*events.ToolCallStartEvent) {
	r.typed = append(r.typed, "toolStart")
}
func (r *recorder) OnToolCallArgs(*events.ToolCallArgsEvent) { r.typed = append(r.typed, "toolArgs") }
func (r *recorder) OnToolCallEnd(*events.ToolCallEndEvent)   { r.typed = append(r.typed, "toolEnd") }
func (r *recorder) OnToolCallResult(*events.ToolCallResultEvent) {
	r.typed = append(r.typed, "toolResult")
}
func (r *recorder) OnMessagesSnapshot(*events.MessagesSnapshotEvent) {
	r.typed = append(r.typed, "messagesSnapshot")
}
func (r *recorder) OnStateSnapshot(*events.StateSnapshotEvent) {
	r.typed = append(r.typed, "stateSnapshot")
}
func (r *recorder) OnStateDelta(*events.StateDeltaEvent) { r.typed = append(r.typed, "stateDelta") }
func (r *recorder) OnRaw(*events.RawEvent)               { r.typed = append(r.typed, "raw") }
func (r *recorder) OnCustom(*events.CustomEvent)         { r.typed = append(r.typed, "custom") }

func (r *recorder) OnRunInitialized(SubscriberParams)     { r.initialized++ }
func (r *recorder) OnRunFinalized(SubscriberParams)       { r.finalized++ }
func (r *recorder) OnNewMessage(msg *message.Message)     { r.newMessages = append(r.newMessages, *msg) }
func (r *recorder) OnMessagesChanged(SubscriberParams)    { r.messagesChanged++ }

func (r *recorder) eventTypes() []events.EventType {
	out := make([]events.EventType, len(r.raw))
	for i, ev := range r.raw {
		out[i] = ev.Type()
	}
	return out
}

func TestDispatchEveryTypeHitsOneHandler(t *testing.T) {
	cases := []struct {
		ev      events.Event
		handler string
	}{
		{events.NewRunStarted("t", "r"), "runStarted"},
		{events.NewRunFinished("t", "r"), "runFinished"},
		{events.NewRunError("x"), "runError"},
		{events.NewStepStarted("s"), "stepStarted"},
		{events.NewStepFinished("s"), "stepFinished"},
		{events.NewTextMessageStart("m", "assistant"), "textStart"},
		{events.NewTextMessageContent("m", "d"), "textContent"},
		{events.NewTextMessageEnd("m"), "textEnd"},
		{events.NewToolCallStart("c", "n", "m"), "toolStart"},
		{events.NewToolCallArgs("c", "{}"), "toolArgs"},
		{events.NewToolCallEnd("c"), "toolEnd"},
		{events.NewToolCallResult("c", "m", "ok"), "toolResult"},
		{events.NewMessagesSnapshot(nil), "messagesSnapshot"},
		{events.NewStateSnapshot(nil), "stateSnapshot"},
		{events.NewStateDelta(nil), "stateDelta"},
		{events.NewRaw(nil, ""), "raw"},
		{events.NewCustom("n", nil), "custom"},
	}
	for _, tc := range cases {
		rec := &recorder{}
		Dispatch(tc.ev, rec)
		require.Len(t, rec.raw, 1, "OnEvent for %s", tc.ev.Type())
		assert.Same(t, tc.ev, rec.raw[0])
		require.Equal(t, []string{tc.handler}, rec.typed, "handler for %s", tc.ev.Type())
	}
}

func TestDispatchRewritesChunkToContent(t *testing.T) {
	chunk := events.NewTextMessageChunk("msg-1", "hel")
	chunk.RawEvent = map[string]any{"origin": "provider"}

	rec := &recorder{}
	Dispatch(chunk, rec)

	// OnEvent sees the original chunk.
	require.Len(t, rec.raw, 1)
	assert.Equal(t, events.EventTypeTextMessageChunk, rec.raw[0].Type())

	// The typed path sees a content rewrite with the chunk's fields.
	require.Len(t, rec.contents, 1)
	content := rec.contents[0]
	assert.Equal(t, events.EventTypeTextMessageContent, content.Type())
	assert.Equal(t, "msg-1", content.MessageID)
	assert.Equal(t, "hel", content.Delta)
	assert.Equal(t, chunk.Timestamp, content.Timestamp)
	assert.Equal(t, chunk.RawEvent, content.RawEvent)
}

func TestDispatchPanicsOnUnknownType(t *testing.T) {
	assert.Panics(t, func() {
		Dispatch(nil, &recorder{})
	})
}
