package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/internal/events"
)

func TestEmitterDefersToolCallsBehindOpenMessage(t *testing.T) {
	rec := &recorder{}
	em := NewEmitter(rec)

	em.Emit(events.NewRunStarted("t", "r"))
	em.Emit(events.NewTextMessageStart("m1", "assistant"))
	em.Emit(events.NewTextMessageContent("m1", "thinking"))
	em.Emit(events.NewToolCallStart("c1", "lookup", "m1"))
	em.Emit(events.NewToolCallArgs("c1", `{"q":`))
	em.Emit(events.NewToolCallArgs("c1", `"x"}`))
	em.Emit(events.NewToolCallEnd("c1"))
	em.Emit(events.NewTextMessageEnd("m1"))
	em.Emit(events.NewRunFinished("t", "r"))

	require.Equal(t, []events.EventType{
		events.EventTypeRunStarted,
		events.EventTypeTextMessageStart,
		events.EventTypeTextMessageContent,
		events.EventTypeTextMessageEnd,
		events.EventTypeToolCallStart,
		events.EventTypeToolCallArgs,
		events.EventTypeToolCallArgs,
		events.EventTypeToolCallEnd,
		events.EventTypeRunFinished,
	}, rec.eventTypes())
}

func TestEmitterPassesToolCallsThroughWhenNoMessageOpen(t *testing.T) {
	rec := &recorder{}
	em := NewEmitter(rec)

	em.Emit(events.NewRunStarted("t", "r"))
	em.Emit(events.NewToolCallStart("c1", "lookup", ""))
	em.Emit(events.NewToolCallArgs("c1", "{}"))
	em.Emit(events.NewToolCallEnd("c1"))
	em.Emit(events.NewRunFinished("t", "r"))

	require.Equal(t, []events.EventType{
		events.EventTypeRunStarted,
		events.EventTypeToolCallStart,
		events.EventTypeToolCallArgs,
		events.EventTypeToolCallEnd,
		events.EventTypeRunFinished,
	}, rec.eventTypes())
}

func TestEmitterDropsEventsAfterTerminal(t *testing.T) {
	rec := &recorder{}
	em := NewEmitter(rec)

	em.Emit(events.NewRunStarted("t", "r"))
	em.Emit(events.NewRunFinished("t", "r"))
	em.Emit(events.NewTextMessageContent("m1", "late"))
	em.Emit(events.NewRunError("also late"))

	assert.True(t, em.Terminal())
	require.Equal(t, []events.EventType{
		events.EventTypeRunStarted,
		events.EventTypeRunFinished,
	}, rec.eventTypes())
}

func TestEmitterDiscardsDeferredOnErrorWithOpenMessage(t *testing.T) {
	rec := &recorder{}
	em := NewEmitter(rec)

	em.Emit(events.NewRunStarted("t", "r"))
	em.Emit(events.NewTextMessageStart("m1", "assistant"))
	em.Emit(events.NewToolCallStart("c1", "lookup", "m1"))
	em.Emit(events.NewRunError("stream died"))

	require.Equal(t, []events.EventType{
		events.EventTypeRunStarted,
		events.EventTypeTextMessageStart,
		events.EventTypeRunError,
	}, rec.eventTypes())
}

func TestEmitterReopenedMessageDefersAgain(t *testing.T) {
	rec := &recorder{}
	em := NewEmitter(rec)

	em.Emit(events.NewTextMessageStart("m1", "assistant"))
	em.Emit(events.NewToolCallStart("c1", "a", "m1"))
	em.Emit(events.NewTextMessageEnd("m1"))
	em.Emit(events.NewTextMessageStart("m2", "assistant"))
	em.Emit(events.NewToolCallStart("c2", "b", "m2"))
	em.Emit(events.NewTextMessageEnd("m2"))

	require.Equal(t, []events.EventType{
		events.EventTypeTextMessageStart,
		events.EventTypeTextMessageEnd,
		events.EventTypeToolCallStart,
		events.EventTypeTextMessageStart,
		events.EventTypeTextMessageEnd,
		events.EventTypeToolCallStart,
	}, rec.eventTypes())
}
