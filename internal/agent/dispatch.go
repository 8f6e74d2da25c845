package agent

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/events"
)

// Dispatch delivers one event to a subscriber: first the catch-all OnEvent,
// then exactly one typed handler. TEXT_MESSAGE_CHUNK has no handler of its
// own; OnEvent sees the original chunk and the typed path receives a
// TEXT_MESSAGE_CONTENT rewrite carrying the same fields.
func Dispatch(ev events.Event, sub Subscriber) {
	sub.OnEvent(ev)

	switch e := ev.(type) {
	case *events.RunStartedEvent:
		sub.OnRunStarted(e)
	case *events.RunFinishedEvent:
		sub.OnRunFinished(e)
	case *events.RunErrorEvent:
		sub.OnRunError(e)
	case *events.StepStartedEvent:
		sub.OnStepStarted(e)
	case *events.StepFinishedEvent:
		sub.OnStepFinished(e)
	case *events.TextMessageStartEvent:
		sub.OnTextMessageStart(e)
	case *events.TextMessageContentEvent:
		sub.OnTextMessageContent(e)
	case *events.TextMessageChunkEvent:
		sub.OnTextMessageContent(chunkToContent(e))
	case *events.TextMessageEndEvent:
		sub.OnTextMessageEnd(e)
	case *events.ToolCallStartEvent:
		sub.OnToolCallStart(e)
	case *events.ToolCallArgsEvent:
		sub.OnToolCallArgs(e)
	case *events.ToolCallEndEvent:
		sub.OnToolCallEnd(e)
	case *events.ToolCallResultEvent:
		sub.OnToolCallResult(e)
	case *events.MessagesSnapshotEvent:
		sub.OnMessagesSnapshot(e)
	case *events.StateSnapshotEvent:
		sub.OnStateSnapshot(e)
	case *events.StateDeltaEvent:
		sub.OnStateDelta(e)
	case *events.RawEvent:
		sub.OnRaw(e)
	case *events.CustomEvent:
		sub.OnCustom(e)
	default:
		// The taxonomy is closed. A type reaching here is a programming
		// error, not a recoverable condition.
		panic(fmt.Sprintf("dispatch: unhandled event type %T", ev))
	}
}

func chunkToContent(e *events.TextMessageChunkEvent) *events.TextMessageContentEvent {
	content := &events.TextMessageContentEvent{
		BaseEvent: events.BaseEvent{
			EventType: events.EventTypeTextMessageContent,
			Timestamp: e.Timestamp,
			RawEvent:  e.RawEvent,
		},
		MessageID: e.MessageID,
		Delta:     e.Delta,
	}
	return content
}
