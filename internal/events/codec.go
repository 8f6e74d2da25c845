package events

import (
	"encoding/json"
	"fmt"
)

// Encode serializes an event to its wire form: a single JSON object with
// the "type" discriminator and the event's per-type fields.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Type(), err)
	}
	return data, nil
}

// Decode parses a wire frame back into its concrete event type.
// Unknown discriminators are an error; the taxonomy is closed.
func Decode(data []byte) (Event, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	var ev Event
	switch envelope.Type {
	case EventTypeRunStarted:
		ev = &RunStartedEvent{}
	case EventTypeRunFinished:
		ev = &RunFinishedEvent{}
	case EventTypeRunError:
		ev = &RunErrorEvent{}
	case EventTypeStepStarted:
		ev = &StepStartedEvent{}
	case EventTypeStepFinished:
		ev = &StepFinishedEvent{}
	case EventTypeTextMessageStart:
		ev = &TextMessageStartEvent{}
	case EventTypeTextMessageContent:
		ev = &TextMessageContentEvent{}
	case EventTypeTextMessageChunk:
		ev = &TextMessageChunkEvent{}
	case EventTypeTextMessageEnd:
		ev = &TextMessageEndEvent{}
	case EventTypeToolCallStart:
		ev = &ToolCallStartEvent{}
	case EventTypeToolCallArgs:
		ev = &ToolCallArgsEvent{}
	case EventTypeToolCallEnd:
		ev = &ToolCallEndEvent{}
	case EventTypeToolCallResult:
		ev = &ToolCallResultEvent{}
	case EventTypeMessagesSnapshot:
		ev = &MessagesSnapshotEvent{}
	case EventTypeStateSnapshot:
		ev = &StateSnapshotEvent{}
	case EventTypeStateDelta:
		ev = &StateDeltaEvent{}
	case EventTypeRaw:
		ev = &RawEvent{}
	case EventTypeCustom:
		ev = &CustomEvent{}
	default:
		return nil, fmt.Errorf("decode event: unknown type %q", envelope.Type)
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", envelope.Type, err)
	}
	return ev, nil
}
