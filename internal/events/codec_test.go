package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRunStartedShape(t *testing.T) {
	ev := NewRunStarted("thread-1", "run-1")
	data, err := Encode(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "RUN_STARTED", m["type"])
	assert.Equal(t, "thread-1", m["threadId"])
	assert.Equal(t, "run-1", m["runId"])
	assert.Contains(t, m, "timestamp")
}

func TestEncodeOmitsEmptyEnvelopeFields(t *testing.T) {
	ev := NewTextMessageContent("msg-1", "hello")
	ev.Timestamp = nil

	data, err := Encode(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "timestamp")
	assert.NotContains(t, m, "rawEvent")
	assert.Equal(t, "hello", m["delta"])
}

func TestEncodeRunErrorUsesErrorKey(t *testing.T) {
	data, err := Encode(NewRunError("provider exploded"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "provider exploded", m["error"])
}

func TestDecodeRoundTrip(t *testing.T) {
	original := NewToolCallStart("call-1", "lookup", "msg-1")
	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	start, ok := decoded.(*ToolCallStartEvent)
	require.True(t, ok)
	assert.Equal(t, "call-1", start.ToolCallID)
	assert.Equal(t, "lookup", start.ToolCallName)
	assert.Equal(t, "msg-1", start.ParentMessageID)
	assert.Equal(t, EventTypeToolCallStart, start.Type())
}

func TestDecodeEveryType(t *testing.T) {
	all := []Event{
		NewRunStarted("t", "r"),
		NewRunFinished("t", "r"),
		NewRunError("boom"),
		NewStepStarted("plan"),
		NewStepFinished("plan"),
		NewTextMessageStart("m", "assistant"),
		NewTextMessageContent("m", "d"),
		NewTextMessageChunk("m", "d"),
		NewTextMessageEnd("m"),
		NewToolCallStart("c", "n", "m"),
		NewToolCallArgs("c", "{}"),
		NewToolCallEnd("c"),
		NewToolCallResult("c", "m", "ok"),
		NewMessagesSnapshot(nil),
		NewStateSnapshot(map[string]any{"k": "v"}),
		NewStateDelta([]JSONPatchOperation{{Op: "add", Path: "/k", Value: 1}}),
		NewRaw(map[string]any{"x": 1}, "provider"),
		NewCustom("ping", nil),
	}
	for _, ev := range all {
		data, err := Encode(ev)
		require.NoError(t, err)
		decoded, err := Decode(data)
		require.NoError(t, err, "type %s", ev.Type())
		assert.Equal(t, ev.Type(), decoded.Type())
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"NOT_A_THING"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_A_THING")
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{`))
	require.Error(t, err)
}
