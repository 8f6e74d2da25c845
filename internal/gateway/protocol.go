package gateway

import "encoding/json"

// Frame is the WebSocket message format for observers.
// Three types: "req" (client→server), "res" (server→client), "event"
// (server→client push carrying an encoded protocol event).
type Frame struct {
	Type    string          `json:"type"`              // "req" | "res" | "event"
	ID      string          `json:"id,omitempty"`      // request/response correlation ID
	Method  string          `json:"method,omitempty"`  // for req: method name
	Params  json.RawMessage `json:"params,omitempty"`  // for req: method parameters
	OK      *bool           `json:"ok,omitempty"`      // for res: success flag
	Payload json.RawMessage `json:"payload,omitempty"` // for res/event: data
	Error   *ErrorPayload   `json:"error,omitempty"`   // for res: error details
	Event   string          `json:"event,omitempty"`   // for event: protocol event type
	Seq     int             `json:"seq,omitempty"`     // for event: sequence number
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectParams is sent by an observer during handshake.
type ConnectParams struct {
	Token string `json:"token"`
}

// Helpers to create response frames.

func ResOK(id string, payload any) Frame {
	data, _ := json.Marshal(payload)
	ok := true
	return Frame{Type: "res", ID: id, OK: &ok, Payload: data}
}

func ResErr(id string, code, message string) Frame {
	ok := false
	return Frame{Type: "res", ID: id, OK: &ok, Error: &ErrorPayload{Code: code, Message: message}}
}

func EventFrame(event string, seq int, payload json.RawMessage) Frame {
	return Frame{Type: "event", Event: event, Seq: seq, Payload: payload}
}
