// Package llm abstracts streaming chat providers behind a single Client
// interface. Adapters translate the shared message model into each vendor
// SDK and normalize vendor stream events into StreamEvent values.
package llm

import (
	"context"
	"fmt"

	"github.com/agentwire/agentwire/internal/message"
)

// Stream event types.
const (
	StreamText          = "text_delta"
	StreamToolCallDelta = "tool_call_delta"
	StreamUsage         = "usage"
	StreamDone          = "done"
	StreamError         = "error"
)

// StreamEvent is one normalized provider stream item. Type selects which
// fields are meaningful.
type StreamEvent struct {
	Type string

	// StreamText
	Text string

	// StreamToolCallDelta. Index correlates fragments of the same call;
	// ID and Name arrive on the first fragment, Args fragments follow.
	ToolCallIndex int
	ToolCallID    string
	ToolCallName  string
	ToolCallArgs  string

	// StreamUsage
	Usage *Usage

	// StreamError
	Err error
}

// Usage reports token consumption for a completed request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatParams is a provider-agnostic chat request.
type ChatParams struct {
	Model     string
	System    string
	MaxTokens int
	Messages  []message.Message
	Tools     []message.ToolDefinition
}

// Client streams chat completions. The returned channel is closed when the
// stream ends; a StreamError event precedes the close on failure.
type Client interface {
	Chat(ctx context.Context, params ChatParams) (<-chan StreamEvent, error)
}

// sendEvent delivers ev unless ctx ends first, so a producer goroutine never
// stays blocked on a consumer that stopped reading. It reports whether the
// event was delivered.
func sendEvent(ctx context.Context, ch chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// APIError wraps a provider HTTP failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Message)
}
