package agent

import (
	"github.com/agentwire/agentwire/internal/message"
)

// RunParams is the caller-facing input to a single run. Zero values are
// fine everywhere: a missing RunID is generated, and Messages are appended
// to the agent's history before the run starts.
type RunParams struct {
	RunID          string
	Messages       []message.Message
	Tools          []message.ToolDefinition
	Context        []message.ContextItem
	ForwardedProps any
}

// RunInput is the frozen view of everything a run executes against. Agents
// build it once at launch; it does not track later history mutations.
type RunInput struct {
	ThreadID       string
	RunID          string
	State          map[string]any
	Messages       []message.Message
	Tools          []message.ToolDefinition
	Context        []message.ContextItem
	ForwardedProps any
}
