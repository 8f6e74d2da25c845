// Package agent implements the run lifecycle: agents execute asynchronously
// against a frozen input, emit protocol events through an ordering-aware
// emitter, and report completion through a RunHandle future.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/agentwire/agentwire/internal/events"
	"github.com/agentwire/agentwire/internal/message"
)

// ErrRunInProgress is returned when RunAgent is called while a previous run
// on the same agent has not finished.
var ErrRunInProgress = errors.New("agent: run already in progress")

// ErrNilSubscriber is returned when RunAgent is called without a subscriber.
var ErrNilSubscriber = errors.New("agent: subscriber is required")

// Agent executes runs. RunAgent returns once the run is launched; progress
// arrives on the subscriber and completion on the handle.
type Agent interface {
	// ID returns the agent's stable identifier.
	ID() string
	// RunAgent starts a run. It fails fast on configuration errors
	// (nil subscriber, run already active); errors inside the run surface
	// as a RUN_ERROR event and through the handle instead.
	RunAgent(ctx context.Context, params RunParams, sub Subscriber) (*RunHandle, error)
}

// Base carries the mutable conversation state shared by agent
// implementations: thread identity, message history, and opaque state.
// All accessors are safe for concurrent use.
type Base struct {
	agentID      string
	instructions string

	mu       sync.Mutex
	threadID string
	state    map[string]any
	messages []message.Message

	running atomic.Bool
}

// NewBase constructs the shared core. A missing threadID is generated.
func NewBase(agentID, threadID, instructions string, initial []message.Message) *Base {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	b := &Base{
		agentID:      agentID,
		instructions: instructions,
		threadID:     threadID,
		state:        map[string]any{},
	}
	for _, m := range initial {
		m.EnsureID()
		b.messages = append(b.messages, m)
	}
	return b
}

func (b *Base) ID() string           { return b.agentID }
func (b *Base) Instructions() string { return b.instructions }

func (b *Base) ThreadID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.threadID
}

func (b *Base) SetThreadID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.threadID = id
}

// State returns a shallow copy of the agent's state map.
func (b *Base) State() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]any, len(b.state))
	for k, v := range b.state {
		out[k] = v
	}
	return out
}

func (b *Base) SetState(state map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == nil {
		state = map[string]any{}
	}
	b.state = state
}

// Messages returns a copy of the history.
func (b *Base) Messages() []message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]message.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *Base) SetMessages(msgs []message.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = b.messages[:0]
	for _, m := range msgs {
		m.EnsureID()
		b.messages = append(b.messages, m)
	}
}

// AddMessage appends one message, assigning an id if it has none, and
// returns the stored copy.
func (b *Base) AddMessage(m message.Message) message.Message {
	m.EnsureID()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, m)
	return m
}

// acquireRun claims the single-run slot. The caller must releaseRun when the
// run completes.
func (b *Base) acquireRun() bool {
	return b.running.CompareAndSwap(false, true)
}

func (b *Base) releaseRun() {
	b.running.Store(false)
}

// buildInput freezes the run's view of the world. Messages supplied in
// params join the history first.
func (b *Base) buildInput(params RunParams) *RunInput {
	for _, m := range params.Messages {
		b.AddMessage(m)
	}
	runID := params.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &RunInput{
		ThreadID:       b.ThreadID(),
		RunID:          runID,
		State:          b.State(),
		Messages:       b.Messages(),
		Tools:          params.Tools,
		Context:        params.Context,
		ForwardedProps: params.ForwardedProps,
	}
}

// runBody is an agent's event-producing core. It must emit RUN_STARTED
// first and, on the success path, RUN_FINISHED last. A returned error is
// turned into RUN_ERROR by the launcher when the body has not already
// terminated the stream.
type runBody func(ctx context.Context, input *RunInput, em *Emitter, handle *RunHandle) error

// launch runs body on its own goroutine with the lifecycle plumbing every
// agent shares: OnRunInitialized before, OnRunFinalized exactly once after,
// panic containment, error-to-RUN_ERROR conversion, and handle completion.
func (b *Base) launch(ctx context.Context, self Agent, input *RunInput, sub Subscriber, body runBody) *RunHandle {
	handle := newRunHandle()
	em := NewEmitter(sub)

	go func() {
		snapshot := func() SubscriberParams {
			return SubscriberParams{
				Messages: b.Messages(),
				State:    b.State(),
				Agent:    self,
				Input:    input,
			}
		}

		sub.OnRunInitialized(snapshot())

		var runErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					runErr = fmt.Errorf("agent %s run %s panicked: %v", b.agentID, input.RunID, r)
					slog.Error("run panicked", "agent", b.agentID, "run_id", input.RunID, "panic", r)
				}
			}()
			runErr = body(ctx, input, em, handle)
		}()

		if runErr != nil && !em.Terminal() {
			em.Emit(events.NewRunError(runErr.Error()))
		}

		b.releaseRun()
		sub.OnRunFinalized(snapshot())
		handle.finish(runErr)
	}()

	return handle
}
