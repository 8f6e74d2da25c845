package agent

import (
	"log/slog"

	"github.com/agentwire/agentwire/internal/events"
)

// DeferredBuffer holds tool-call events generated while a text message is
// still streaming. Flush replays them in arrival order.
type DeferredBuffer struct {
	pending []events.Event
}

func (b *DeferredBuffer) Append(ev events.Event) {
	b.pending = append(b.pending, ev)
}

func (b *DeferredBuffer) Len() int { return len(b.pending) }

// Flush hands each buffered event to fn in FIFO order and empties the buffer.
func (b *DeferredBuffer) Flush(fn func(events.Event)) {
	for _, ev := range b.pending {
		fn(ev)
	}
	b.pending = nil
}

// Emitter serializes one run's event stream toward a subscriber. It enforces
// the ordering rules the wire protocol requires: tool-call events raised
// while a text message is open are deferred until the message closes, and
// nothing is delivered after a terminal event.
//
// An Emitter is owned by a single run goroutine and is not safe for
// concurrent use.
type Emitter struct {
	sub      Subscriber
	deferred DeferredBuffer

	openMessageID string
	terminal      bool
}

func NewEmitter(sub Subscriber) *Emitter {
	return &Emitter{sub: sub}
}

// Terminal reports whether a RUN_FINISHED or RUN_ERROR has been emitted.
func (e *Emitter) Terminal() bool { return e.terminal }

// Subscriber returns the subscriber this emitter delivers to.
func (e *Emitter) Subscriber() Subscriber { return e.sub }

// Emit delivers ev, applying deferral and terminal-latch rules.
func (e *Emitter) Emit(ev events.Event) {
	if e.terminal {
		slog.Warn("event after terminal, dropping", "type", ev.Type())
		return
	}

	switch ev := ev.(type) {
	case *events.TextMessageStartEvent:
		e.openMessageID = ev.MessageID

	case *events.TextMessageEndEvent:
		Dispatch(ev, e.sub)
		e.openMessageID = ""
		e.deferred.Flush(func(d events.Event) { Dispatch(d, e.sub) })
		return

	case *events.ToolCallStartEvent, *events.ToolCallArgsEvent,
		*events.ToolCallEndEvent, *events.ToolCallResultEvent:
		if e.openMessageID != "" {
			e.deferred.Append(ev)
			return
		}

	case *events.RunFinishedEvent, *events.RunErrorEvent:
		e.terminal = true
		if n := e.deferred.Len(); n > 0 {
			// Deferred events only flush on message end. A run that
			// terminates with the message still open forfeits them.
			slog.Warn("discarding deferred events at run end", "count", n)
			e.deferred.pending = nil
		}
	}

	Dispatch(ev, e.sub)
}
