package agent

import (
	"context"
	"sync"
	"sync/atomic"
)

// RunHandle tracks one in-flight run. It completes exactly once, either with
// nil on success or the error that ended the run. Cancel is advisory: the
// run observes the flag between stream chunks and winds down cooperatively.
type RunHandle struct {
	done      chan struct{}
	once      sync.Once
	err       error
	cancelled atomic.Bool
}

func newRunHandle() *RunHandle {
	return &RunHandle{done: make(chan struct{})}
}

// Done returns a channel closed when the run has fully finished.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Err returns the run's outcome. Only meaningful after Done is closed.
func (h *RunHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the run finishes or ctx expires.
func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel requests cooperative cancellation. Safe to call multiple times and
// after completion.
func (h *RunHandle) Cancel() { h.cancelled.Store(true) }

// Cancelled reports whether cancellation has been requested.
func (h *RunHandle) Cancelled() bool { return h.cancelled.Load() }

func (h *RunHandle) finish(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}
