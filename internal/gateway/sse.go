package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/agentwire/agentwire/internal/agent"
	"github.com/agentwire/agentwire/internal/events"
)

// StreamWriter frames protocol events as server-sent events on an HTTP
// response. Writes are serialized; the run goroutine and the handler may
// both touch it.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	failed  bool
}

func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &StreamWriter{w: w, flusher: flusher}, nil
}

// WriteEvent encodes ev and writes one data frame. After the first write
// failure the writer goes quiet; the client is gone.
func (s *StreamWriter) WriteEvent(ev events.Event) error {
	data, err := events.Encode(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return errors.New("stream closed")
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.failed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamSubscriber forwards every dispatched event to the SSE stream and,
// when a connection manager is attached, to WebSocket observers.
type streamSubscriber struct {
	agent.BaseSubscriber
	writer *StreamWriter
	conns  *ConnManager
}

func (s *streamSubscriber) OnEvent(ev events.Event) {
	if s.writer != nil {
		s.writer.WriteEvent(ev)
	}
	if s.conns != nil {
		s.conns.Broadcast(ev)
	}
}

// BroadcastSubscriber returns a subscriber that only fans events out to
// WebSocket observers. Used for runs without an attached HTTP client,
// such as scheduled runs.
func BroadcastSubscriber(conns *ConnManager) agent.Subscriber {
	return &streamSubscriber{conns: conns}
}
