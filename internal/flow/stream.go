package flow

import (
	"context"
	"sync"

	"github.com/latticelabs/lattice/pkg/domain"
)

// Stream is the ordered, append-only progress channel of a single run.
// The run is the sole writer; one consumer drains it concurrently. It is
// unbounded, so Publish never blocks and a slow or absent consumer cannot
// stall a running step. Close is explicit: consumers can distinguish
// "no event yet" from end-of-stream.
type Stream struct {
	mu     sync.Mutex
	buf    []domain.Event
	closed bool
	notify chan struct{}
}

// NewStream creates an open stream.
func NewStream() *Stream {
	return &Stream{notify: make(chan struct{}, 1)}
}

// Publish appends an event. Events published after Close are dropped.
func (s *Stream) Publish(ev domain.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, ev)
	s.mu.Unlock()
	s.wake()
}

// Close marks the end of the stream. Buffered events remain readable;
// Next reports ok=false once they are drained. Close is idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *Stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the stream is closed and
// drained (ok=false), or ctx is canceled (ok=false).
func (s *Stream) Next(ctx context.Context) (domain.Event, bool) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			ev := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return ev, true
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return domain.Event{}, false
		}

		select {
		case <-ctx.Done():
			return domain.Event{}, false
		case <-s.notify:
		}
	}
}

// Drain collects every remaining event until end-of-stream or ctx cancel.
func (s *Stream) Drain(ctx context.Context) []domain.Event {
	var events []domain.Event
	for {
		ev, ok := s.Next(ctx)
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}
