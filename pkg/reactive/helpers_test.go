package reactive

import (
	"io"
	"log/slog"
	"testing"
)

// recorder collects the values delivered to a subscriber.
type recorder[T any] struct {
	values []T
}

func (r *recorder[T]) record(v T) {
	r.values = append(r.values, v)
}

func (r *recorder[T]) count() int {
	return len(r.values)
}

func (r *recorder[T]) last() T {
	var zero T
	if len(r.values) == 0 {
		return zero
	}
	return r.values[len(r.values)-1]
}

// eventLog is an Observer that keeps every event.
type eventLog struct {
	events []Event
}

func (l *eventLog) Observe(e Event) {
	l.events = append(l.events, e)
}

func (l *eventLog) count(t EventType) int {
	n := 0
	for _, e := range l.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (l *eventLog) find(t EventType) (Event, bool) {
	for _, e := range l.events {
		if e.Type == t {
			return e, true
		}
	}
	return Event{}, false
}

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRuntime(append([]Option{WithLogger(logger)}, opts...)...)
}

func mustScalar[T comparable](t *testing.T, rt *Runtime, v T) *Scalar[T] {
	t.Helper()
	s, err := NewScalar(rt, v)
	if err != nil {
		t.Fatalf("NewScalar(%v): %v", v, err)
	}
	return s
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
