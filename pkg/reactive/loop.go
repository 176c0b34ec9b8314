package reactive

import (
	"context"
	"errors"
	"runtime/debug"
	"slices"
	"sync"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// Loop confines a Runtime to one goroutine. Other goroutines hand it work
// with Post or Do; Run executes tasks one at a time and drains the deferred
// tier after each, so deferred callbacks always run before the next task.
type Loop struct {
	rt *Runtime

	mu     sync.Mutex
	queue  []func()
	closed bool
	async  []*asyncBatch
	wake   chan struct{}
}

// asyncBatch tracks one BatchAsync call from the moment it is queued until
// its batch is closed, so a loop that stops early can still balance the
// runtime's batch depth.
type asyncBatch struct {
	result chan error

	opened bool
	ended  bool
	opDone bool
	opErr  error
}

// NewLoop creates a loop for rt. Nothing runs until Run is called.
func NewLoop(rt *Runtime) *Loop {
	return &Loop{rt: rt, wake: make(chan struct{}, 1)}
}

// Runtime returns the confined runtime. It may only be used from tasks.
func (l *Loop) Runtime() *Runtime {
	return l.rt
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return loopClosedError("loop is closed")
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.signal()
	return nil
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop goroutine and waits for it to return. A panic in fn
// is returned as a *PanicError. Do must not be called from a task.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan error, 1)
	err := l.Post(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- &PanicError{Value: p, Stack: debug.Stack()}
			}
		}()
		fn()
		done <- nil
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes tasks until ctx is done, or until the loop is closed, its
// queue is empty and no BatchAsync operation is still in flight. A panicking
// task is contained and logged.
//
// Async batches still open when Run returns are closed on the way out, so
// the runtime's batch depth is balanced whenever Run is not running.
func (l *Loop) Run(ctx context.Context) error {
	defer l.endOpenBatches()

	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		idle := l.closed && len(l.async) == 0
		l.mu.Unlock()

		if len(tasks) == 0 {
			if idle {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
			}
			continue
		}
		for _, fn := range tasks {
			if err := ctx.Err(); err != nil {
				return err
			}
			l.rt.protect("task", 0, "", fn)
			l.rt.Drain()
		}
	}
}

// Close stops the loop accepting tasks. Tasks already queued still run, and
// Run keeps going until every in-flight BatchAsync operation has settled.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.signal()
}

// BatchAsync opens a batch on the loop, runs op on its own goroutine and
// closes the batch on the loop once op returns. The returned channel
// receives op's result after that flush; a panic in op arrives as a
// *PanicError.
//
// The batch depth belongs to the runtime, not to op. Writes made by any
// other task while op is running land in the same batch and are flushed
// with it.
//
// If Run returns before op settles, the batch is closed as Run exits and the
// channel receives op's result joined with an error wrapping ErrLoopClosed.
// If Run returns before the batch was even opened, op never runs and the
// channel receives only that error.
func (l *Loop) BatchAsync(ctx context.Context, op func(context.Context) error) <-chan error {
	b := &asyncBatch{result: make(chan error, 1)}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		b.result <- loopClosedError("loop is closed")
		return b.result
	}
	l.async = append(l.async, b)
	l.queue = append(l.queue, func() { l.openBatch(ctx, b, op) })
	l.mu.Unlock()

	l.signal()
	return b.result
}

func (l *Loop) openBatch(ctx context.Context, b *asyncBatch, op func(context.Context) error) {
	l.mu.Lock()
	if b.ended {
		l.mu.Unlock()
		return
	}
	b.opened = true
	l.mu.Unlock()

	l.rt.StartBatch()
	go func() {
		l.settle(b, runOp(ctx, op))
	}()
}

// settle records op's result. While the batch is open, closing it is queued
// on the loop even if the loop no longer accepts new work.
func (l *Loop) settle(b *asyncBatch, opErr error) {
	l.mu.Lock()
	b.opDone, b.opErr = true, opErr
	ended := b.ended
	if !ended {
		l.queue = append(l.queue, func() { l.endBatch(b) })
	}
	l.mu.Unlock()

	if ended {
		b.result <- errors.Join(opErr, loopClosedError("loop stopped before the batch closed"))
		return
	}
	l.signal()
}

// endBatch closes b's batch on the loop goroutine. It runs at most once per
// batch; the result is sent here only if op has already settled.
func (l *Loop) endBatch(b *asyncBatch) {
	l.mu.Lock()
	if b.ended {
		l.mu.Unlock()
		return
	}
	b.ended = true
	l.async = slices.DeleteFunc(l.async, func(a *asyncBatch) bool { return a == b })
	opened, done, opErr := b.opened, b.opDone, b.opErr
	l.mu.Unlock()

	if !opened {
		b.result <- loopClosedError("loop stopped before the batch opened")
		return
	}
	l.rt.closeBatch()
	if done {
		b.result <- opErr
	}
}

func (l *Loop) endOpenBatches() {
	l.mu.Lock()
	open := slices.Clone(l.async)
	l.mu.Unlock()

	for _, b := range open {
		l.endBatch(b)
	}
	if len(open) > 0 {
		l.rt.Drain()
	}
}

func loopClosedError(detail string) error {
	return rerrors.New("R005").WithDetail(detail).Wrap(ErrLoopClosed)
}

func runOp(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return op(ctx)
}
