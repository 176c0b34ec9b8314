package reactive

import (
	"iter"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// flusher is a cell as seen by the batch coordinator.
type flusher interface {
	flush()
	isQueued() bool
	setQueued(bool)
}

// batchState is the coordinator: one nesting counter and the cells waiting
// for the counter to return to zero, in the order they were first marked.
type batchState struct {
	depth int
	dirty []flusher
	name  string
}

// StartBatch opens a batch. Batches nest; only closing the outermost one
// flushes.
func (r *Runtime) StartBatch() {
	r.startBatch("")
}

func (r *Runtime) startBatch(name string) {
	r.batch.depth++
	if r.batch.depth == 1 {
		r.batch.name = name
		r.emit(Event{Type: EventBatchStart, Name: name})
	}
}

// EndBatch closes a batch. When the depth returns to zero the dirty set is
// swapped out and every cell in it is flushed in the order it was first
// marked. A cell already flushed by a subscriber's write during that pass is
// not flushed again. EndBatch with no open batch returns an error wrapping
// ErrBatchUnderflow and changes nothing.
func (r *Runtime) EndBatch() error {
	if r.batch.depth == 0 {
		return rerrors.New("R004").
			WithDetail("EndBatch called with no open batch").
			Wrap(ErrBatchUnderflow)
	}
	r.batch.depth--
	if r.batch.depth > 0 {
		return nil
	}
	dirty, name := r.batch.dirty, r.batch.name
	r.batch.dirty, r.batch.name = nil, ""
	flushed := 0
	for _, f := range dirty {
		// A subscriber earlier in this loop may have written f at depth zero,
		// which flushed it already with its latest value.
		if !f.isQueued() {
			continue
		}
		f.flush()
		flushed++
	}
	r.emit(Event{Type: EventBatchEnd, Name: name, Count: flushed})
	return nil
}

// Depth returns the current batch nesting depth.
func (r *Runtime) Depth() int {
	return r.batch.depth
}

// markDirty queues f while a batch is open and flushes it immediately
// otherwise.
func (r *Runtime) markDirty(f flusher) {
	if r.batch.depth == 0 {
		f.flush()
		return
	}
	if f.isQueued() {
		return
	}
	f.setQueued(true)
	r.batch.dirty = append(r.batch.dirty, f)
}

// Batched runs fn inside a batch. The batch is closed on every exit path; a
// panic from fn propagates unchanged after the flush.
//
//	rt.Batched(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//	// subscribers of first and last each ran once
func (r *Runtime) Batched(fn func()) {
	r.StartBatch()
	defer r.closeBatch()
	fn()
}

// BatchedNamed is Batched with a name attached to the batch's events and
// debug logs.
func (r *Runtime) BatchedNamed(name string, fn func()) {
	r.logger.Debug("reactive: batch start", "batch", name, "depth", r.batch.depth+1)
	defer r.logger.Debug("reactive: batch end", "batch", name)
	r.startBatch(name)
	defer r.closeBatch()
	fn()
}

// BatchedValue runs fn inside a batch and returns its results.
func BatchedValue[T any](r *Runtime, fn func() (T, error)) (T, error) {
	r.StartBatch()
	defer r.closeBatch()
	return fn()
}

// BatchedSeq wraps seq so its body runs inside a batch that is flushed at
// every yield, before the value reaches the consumer, and once more when
// the body returns. The consumer's loop body runs outside the batch.
//
//	for step := range reactive.BatchedSeq(rt, steps) {
//	    // writes made by steps before this yield are already delivered
//	}
func BatchedSeq[V any](r *Runtime, seq iter.Seq[V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		r.StartBatch()
		open := true
		defer func() {
			if open {
				r.closeBatch()
			}
		}()
		seq(func(v V) bool {
			open = false
			r.closeBatch()
			if !yield(v) {
				return false
			}
			r.StartBatch()
			open = true
			return true
		})
	}
}

// closeBatch ends a batch opened by one of the scoped helpers. Underflow is
// impossible there unless fn closed the batch itself, which is logged.
func (r *Runtime) closeBatch() {
	if err := r.EndBatch(); err != nil {
		r.logger.Warn("reactive: scoped batch already closed", "err", err)
	}
}
