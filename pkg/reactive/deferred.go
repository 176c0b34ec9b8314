package reactive

// Defer queues fn on the deferred tier. Queued callbacks run, in order, the
// next time the queue is drained.
func (r *Runtime) Defer(fn func()) {
	r.deferred = append(r.deferred, fn)
}

// Pending returns the number of callbacks waiting on the deferred tier.
func (r *Runtime) Pending() int {
	return len(r.deferred)
}

// Drain runs deferred callbacks until the queue is empty, including those
// queued while draining, and returns how many ran. A panicking callback is
// contained and logged. Calls made from inside a callback return 0; the
// outer drain picks up their work.
func (r *Runtime) Drain() int {
	if r.draining {
		return 0
	}
	r.draining = true
	defer func() { r.draining = false }()

	n := 0
	for len(r.deferred) > 0 {
		fn := r.deferred[0]
		r.deferred[0] = nil
		r.deferred = r.deferred[1:]
		r.protect("deferred", 0, "", fn)
		n++
	}
	r.deferred = r.deferred[:0]
	return n
}

// Run executes fn as one synchronous turn, then drains the deferred tier.
func (r *Runtime) Run(fn func()) {
	fn()
	r.Drain()
}
