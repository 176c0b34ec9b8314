package reactive

// Disposable is an owner with a single idempotent Dispose. Embed a
// *Disposable to give a type owner semantics:
//
//	type Form struct {
//	    *reactive.Disposable
//	    valid *reactive.Computed[bool]
//	}
//
// A type that extends Dispose must still call the embedded Dispose.
type Disposable struct {
	rt       *Runtime
	handle   Handle
	disposed bool
}

// NewDisposable acquires a new owner from rt's registry.
func NewDisposable(rt *Runtime) *Disposable {
	return &Disposable{rt: rt, handle: rt.registry.Acquire()}
}

// OwnerHandle returns the owner's registry handle.
func (d *Disposable) OwnerHandle() Handle {
	return d.handle
}

// Runtime returns the runtime the owner belongs to.
func (d *Disposable) Runtime() *Runtime {
	return d.rt
}

// OnCleanup registers fn to run when the owner is disposed. On a disposed
// owner fn runs immediately.
func (d *Disposable) OnCleanup(fn func()) {
	d.rt.registry.Register(d.handle, fn)
}

// Dispose runs the owner's cleanups once. Later calls do nothing.
func (d *Disposable) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.rt.registry.Cleanup(d.handle)
}

// Disposed reports whether Dispose has been called.
func (d *Disposable) Disposed() bool {
	return d.disposed
}

// NewChild creates an owner that is disposed together with d, after the
// cleanups d registered before it.
func (d *Disposable) NewChild() *Disposable {
	child := NewDisposable(d.rt)
	d.OnCleanup(child.Dispose)
	return child
}
