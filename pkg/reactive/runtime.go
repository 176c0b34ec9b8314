package reactive

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Runtime is the context every reactive value is created against. It owns
// the batch coordinator state, the owner registry and the deferred queue.
//
// Values from different runtimes must not be mixed in one computed node.
type Runtime struct {
	logger   *slog.Logger
	observer Observer

	batch    batchState
	registry *Registry

	deferred []func()
	draining bool

	ids uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for contained panics and named batches.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithObserver sets the observer that receives engine events.
func WithObserver(o Observer) Option {
	return func(r *Runtime) {
		r.observer = o
	}
}

// WithQueueSize preallocates the deferred queue.
func WithQueueSize(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.deferred = make([]func(), 0, n)
		}
	}
}

// NewRuntime creates an independent runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.registry = newRegistry(r)
	return r
}

var defaultRuntime = sync.OnceValue(func() *Runtime {
	return NewRuntime()
})

// Default returns the process-wide runtime. Like any Runtime it must be used
// from a single goroutine.
func Default() *Runtime {
	return defaultRuntime()
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Registry returns the runtime's owner registry.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// NewOwner acquires a fresh owner from the runtime's registry.
func (r *Runtime) NewOwner() *Disposable {
	return NewDisposable(r)
}

func (r *Runtime) nextID() uint64 {
	r.ids++
	return r.ids
}

func (r *Runtime) emit(e Event) {
	if r.observer != nil {
		r.observer.Observe(e)
	}
}

// protect runs fn and contains any panic it raises. The panic is logged and
// reported as EventPanic; protect reports whether fn returned normally.
func (r *Runtime) protect(where string, node uint64, name string, fn func()) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			r.logger.Error("reactive: recovered panic",
				"where", where,
				"node", node,
				"name", name,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			r.emit(Event{Type: EventPanic, Node: node, Name: name, Where: where, Panic: p})
		}
	}()
	fn()
	return true
}

// Must panics if err is non-nil and returns v otherwise.
func Must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}
