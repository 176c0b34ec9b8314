package reactive

// Bridge adapts a value owned by another system to the Value contract. The
// other system does its own change detection and notification; a bridge only
// forwards.
type Bridge[T any] struct {
	rt   *Runtime
	id   uint64
	name string

	get       func() T
	set       func(T) error
	subscribe func(func(T)) func()
}

// NewBridge wraps get, set and subscribe. A nil set makes the bridge
// read-only; a nil subscribe makes it unobservable, so computed nodes over it
// see its changes only when something else prompts a Get.
func NewBridge[T any](rt *Runtime, get func() T, set func(T) error, subscribe func(func(T)) func()) *Bridge[T] {
	return &Bridge[T]{
		rt:        rt,
		id:        rt.nextID(),
		get:       get,
		set:       set,
		subscribe: subscribe,
	}
}

// ID returns the bridge's runtime-unique identifier.
func (b *Bridge[T]) ID() uint64 {
	return b.id
}

// Kind returns KindBridge.
func (b *Bridge[T]) Kind() Kind {
	return KindBridge
}

// Named sets the name used in logs and errors and returns b.
func (b *Bridge[T]) Named(name string) *Bridge[T] {
	b.name = name
	return b
}

// Name returns the bridge's name.
func (b *Bridge[T]) Name() string {
	return b.name
}

// Get returns the external value.
func (b *Bridge[T]) Get() T {
	return b.get()
}

// Set forwards value to the external setter.
func (b *Bridge[T]) Set(value T) error {
	if b.set == nil {
		return readOnlyError(b.id, b.name, KindBridge)
	}
	return b.set(value)
}

// Update forwards fn applied to the current value.
func (b *Bridge[T]) Update(fn func(T) T) error {
	if b.set == nil {
		return readOnlyError(b.id, b.name, KindBridge)
	}
	return b.set(fn(b.get()))
}

// Subscribe forwards to the external subscribe function, or returns a no-op
// when there is none.
func (b *Bridge[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if b.subscribe == nil {
		return func() {}
	}
	return b.subscribe(fn)
}

// Observable reports whether the bridge was given a subscribe function.
func (b *Bridge[T]) Observable() bool {
	return b.subscribe != nil
}

func (b *Bridge[T]) snapshot() any {
	return b.get()
}

func (b *Bridge[T]) watch(fn func()) func() {
	if b.subscribe == nil {
		return nil
	}
	return b.subscribe(func(T) { fn() })
}
