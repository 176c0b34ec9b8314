package reactive

import "slices"

type computedSub[T any] struct {
	fn      func(T)
	pending bool
	active  bool
}

// Computed is a derived, memoized, read-only value over a fixed list of
// dependencies. Get recomputes only when some dependency's current value is
// not the same value, by reference, as the one seen at the last evaluation.
// Subscribers are notified on the deferred tier, at most once per turn.
//
// A computed node belongs to an owner: disposing the owner detaches it from
// its dependencies. It keeps answering Get afterwards but is no longer
// notified of changes.
type Computed[T any] struct {
	rt    *Runtime
	id    uint64
	name  string
	owner Handle

	deps    []Source
	compute func([]any) T

	snap      []any
	result    T
	evaluated bool
	stale     bool

	subs []*computedSub[T]
}

func newComputed[T any](rt *Runtime, owner Owner, deps []Source, compute func([]any) T) *Computed[T] {
	if owner == nil {
		panic("reactive: computed node requires an owner")
	}
	c := &Computed[T]{
		rt:      rt,
		id:      rt.nextID(),
		owner:   owner.OwnerHandle(),
		deps:    slices.Clone(deps),
		compute: compute,
	}
	stop := c.watch(c.invalidate)
	if stop != nil {
		rt.registry.Register(c.owner, stop)
	}
	return c
}

// ID returns the node's runtime-unique identifier.
func (c *Computed[T]) ID() uint64 {
	return c.id
}

// Kind returns KindComputed.
func (c *Computed[T]) Kind() Kind {
	return KindComputed
}

// Named sets the name used in logs and events and returns c.
func (c *Computed[T]) Named(name string) *Computed[T] {
	c.name = name
	return c
}

// Name returns the node's name.
func (c *Computed[T]) Name() string {
	return c.name
}

// Owner returns the handle of the owner the node was created for.
func (c *Computed[T]) Owner() Handle {
	return c.owner
}

// Stale reports whether a dependency has signalled a change since the last
// evaluation. Get decides by comparing values, not by this flag.
func (c *Computed[T]) Stale() bool {
	return c.stale || !c.evaluated
}

// Get returns the cached result when every dependency still holds the value
// seen at the last evaluation, and recomputes otherwise. A panic from the
// compute function reaches the caller and leaves the cache untouched.
func (c *Computed[T]) Get() T {
	current := make([]any, len(c.deps))
	for i, d := range c.deps {
		current[i] = d.snapshot()
	}
	if c.evaluated && c.matches(current) {
		c.stale = false
		c.rt.emit(Event{Type: EventCacheHit, Node: c.id, Name: c.name, Kind: KindComputed})
		return c.result
	}
	result := c.compute(current)
	c.snap, c.result, c.evaluated, c.stale = current, result, true, false
	c.rt.emit(Event{Type: EventRecompute, Node: c.id, Name: c.name, Kind: KindComputed})
	return result
}

func (c *Computed[T]) matches(current []any) bool {
	for i, v := range current {
		if !sameValue(c.snap[i], v) {
			return false
		}
	}
	return true
}

// Set always fails: computed nodes are read-only.
func (c *Computed[T]) Set(T) error {
	return readOnlyError(c.id, c.name, KindComputed)
}

// Update always fails without calling fn.
func (c *Computed[T]) Update(func(T) T) error {
	return readOnlyError(c.id, c.name, KindComputed)
}

// Subscribe registers fn for future changes. Any number of dependency
// changes within one turn schedule a single deferred delivery, which
// re-evaluates the node and passes the result to fn. The returned function
// is also registered under the node's owner until it is called.
//
// Unsubscribing stops future deliveries. A delivery already queued still
// runs its re-evaluation but no longer calls fn.
func (c *Computed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	sub := &computedSub[T]{fn: fn, active: true}
	c.subs = append(c.subs, sub)
	stop := c.watch(func() { c.schedule(sub) })
	var deregister func()
	unsubscribe = func() {
		if !sub.active {
			return
		}
		sub.active = false
		c.subs = slices.DeleteFunc(c.subs, func(s *computedSub[T]) bool { return s == sub })
		if stop != nil {
			stop()
		}
		if deregister != nil {
			deregister()
		}
	}
	deregister = c.rt.registry.Register(c.owner, unsubscribe)
	return unsubscribe
}

// Subscribers returns the number of live external subscriptions.
func (c *Computed[T]) Subscribers() int {
	return len(c.subs)
}

func (c *Computed[T]) schedule(sub *computedSub[T]) {
	if sub.pending {
		return
	}
	sub.pending = true
	c.rt.Defer(func() {
		sub.pending = false
		v := c.Get()
		if !sub.active {
			return
		}
		c.rt.protect("subscriber", c.id, c.name, func() { sub.fn(v) })
		c.rt.emit(Event{Type: EventDelivery, Node: c.id, Name: c.name, Kind: KindComputed, Count: 1})
	})
}

func (c *Computed[T]) invalidate() {
	c.stale = true
	c.rt.emit(Event{Type: EventInvalidate, Node: c.id, Name: c.name, Kind: KindComputed})
}

func (c *Computed[T]) snapshot() any {
	return c.Get()
}

// watch attaches fn to every watchable dependency. Watching a node built on
// other computed nodes therefore reaches the cells underneath.
func (c *Computed[T]) watch(fn func()) func() {
	var stops []func()
	for _, d := range c.deps {
		if stop := d.watch(fn); stop != nil {
			stops = append(stops, stop)
		}
	}
	if len(stops) == 0 {
		return nil
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// as converts a dependency snapshot back to its static type. A nil snapshot
// of an interface-typed dependency becomes the zero value.
func as[A any](v any) A {
	a, _ := v.(A)
	return a
}

// Computed1 derives a value from one dependency.
func Computed1[A, T any](rt *Runtime, owner Owner, a Value[A], fn func(A) T) *Computed[T] {
	return newComputed(rt, owner, []Source{a}, func(v []any) T {
		return fn(as[A](v[0]))
	})
}

// Computed2 derives a value from two dependencies.
//
//	sum := reactive.Computed2(rt, owner, a, b, func(x, y int) int { return x + y })
func Computed2[A, B, T any](rt *Runtime, owner Owner, a Value[A], b Value[B], fn func(A, B) T) *Computed[T] {
	return newComputed(rt, owner, []Source{a, b}, func(v []any) T {
		return fn(as[A](v[0]), as[B](v[1]))
	})
}

// Computed3 derives a value from three dependencies.
func Computed3[A, B, C, T any](rt *Runtime, owner Owner, a Value[A], b Value[B], c Value[C], fn func(A, B, C) T) *Computed[T] {
	return newComputed(rt, owner, []Source{a, b, c}, func(v []any) T {
		return fn(as[A](v[0]), as[B](v[1]), as[C](v[2]))
	})
}

// Computed4 derives a value from four dependencies.
func Computed4[A, B, C, D, T any](rt *Runtime, owner Owner, a Value[A], b Value[B], c Value[C], d Value[D], fn func(A, B, C, D) T) *Computed[T] {
	return newComputed(rt, owner, []Source{a, b, c, d}, func(v []any) T {
		return fn(as[A](v[0]), as[B](v[1]), as[C](v[2]), as[D](v[3]))
	})
}

// ComputedN derives a value from any number of dependencies. fn receives
// their current values in dependency order, in a slice of its own.
func ComputedN[T any](rt *Runtime, owner Owner, deps []Source, fn func([]any) T) *Computed[T] {
	return newComputed(rt, owner, deps, func(v []any) T {
		return fn(slices.Clone(v))
	})
}
