package reactive

import "slices"

// CellOption configures a cell at construction.
type CellOption func(*cellOptions)

type cellOptions struct {
	name  string
	equal any
}

// Named attaches a name used in logs, errors and observer events.
func Named(name string) CellOption {
	return func(o *cellOptions) {
		o.name = name
	}
}

// WithEqual replaces the cell's equality predicate. The predicate's type must
// match the cell's value type; specialized cells also skip their shape
// validation when one is given.
func WithEqual[T any](fn func(a, b T) bool) CellOption {
	return func(o *cellOptions) {
		o.equal = EqualFunc[T](fn)
	}
}

func buildOptions(opts []CellOption) cellOptions {
	var o cellOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolveEqual returns the custom predicate from o, or fallback when none was
// given. custom reports whether the caller supplied one.
func resolveEqual[T any](o cellOptions, fallback EqualFunc[T]) (eq EqualFunc[T], custom bool, err error) {
	if o.equal == nil {
		return fallback, false, nil
	}
	fn, ok := o.equal.(EqualFunc[T])
	if !ok || fn == nil {
		return nil, false, equalTypeError(typeName[T](), o.equal)
	}
	return fn, true, nil
}

type subscription[T any] struct {
	fn     func(T)
	active bool
}

// Cell is a reactive value holder. A Set that its equality predicate
// considers unchanged is ignored; any other Set marks the cell dirty with the
// runtime's batch coordinator, which flushes it to subscribers immediately or
// when the outermost batch closes.
type Cell[T any] struct {
	rt   *Runtime
	id   uint64
	name string

	value T
	equal EqualFunc[T]

	subs []*subscription[T]

	// queued is set while the cell sits in the batch dirty set.
	queued bool

	// plain projects the value for observer events; nil means identity.
	plain func(T) any
}

// NewCell creates a cell using == for scalar kinds and reflect.DeepEqual for
// everything else, unless WithEqual is given.
func NewCell[T any](rt *Runtime, initial T, opts ...CellOption) (*Cell[T], error) {
	o := buildOptions(opts)
	eq, _, err := resolveEqual(o, defaultEqual[T]())
	if err != nil {
		return nil, err
	}
	return newCell(rt, initial, o.name, eq), nil
}

func newCell[T any](rt *Runtime, initial T, name string, eq EqualFunc[T]) *Cell[T] {
	return &Cell[T]{
		rt:    rt,
		id:    rt.nextID(),
		name:  name,
		value: initial,
		equal: eq,
	}
}

// ID returns the cell's runtime-unique identifier.
func (c *Cell[T]) ID() uint64 {
	return c.id
}

// Kind returns KindCell.
func (c *Cell[T]) Kind() Kind {
	return KindCell
}

// Name returns the name given with Named.
func (c *Cell[T]) Name() string {
	return c.name
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set stores value if the equality predicate says it differs from the
// current one. It never fails; the error is part of the Value contract.
func (c *Cell[T]) Set(value T) error {
	if c.equal(c.value, value) {
		return nil
	}
	c.value = value
	if c.rt.observer != nil {
		c.rt.emit(Event{Type: EventCellChange, Node: c.id, Name: c.name, Kind: KindCell, Value: c.project(value)})
	}
	c.rt.markDirty(c)
	return nil
}

// Update applies fn to the current value and stores the result as Set does.
// A panic in fn reaches the caller and leaves the cell untouched.
func (c *Cell[T]) Update(fn func(T) T) error {
	return c.Set(fn(c.value))
}

// Subscribe registers fn for future changes. The current value is not
// replayed. The returned function removes fn and may be called any number of
// times.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	sub := &subscription[T]{fn: fn, active: true}
	c.subs = append(c.subs, sub)
	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		c.subs = slices.DeleteFunc(c.subs, func(s *subscription[T]) bool { return s == sub })
	}
}

// Subscribers returns the number of live subscriptions.
func (c *Cell[T]) Subscribers() int {
	return len(c.subs)
}

// flush delivers the current value to every subscriber. Subscriptions removed
// during the flush are skipped; a panicking subscriber is contained.
func (c *Cell[T]) flush() {
	c.queued = false
	if len(c.subs) == 0 {
		return
	}
	subs := slices.Clone(c.subs)
	delivered := 0
	for _, sub := range subs {
		if !sub.active {
			continue
		}
		c.rt.protect("subscriber", c.id, c.name, func() { sub.fn(c.value) })
		delivered++
	}
	c.rt.emit(Event{Type: EventFlush, Node: c.id, Name: c.name, Kind: KindCell, Count: delivered})
}

func (c *Cell[T]) isQueued() bool {
	return c.queued
}

func (c *Cell[T]) setQueued(q bool) {
	c.queued = q
}

func (c *Cell[T]) snapshot() any {
	return c.value
}

func (c *Cell[T]) watch(fn func()) func() {
	return c.Subscribe(func(T) { fn() })
}

func (c *Cell[T]) project(v T) any {
	if c.plain != nil {
		return c.plain(v)
	}
	return v
}
