package reactive

// Kind identifies which variant of reactive value a Source is.
type Kind uint8

const (
	// KindCell is a writable value holder.
	KindCell Kind = iota + 1

	// KindComputed is a derived, memoized, read-only node.
	KindComputed

	// KindBridge adapts a value owned by some other system.
	KindBridge
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindCell:
		return "cell"
	case KindComputed:
		return "computed"
	case KindBridge:
		return "bridge"
	default:
		return "unknown"
	}
}

// Source is the untyped view of a reactive value that computed nodes hold as
// dependencies. Only this package implements it; values from other systems
// enter through NewBridge.
type Source interface {
	// ID returns the runtime-unique identifier of the value.
	ID() uint64

	// Kind reports which variant the value is.
	Kind() Kind

	// snapshot returns the current value boxed for reference comparison.
	snapshot() any

	// watch calls fn whenever the value may have changed. It returns nil when
	// the value cannot be observed.
	watch(fn func()) (stop func())
}

// Value is the capability contract implemented by every reactive value,
// whatever its kind.
type Value[T any] interface {
	Source

	// Get returns the current value.
	Get() T

	// Set replaces the value. Computed nodes always return an error wrapping
	// ErrReadOnly.
	Set(value T) error

	// Update replaces the value with fn applied to the current one.
	Update(fn func(T) T) error

	// Subscribe registers fn for future changes and returns a function that
	// removes it. The current value is not replayed.
	Subscribe(fn func(T)) (unsubscribe func())
}

// Projector is implemented by cells whose canonical value is not directly
// serializable. Plain returns a copy in a shape that encoding/json accepts;
// the cell's value is not touched.
type Projector interface {
	Plain() any
}

// Project returns v's plain projection when it has one, otherwise its
// current value.
func Project(v Source) any {
	if p, ok := v.(Projector); ok {
		return p.Plain()
	}
	return v.snapshot()
}

var (
	_ Value[int] = (*Cell[int])(nil)
	_ Value[int] = (*Computed[int])(nil)
	_ Value[int] = (*Bridge[int])(nil)
)
