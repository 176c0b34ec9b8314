package reactive

import (
	"reflect"

	"github.com/mohae/deepcopy"
)

// Object is a cell over a struct or pointer-to-struct value, compared
// structurally.
type Object[T any] struct {
	*Cell[T]
}

// NewObject creates an object cell. Without WithEqual, an initial value that
// is not a struct or pointer to struct is rejected with ErrInvalidShape. A
// type with unexported fields is rejected too, unless it implements
// deepcopy.Interface, since Mutate could not copy those fields into its
// draft.
func NewObject[T any](rt *Runtime, initial T, opts ...CellOption) (*Object[T], error) {
	o := buildOptions(opts)
	eq, custom, err := resolveEqual[T](o, Structural[T])
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(&initial).Elem()
	if !custom {
		if err := checkObject(v, v.Type()); err != nil {
			return nil, err
		}
	}
	if err := checkCopyable(v, v.Type()); err != nil {
		return nil, err
	}
	c := newCell(rt, initial, o.name, eq)
	c.plain = func(v T) any { return deepCopy(v) }
	return &Object[T]{c}, nil
}

// Mutate deep-copies the value, lets recipe change the copy and stores it.
// A recipe that changes nothing causes no notification.
//
//	user.Mutate(func(u *User) { u.Email = "ada@example.com" })
func (o *Object[T]) Mutate(recipe func(draft *T)) {
	draft := deepCopy(o.value)
	recipe(&draft)
	o.Set(draft)
}

// Plain returns a deep copy of the value.
func (o *Object[T]) Plain() any {
	return deepCopy(o.value)
}

func deepCopy[T any](v T) T {
	if c, ok := deepcopy.Copy(v).(T); ok {
		return c
	}
	return v
}
