package reactive

import (
	"reflect"
	"slices"
)

// Array is a cell over a slice, compared structurally. Every change produces
// a new backing array, so computed nodes over an Array see it as changed.
type Array[E any] struct {
	*Cell[[]E]
}

// NewArray creates an array cell; a nil initial slice becomes empty. Without
// WithEqual, elements that structural equality cannot compare (funcs,
// chans) are rejected with ErrInvalidShape.
func NewArray[E any](rt *Runtime, initial []E, opts ...CellOption) (*Array[E], error) {
	if initial == nil {
		initial = []E{}
	}
	o := buildOptions(opts)
	eq, custom, err := resolveEqual[[]E](o, Structural[[]E])
	if err != nil {
		return nil, err
	}
	if !custom {
		err := checkElements(reflect.TypeFor[E](), func(check func(reflect.Value) error) error {
			for i := range initial {
				if err := check(reflect.ValueOf(&initial[i]).Elem()); err != nil {
					return err
				}
			}
			return nil
		}, "array element")
		if err != nil {
			return nil, err
		}
	}
	c := newCell(rt, initial, o.name, eq)
	c.plain = func(v []E) any { return slices.Clone(v) }
	return &Array[E]{c}, nil
}

// Mutate passes a copy of the slice to recipe and stores the result.
func (a *Array[E]) Mutate(recipe func(draft *[]E)) {
	draft := slices.Clone(a.value)
	recipe(&draft)
	a.Set(draft)
}

// Append adds items to the end.
func (a *Array[E]) Append(items ...E) {
	if len(items) == 0 {
		return
	}
	a.Mutate(func(d *[]E) { *d = append(*d, items...) })
}

// RemoveAt removes the element at index. Out-of-range indexes do nothing.
func (a *Array[E]) RemoveAt(index int) {
	if index < 0 || index >= len(a.value) {
		return
	}
	a.Mutate(func(d *[]E) { *d = slices.Delete(*d, index, index+1) })
}

// SetAt replaces the element at index. Out-of-range indexes do nothing.
func (a *Array[E]) SetAt(index int, item E) {
	if index < 0 || index >= len(a.value) {
		return
	}
	a.Mutate(func(d *[]E) { (*d)[index] = item })
}

// At returns the element at index.
func (a *Array[E]) At(index int) E {
	return a.value[index]
}

// Len returns the number of elements.
func (a *Array[E]) Len() int {
	return len(a.value)
}

// Plain returns a copy of the slice.
func (a *Array[E]) Plain() any {
	return slices.Clone(a.value)
}
