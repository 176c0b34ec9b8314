package reactive

import (
	"maps"
	"reflect"
)

// Entry is one key/value pair of a Map cell's plain projection.
type Entry struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

// Map is a cell over a map, compared structurally.
type Map[K comparable, V any] struct {
	*Cell[map[K]V]
}

// NewMap creates a map cell; a nil initial map becomes empty. Without
// WithEqual, values that structural equality cannot compare are rejected
// with ErrInvalidShape.
func NewMap[K comparable, V any](rt *Runtime, initial map[K]V, opts ...CellOption) (*Map[K, V], error) {
	if initial == nil {
		initial = map[K]V{}
	}
	o := buildOptions(opts)
	eq, custom, err := resolveEqual[map[K]V](o, Structural[map[K]V])
	if err != nil {
		return nil, err
	}
	if !custom {
		err := checkElements(reflect.TypeFor[V](), func(check func(reflect.Value) error) error {
			for _, v := range initial {
				if err := check(reflect.ValueOf(&v).Elem()); err != nil {
					return err
				}
			}
			return nil
		}, "map value")
		if err != nil {
			return nil, err
		}
	}
	c := newCell(rt, initial, o.name, eq)
	c.plain = func(v map[K]V) any { return entries(v) }
	return &Map[K, V]{c}, nil
}

// Mutate passes a copy of the map to recipe and stores it.
func (m *Map[K, V]) Mutate(recipe func(draft map[K]V)) {
	draft := maps.Clone(m.value)
	if draft == nil {
		draft = map[K]V{}
	}
	recipe(draft)
	m.Set(draft)
}

// Put stores value under key.
func (m *Map[K, V]) Put(key K, value V) {
	m.Mutate(func(d map[K]V) { d[key] = value })
}

// Delete removes keys.
func (m *Map[K, V]) Delete(keys ...K) {
	m.Mutate(func(d map[K]V) {
		for _, k := range keys {
			delete(d, k)
		}
	})
}

// Lookup returns the value stored under key.
func (m *Map[K, V]) Lookup(key K) (V, bool) {
	v, ok := m.value[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.value)
}

// Keys returns the keys in sorted order.
func (m *Map[K, V]) Keys() []K {
	return sortedKeys(m.value)
}

// Plain returns the entries sorted by key.
func (m *Map[K, V]) Plain() any {
	return entries(m.value)
}

func entries[K comparable, V any](m map[K]V) []Entry {
	out := make([]Entry, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, Entry{Key: k, Value: m[k]})
	}
	return out
}
