package reactive

import (
	"maps"
	"slices"
)

// Members is the value type of a Set cell.
type Members[K comparable] map[K]struct{}

// SetOf builds a Members value.
func SetOf[K comparable](items ...K) Members[K] {
	m := make(Members[K], len(items))
	for _, k := range items {
		m[k] = struct{}{}
	}
	return m
}

// Set is a cell over a set of comparable members, compared structurally.
type Set[K comparable] struct {
	*Cell[Members[K]]
}

// NewSet creates a set cell; a nil initial value becomes empty.
func NewSet[K comparable](rt *Runtime, initial Members[K], opts ...CellOption) (*Set[K], error) {
	if initial == nil {
		initial = Members[K]{}
	}
	o := buildOptions(opts)
	eq, _, err := resolveEqual[Members[K]](o, Structural[Members[K]])
	if err != nil {
		return nil, err
	}
	c := newCell(rt, initial, o.name, eq)
	c.plain = func(v Members[K]) any { return sortedKeys(map[K]struct{}(v)) }
	return &Set[K]{c}, nil
}

// Mutate passes a copy of the set to recipe and stores it.
func (s *Set[K]) Mutate(recipe func(draft Members[K])) {
	draft := maps.Clone(s.value)
	if draft == nil {
		draft = Members[K]{}
	}
	recipe(draft)
	s.Set(draft)
}

// Add inserts items. Items already present cause no notification.
func (s *Set[K]) Add(items ...K) {
	s.Mutate(func(d Members[K]) {
		for _, k := range items {
			d[k] = struct{}{}
		}
	})
}

// Delete removes items.
func (s *Set[K]) Delete(items ...K) {
	s.Mutate(func(d Members[K]) {
		for _, k := range items {
			delete(d, k)
		}
	})
}

// Has reports whether k is a member.
func (s *Set[K]) Has(k K) bool {
	_, ok := s.value[k]
	return ok
}

// Len returns the number of members.
func (s *Set[K]) Len() int {
	return len(s.value)
}

// Plain returns the members as a sorted slice.
func (s *Set[K]) Plain() any {
	return sortedKeys(map[K]struct{}(s.value))
}

func sortedKeys[K comparable, V any](m map[K]V) []K {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b K) int { return compareKeys(a, b) })
	return keys
}
