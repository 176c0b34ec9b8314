package reactive

import "reflect"

// Scalar is a cell over a comparable value, compared with ==. When T is an
// interface type, dynamic values that == cannot compare fall back to
// reference comparison instead of panicking.
type Scalar[T comparable] struct {
	*Cell[T]
}

// NewScalar creates a scalar cell. Without WithEqual, an initial value whose
// dynamic type is not comparable is rejected with ErrInvalidShape.
func NewScalar[T comparable](rt *Runtime, initial T, opts ...CellOption) (*Scalar[T], error) {
	o := buildOptions(opts)
	eq, custom, err := resolveEqual(o, identityOf[T]())
	if err != nil {
		return nil, err
	}
	if !custom {
		if err := checkComparable(reflect.ValueOf(&initial).Elem()); err != nil {
			return nil, err
		}
	}
	return &Scalar[T]{newCell(rt, initial, o.name, eq)}, nil
}

// Mutate passes a copy of the value to recipe and stores the result.
func (s *Scalar[T]) Mutate(recipe func(draft *T)) {
	draft := s.value
	recipe(&draft)
	s.Set(draft)
}

// Number is the constraint for Counter values.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Counter is a numeric scalar with arithmetic helpers.
type Counter[N Number] struct {
	*Scalar[N]
}

// NewCounter creates a counter cell.
func NewCounter[N Number](rt *Runtime, initial N, opts ...CellOption) (*Counter[N], error) {
	s, err := NewScalar(rt, initial, opts...)
	if err != nil {
		return nil, err
	}
	return &Counter[N]{s}, nil
}

// Inc adds one.
func (c *Counter[N]) Inc() {
	c.Update(func(v N) N { return v + 1 })
}

// Dec subtracts one.
func (c *Counter[N]) Dec() {
	c.Update(func(v N) N { return v - 1 })
}

// Add adds delta.
func (c *Counter[N]) Add(delta N) {
	c.Update(func(v N) N { return v + delta })
}
