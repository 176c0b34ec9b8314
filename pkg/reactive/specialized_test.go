package reactive

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestScalarShape(t *testing.T) {
	rt := newTestRuntime(t)

	tests := []struct {
		name    string
		initial any
		wantErr bool
	}{
		{"int", 1, false},
		{"string", "s", false},
		{"nil", nil, false},
		{"slice", []int{1}, true},
		{"map", map[string]int{}, true},
		{"func", func() {}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScalar[any](rt, tt.initial)
			if tt.wantErr && !errors.Is(err, ErrInvalidShape) {
				t.Errorf("expected ErrInvalidShape, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestScalarCustomPredicateSkipsShape(t *testing.T) {
	rt := newTestRuntime(t)
	always := func(a, b any) bool { return false }
	_, err := NewScalar[any](rt, []int{1}, WithEqual(always))
	if err != nil {
		t.Errorf("custom predicate should skip shape validation, got %v", err)
	}
}

func TestScalarInterfaceDynamicValues(t *testing.T) {
	rt := newTestRuntime(t)
	s, err := NewScalar[any](rt, 1)
	if err != nil {
		t.Fatalf("NewScalar: %v", err)
	}
	rec := &recorder[any]{}
	s.Subscribe(rec.record)

	xs := []int{1}
	s.Set(xs)
	s.Set(xs)
	if rec.count() != 1 {
		t.Errorf("same slice twice should notify once, got %d", rec.count())
	}
	s.Set([]int{1})
	if rec.count() != 2 {
		t.Errorf("a new slice is a new reference, got %d notifications", rec.count())
	}
}

func TestScalarMutate(t *testing.T) {
	rt := newTestRuntime(t)
	s := mustScalar(t, rt, 4)
	s.Mutate(func(n *int) { *n *= 3 })
	if s.Get() != 12 {
		t.Errorf("expected 12, got %d", s.Get())
	}
}

func TestCounter(t *testing.T) {
	rt := newTestRuntime(t)
	c, err := NewCounter(rt, 10)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	rec := &recorder[int]{}
	c.Subscribe(rec.record)

	c.Inc()
	c.Inc()
	c.Dec()
	c.Add(5)
	c.Add(0)
	if c.Get() != 16 {
		t.Errorf("expected 16, got %d", c.Get())
	}
	if !equalSlices(rec.values, []int{11, 12, 11, 16}) {
		t.Errorf("unexpected deliveries %v", rec.values)
	}

	f, _ := NewCounter(rt, 0.5)
	f.Add(0.25)
	if f.Get() != 0.75 {
		t.Errorf("expected 0.75, got %v", f.Get())
	}
}

type profile struct {
	Name string
	Tags []string
}

func TestObjectShape(t *testing.T) {
	rt := newTestRuntime(t)

	if _, err := NewObject(rt, profile{Name: "ada"}); err != nil {
		t.Errorf("struct: unexpected error %v", err)
	}
	if _, err := NewObject(rt, &profile{}); err != nil {
		t.Errorf("pointer to struct: unexpected error %v", err)
	}
	if _, err := NewObject(rt, map[string]int{"a": 1}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("map: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewObject[any](rt, map[string]bool{}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("map behind interface: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewObject(rt, 3); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("int: expected ErrInvalidShape, got %v", err)
	}

	sameLen := func(a, b map[string]int) bool { return len(a) == len(b) }
	if _, err := NewObject(rt, map[string]int{}, WithEqual(sameLen)); err != nil {
		t.Errorf("map with custom predicate: unexpected error %v", err)
	}
}

func TestObjectMutate(t *testing.T) {
	rt := newTestRuntime(t)
	o, err := NewObject(rt, profile{Name: "ada", Tags: []string{"math"}})
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	rec := &recorder[profile]{}
	o.Subscribe(rec.record)
	before := o.Get()

	o.Mutate(func(p *profile) {
		p.Tags[0] = "engines"
		p.Name = "Ada"
	})
	if rec.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", rec.count())
	}
	if before.Tags[0] != "math" {
		t.Errorf("draft aliased the previous value: %v", before.Tags)
	}
	if o.Get().Name != "Ada" || o.Get().Tags[0] != "engines" {
		t.Errorf("unexpected value %+v", o.Get())
	}

	o.Mutate(func(p *profile) {})
	if rec.count() != 1 {
		t.Errorf("no-op recipe should not notify, got %d", rec.count())
	}
}

type account struct {
	Name  string
	token string
}

type team struct {
	Lead account
}

type meeting struct {
	Title string
	At    time.Time
}

// sealed keeps hidden state and copies itself.
type sealed struct {
	Name   string
	secret string
}

func (s sealed) DeepCopy() interface{} { return s }

func TestObjectUnexportedFields(t *testing.T) {
	rt := newTestRuntime(t)

	if _, err := NewObject(rt, account{Name: "ada", token: "t"}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("unexported field: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewObject(rt, &team{}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("nested unexported field: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewObject(rt, meeting{Title: "launch", At: time.Now()}); err != nil {
		t.Errorf("time.Time field: unexpected error %v", err)
	}

	o, err := NewObject(rt, sealed{Name: "ada", secret: "s"})
	if err != nil {
		t.Fatalf("self-copying type: unexpected error %v", err)
	}
	rec := &recorder[sealed]{}
	o.Subscribe(rec.record)

	o.Mutate(func(*sealed) {})
	if rec.count() != 0 || o.Get().secret != "s" {
		t.Errorf("no-op recipe changed the value: %+v, %d notifications", o.Get(), rec.count())
	}
	o.Mutate(func(s *sealed) { s.Name = "Ada" })
	if rec.count() != 1 || o.Get() != (sealed{Name: "Ada", secret: "s"}) {
		t.Errorf("expected hidden state kept across a change, got %+v", o.Get())
	}
}

func TestObjectMutatePanicPropagates(t *testing.T) {
	rt := newTestRuntime(t)
	o, _ := NewObject(rt, profile{Name: "ada"})
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected recipe panic to propagate")
		}
		if o.Get().Name != "ada" {
			t.Errorf("value changed after failed recipe: %+v", o.Get())
		}
	}()
	o.Mutate(func(p *profile) {
		p.Name = "partial"
		panic("recipe bug")
	})
}

func TestObjectPlain(t *testing.T) {
	rt := newTestRuntime(t)
	o, _ := NewObject(rt, &profile{Name: "ada"})
	plain := o.Plain().(*profile)
	plain.Name = "changed"
	if o.Get().Name != "ada" {
		t.Errorf("plain projection aliased the value")
	}
}

func TestArray(t *testing.T) {
	rt := newTestRuntime(t)
	a, err := NewArray[string](rt, nil)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	if a.Get() == nil || a.Len() != 0 {
		t.Errorf("nil initial should become empty, got %#v", a.Get())
	}
	rec := &recorder[[]string]{}
	a.Subscribe(rec.record)

	a.Append("a", "b", "c")
	a.RemoveAt(1)
	a.SetAt(0, "z")
	a.RemoveAt(10)
	a.SetAt(-1, "x")
	a.Append()

	if !equalSlices(a.Get(), []string{"z", "c"}) {
		t.Errorf("expected [z c], got %v", a.Get())
	}
	if rec.count() != 3 {
		t.Errorf("expected 3 notifications, got %d", rec.count())
	}
	if a.At(1) != "c" {
		t.Errorf("expected c at 1, got %q", a.At(1))
	}
	if !equalSlices(rec.values[0], []string{"a", "b", "c"}) {
		t.Errorf("earlier delivery was modified in place: %v", rec.values[0])
	}

	plain := a.Plain().([]string)
	plain[0] = "changed"
	if a.At(0) != "z" {
		t.Error("plain projection aliased the value")
	}
}

func TestArrayShape(t *testing.T) {
	rt := newTestRuntime(t)
	if _, err := NewArray(rt, []func(){nil}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("func elements: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewArray(rt, []any{1, make(chan int)}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("chan behind interface: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewArray(rt, []any{1, "two", nil}); err != nil {
		t.Errorf("mixed comparable elements: unexpected error %v", err)
	}
}

func TestSet(t *testing.T) {
	log := &eventLog{}
	rt := newTestRuntime(t, WithObserver(log))
	s, err := NewSet(rt, SetOf(10, 2))
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	rec := &recorder[Members[int]]{}
	s.Subscribe(rec.record)

	s.Add(2)
	if rec.count() != 0 {
		t.Errorf("adding an existing member should not notify")
	}
	s.Add(1)
	s.Delete(10, 99)
	if rec.count() != 2 {
		t.Errorf("expected 2 notifications, got %d", rec.count())
	}
	if !s.Has(1) || s.Has(10) || s.Len() != 2 {
		t.Errorf("unexpected members %v", s.Get())
	}

	got := s.Plain().([]int)
	if !equalSlices(got, []int{1, 2}) {
		t.Errorf("expected sorted [1 2], got %v", got)
	}

	e, ok := log.find(EventCellChange)
	if !ok {
		t.Fatal("expected a change event")
	}
	if v, ok := e.Value.([]int); !ok || !equalSlices(v, []int{1, 2, 10}) {
		t.Errorf("change event should carry the plain projection, got %#v", e.Value)
	}
}

func TestSetPlainOrdering(t *testing.T) {
	rt := newTestRuntime(t)
	s, _ := NewSet(rt, SetOf("b", "c", "a"))
	if got := s.Plain().([]string); !equalSlices(got, []string{"a", "b", "c"}) {
		t.Errorf("expected [a b c], got %v", got)
	}
	n, _ := NewSet(rt, SetOf(10, 9, 100))
	if got := n.Plain().([]int); !equalSlices(got, []int{9, 10, 100}) {
		t.Errorf("expected numeric order [9 10 100], got %v", got)
	}
}

func TestMap(t *testing.T) {
	rt := newTestRuntime(t)
	m, err := NewMap(rt, map[string]int{"b": 2})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	rec := &recorder[map[string]int]{}
	m.Subscribe(rec.record)

	m.Put("a", 1)
	m.Put("a", 1)
	m.Delete("missing")
	if rec.count() != 1 {
		t.Errorf("expected 1 notification, got %d", rec.count())
	}
	if v, ok := m.Lookup("a"); !ok || v != 1 {
		t.Errorf("expected a=1, got %d, %v", v, ok)
	}
	if !equalSlices(m.Keys(), []string{"a", "b"}) {
		t.Errorf("expected keys [a b], got %v", m.Keys())
	}

	data, err := json.Marshal(m.Plain())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"key":"a","value":1},{"key":"b","value":2}]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	m.Delete("a", "b")
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %v", m.Get())
	}
}

func TestMapShape(t *testing.T) {
	rt := newTestRuntime(t)
	if _, err := NewMap(rt, map[string]func(){}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("func values: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewMap(rt, map[string]any{"ch": make(chan int)}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("chan behind interface: expected ErrInvalidShape, got %v", err)
	}
}

func TestProject(t *testing.T) {
	rt := newTestRuntime(t)
	s, _ := NewSet(rt, SetOf(3, 1))
	c := mustScalar(t, rt, 5)

	if got, ok := Project(s).([]int); !ok || !equalSlices(got, []int{1, 3}) {
		t.Errorf("expected projected [1 3], got %#v", Project(s))
	}
	if got := Project(c); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}
