package reactive

import "testing"

func TestRegistryCleanupOrder(t *testing.T) {
	rt := newTestRuntime(t)
	g := rt.Registry()
	h := g.Acquire()

	var order []int
	for i := 1; i <= 3; i++ {
		g.Register(h, func() { order = append(order, i) })
	}
	if g.Count(h) != 3 {
		t.Errorf("expected 3 cleanups, got %d", g.Count(h))
	}

	if n := g.Cleanup(h); n != 3 {
		t.Errorf("expected 3 cleanups to run, got %d", n)
	}
	if !equalSlices(order, []int{1, 2, 3}) {
		t.Errorf("expected registration order [1 2 3], got %v", order)
	}
	if n := g.Cleanup(h); n != 0 {
		t.Errorf("second cleanup ran %d callbacks", n)
	}
	if !equalSlices(order, []int{1, 2, 3}) {
		t.Errorf("cleanups ran twice: %v", order)
	}
}

func TestRegistryUnknownOwner(t *testing.T) {
	rt := newTestRuntime(t)
	g := rt.Registry()
	if n := g.Cleanup(Handle{}); n != 0 {
		t.Errorf("zero handle cleanup ran %d callbacks", n)
	}
	if g.Live(Handle{}) {
		t.Error("zero handle should never be live")
	}

	ran := false
	g.Register(Handle{index: 42, gen: 1}, func() { ran = true })
	if !ran {
		t.Error("cleanup for a never-acquired owner should run immediately")
	}
}

func TestRegistrySlotReuse(t *testing.T) {
	rt := newTestRuntime(t)
	g := rt.Registry()
	first := g.Acquire()
	g.Cleanup(first)

	second := g.Acquire()
	if second.index != first.index {
		t.Fatalf("expected slot %d to be reused, got %d", first.index, second.index)
	}
	if second == first {
		t.Fatal("reused slot kept the same generation")
	}
	if g.Live(first) {
		t.Error("stale handle reported live")
	}

	ranSecond := false
	g.Register(second, func() { ranSecond = true })

	ranStale := false
	g.Register(first, func() { ranStale = true })
	if !ranStale {
		t.Error("registering on a stale handle should run immediately")
	}
	if g.Cleanup(first) != 0 || ranSecond {
		t.Error("stale handle reached the slot's new owner")
	}
	if g.Count(second) != 1 {
		t.Errorf("expected 1 cleanup on the new owner, got %d", g.Count(second))
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 live owner, got %d", g.Len())
	}
}

func TestRegistryDeregister(t *testing.T) {
	rt := newTestRuntime(t)
	g := rt.Registry()
	h := g.Acquire()

	var order []string
	g.Register(h, func() { order = append(order, "keep") })
	drop := g.Register(h, func() { order = append(order, "drop") })
	drop()
	drop()
	if g.Count(h) != 1 {
		t.Errorf("expected 1 cleanup after deregister, got %d", g.Count(h))
	}
	g.Cleanup(h)
	if !equalSlices(order, []string{"keep"}) {
		t.Errorf("deregistered cleanup ran: %v", order)
	}

	// A stale deregister must not reach the slot's next occupant.
	next := g.Acquire()
	g.Register(next, func() {})
	drop()
	if g.Count(next) != 1 {
		t.Errorf("stale deregister touched the reused slot, count %d", g.Count(next))
	}
}

func TestRegistryCleanupPanicContained(t *testing.T) {
	log := &eventLog{}
	rt := newTestRuntime(t, WithObserver(log))
	g := rt.Registry()
	h := g.Acquire()

	ran := 0
	g.Register(h, func() { ran++ })
	g.Register(h, func() { panic("cleanup failed") })
	g.Register(h, func() { ran++ })

	g.Cleanup(h)
	if ran != 2 {
		t.Errorf("expected remaining cleanups to run, got %d", ran)
	}
	e, ok := log.find(EventPanic)
	if !ok || e.Where != "cleanup" {
		t.Errorf("expected a cleanup panic event, got %+v", e)
	}
	d, ok := log.find(EventDispose)
	if !ok || d.Owner != h || d.Count != 3 {
		t.Errorf("unexpected dispose event: %+v", d)
	}
}

func TestRegistryRegisterDuringCleanup(t *testing.T) {
	rt := newTestRuntime(t)
	g := rt.Registry()
	h := g.Acquire()

	late := false
	g.Register(h, func() {
		g.Register(h, func() { late = true })
	})
	g.Cleanup(h)
	if !late {
		t.Error("cleanup registered during disposal should run immediately")
	}
}

func TestDisposableIdempotent(t *testing.T) {
	rt := newTestRuntime(t)
	d := rt.NewOwner()
	calls := 0
	d.OnCleanup(func() { calls++ })

	d.Dispose()
	d.Dispose()
	if calls != 1 {
		t.Errorf("expected cleanup to run once, got %d", calls)
	}
	if !d.Disposed() {
		t.Error("expected Disposed to report true")
	}

	late := false
	d.OnCleanup(func() { late = true })
	if !late {
		t.Error("cleanup on a disposed owner should run immediately")
	}
}

func TestDisposableChild(t *testing.T) {
	rt := newTestRuntime(t)
	parent := rt.NewOwner()
	var order []string
	parent.OnCleanup(func() { order = append(order, "parent") })
	child := parent.NewChild()
	child.OnCleanup(func() { order = append(order, "child") })

	parent.Dispose()
	if !child.Disposed() {
		t.Error("child should be disposed with its parent")
	}
	if !equalSlices(order, []string{"parent", "child"}) {
		t.Errorf("expected [parent child], got %v", order)
	}
	if rt.Registry().Len() != 0 {
		t.Errorf("expected no live owners, got %d", rt.Registry().Len())
	}
}

type form struct {
	*Disposable
	closed bool
}

func (f *form) Dispose() {
	f.closed = true
	f.Disposable.Dispose()
}

func TestDisposableEmbedded(t *testing.T) {
	rt := newTestRuntime(t)
	f := &form{Disposable: rt.NewOwner()}
	a := mustScalar(t, rt, 1)
	Computed1(rt, f, a, func(x int) int { return x })
	if a.Subscribers() != 1 {
		t.Fatalf("expected 1 dependency link, got %d", a.Subscribers())
	}

	f.Dispose()
	if !f.closed || a.Subscribers() != 0 {
		t.Errorf("embedded dispose should run base cleanup, got closed=%v subscribers=%d", f.closed, a.Subscribers())
	}
}

func TestScenarioDOwnerDisposal(t *testing.T) {
	rt := newTestRuntime(t)
	a := mustScalar(t, rt, 1)
	b := mustScalar(t, rt, 2)
	a.Subscribe(func(int) {})
	beforeA, beforeB := a.Subscribers(), b.Subscribers()

	owner := rt.NewOwner()
	sum := Computed2(rt, owner, a, b, func(x, y int) int { return x + y })
	only := Computed1(rt, owner, a, func(x int) int { return x })
	sum.Subscribe(func(int) {})
	only.Get()

	if a.Subscribers() != beforeA+3 || b.Subscribers() != beforeB+2 {
		t.Fatalf("expected links a=%d b=%d, got a=%d b=%d",
			beforeA+3, beforeB+2, a.Subscribers(), b.Subscribers())
	}

	owner.Dispose()
	if a.Subscribers() != beforeA || b.Subscribers() != beforeB {
		t.Errorf("expected counts back to a=%d b=%d, got a=%d b=%d",
			beforeA, beforeB, a.Subscribers(), b.Subscribers())
	}

	a.Set(5)
	if rt.Pending() != 0 {
		t.Errorf("disposed node still scheduled deliveries: %d", rt.Pending())
	}
	owner.Dispose()
}
