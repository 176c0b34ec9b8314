package reactive

import (
	"fmt"
	"slices"
)

// Handle is the stable identity of an owner in a Registry. The zero Handle
// never refers to a live owner.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// OwnerHandle returns h, so a bare Handle can be passed wherever an Owner is
// expected.
func (h Handle) OwnerHandle() Handle {
	return h
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

// Owner is anything that cleanups can be registered against.
type Owner interface {
	OwnerHandle() Handle
}

type cleanupEntry struct {
	fn func()
}

type ownerSlot struct {
	gen      uint32
	live     bool
	cleanups []*cleanupEntry
}

// Registry maps owners to ordered cleanup lists. Slots are reused after
// disposal; the generation in each Handle keeps a stale handle from reaching
// a slot's next occupant.
type Registry struct {
	rt    *Runtime
	slots []ownerSlot
	free  []uint32
	live  int
}

func newRegistry(rt *Runtime) *Registry {
	// Slot 0 is reserved so the zero Handle is never live.
	return &Registry{rt: rt, slots: make([]ownerSlot, 1)}
}

// Acquire returns a handle for a new owner.
func (g *Registry) Acquire() Handle {
	g.live++
	if n := len(g.free); n > 0 {
		idx := g.free[n-1]
		g.free = g.free[:n-1]
		s := &g.slots[idx]
		s.live = true
		return Handle{index: idx, gen: s.gen}
	}
	g.slots = append(g.slots, ownerSlot{gen: 1, live: true})
	return Handle{index: uint32(len(g.slots) - 1), gen: 1}
}

func (g *Registry) slot(h Handle) *ownerSlot {
	if h.index == 0 || int(h.index) >= len(g.slots) {
		return nil
	}
	s := &g.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}

// Live reports whether owner has been acquired and not yet cleaned up.
func (g *Registry) Live(owner Handle) bool {
	return g.slot(owner) != nil
}

// Len returns the number of live owners.
func (g *Registry) Len() int {
	return g.live
}

// Count returns the number of cleanups registered for owner.
func (g *Registry) Count(owner Handle) int {
	if s := g.slot(owner); s != nil {
		return len(s.cleanups)
	}
	return 0
}

// Register appends cleanup to owner's list and returns a function that takes
// it off again without running it. If owner is not live the cleanup runs
// immediately, so nothing registered late is leaked.
func (g *Registry) Register(owner Handle, cleanup func()) (deregister func()) {
	if cleanup == nil {
		return func() {}
	}
	s := g.slot(owner)
	if s == nil {
		g.rt.protect("cleanup", 0, owner.String(), cleanup)
		return func() {}
	}
	e := &cleanupEntry{fn: cleanup}
	s.cleanups = append(s.cleanups, e)
	return func() {
		// The slot may have been cleaned up or reused since.
		if s := g.slot(owner); s != nil {
			s.cleanups = slices.DeleteFunc(s.cleanups, func(c *cleanupEntry) bool { return c == e })
		}
	}
}

// Cleanup runs owner's cleanups in registration order and releases its slot.
// A panicking cleanup is contained and the rest still run. Cleanup on a
// handle that is not live does nothing. It returns the number of cleanups
// that ran.
func (g *Registry) Cleanup(owner Handle) int {
	s := g.slot(owner)
	if s == nil {
		return 0
	}
	cleanups := s.cleanups
	s.cleanups = nil
	s.live = false
	s.gen++
	g.free = append(g.free, owner.index)
	g.live--

	for _, e := range cleanups {
		g.rt.protect("cleanup", 0, owner.String(), e.fn)
	}
	g.rt.emit(Event{Type: EventDispose, Owner: owner, Count: len(cleanups)})
	return len(cleanups)
}
