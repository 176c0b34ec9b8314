// Package reactive is a dependency-graph engine built from explicit cells,
// memoized computed nodes, a batch coordinator and an owner-scoped cleanup
// registry.
//
// # Core Types
//
// A Runtime holds all shared state: batch depth, the dirty set, the owner
// registry and the deferred queue. Every value is created against one:
//
//	rt := reactive.NewRuntime()
//	count := reactive.Must(reactive.NewScalar(rt, 10))
//	count.Subscribe(func(v int) { fmt.Println("count:", v) })
//	count.Set(10) // equal, nothing happens
//	count.Set(20) // prints "count: 20"
//
// Subscribing never replays the current value.
//
// Computed nodes declare their dependencies up front. They recompute only when
// a dependency's current value differs from the snapshot taken at the last
// evaluation:
//
//	owner := rt.NewOwner()
//	sum := reactive.Computed2(rt, owner, a, b, func(x, y int) int { return x + y })
//	sum.Get()       // computes
//	sum.Get()       // cached
//	owner.Dispose() // severs sum's links to a and b
//
// # Batching
//
// Writes inside a batch are coalesced; each dirty cell notifies once, with
// its final value, when the outermost batch closes:
//
//	rt.Batched(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// Computed subscribers are delivered on the deferred tier, once per turn, no
// matter how many dependencies changed. Drain the tier with Runtime.Run or
// Runtime.Drain, or let a Loop do it after every task.
//
// # Threading
//
// A Runtime is not safe for concurrent use. Confine it to one goroutine; Loop
// does exactly that and is the only way to use BatchAsync.
package reactive
