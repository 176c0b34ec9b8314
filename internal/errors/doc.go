// Package errors provides structured, coded errors for the reactive engine
// and its tooling.
//
// Every error carries a stable code (e.g. "R001") that maps to a registered
// template with a category, a short message, a longer explanation and a
// documentation link. Engine sentinels are attached with Wrap so callers can
// keep matching with the standard library:
//
//	err := errors.New("R001").
//	    WithDetail("computed node 7 (total) cannot be written").
//	    Wrap(reactive.ErrReadOnly)
//
//	stderrors.Is(err, reactive.ErrReadOnly) // true
//	fmt.Println(err.Format())
//	// ERROR R001: Value is read-only
//	//
//	//   computed node 7 (total) cannot be written
//	//
//	//   Hint: Write to one of the node's dependencies instead.
//
// # Categories
//
//   - runtime: violations detected while the engine runs (read-only writes,
//     unbalanced batches, a closed loop)
//   - construction: a value rejected when a cell is built
//   - config: configuration file problems
//   - cli: command-line usage problems
package errors
