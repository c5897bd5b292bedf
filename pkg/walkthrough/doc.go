// Package walkthrough overlays live condition values onto a parsed function body.
//
// A Walker consumes a depth-first stream of structural events (node entered,
// node exited, terminal visited) and tracks, per open conditional, whether the
// branch being walked is live. Each statement is painted with the colour of
// its classification:
//
//   - ActiveStatement: every enclosing condition resolved to the taken branch
//   - InactiveBranch: some enclosing condition resolved to the other branch
//   - BrokenCode: some enclosing condition could not be resolved
//   - PassiveCode: the statement follows a return on a live path
//
// Conditions are looked up by their literal text in a ValueSource and painted
// with TrueCondition, FalseCondition or BrokenCode. After the walk, the
// collected terminals are scanned for accesses off the configuration root
// (engineConfiguration->field), which are painted in the foreground.
//
// Usage:
//
//	w := walkthrough.NewWalker(values, painter, walkthrough.WithSource(src))
//	for ev := range events {
//	    w.Handle(ev)
//	}
//	result := w.Result()
package walkthrough
