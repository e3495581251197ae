// Package ops provides the differentiable tensor operations. Each operation
// runs its forward computation on the Variable's backend and, when gradient
// tracking is active, records a backward Function into the graph. Backward
// formulas are themselves written in terms of these operations, so running
// backward with graph creation enabled yields graphs differentiable to any
// order.
package ops
