// Package autograd implements reverse-mode automatic differentiation over
// tensor computations.
//
// Forward operations record a graph of Functions connected by Edges as they
// execute. Each Variable produced by a recorded operation remembers the
// Function that made it; each Function remembers, per forward input, the
// edge to that input's producer. Backward walks this graph in reverse
// topological order with a pool of workers, summing gradients where paths
// fan in and accumulating results into leaf Variables.
//
// The concrete tensor operations that know how to differentiate themselves
// live in the ops subpackage; this package owns the graph machinery, the
// engine, gradient mode, and in-place version tracking.
package autograd
