package autograd

import "github.com/pkg/errors"

// ShouldRecord reports whether a forward operation over inputs must be added
// to the graph. False is the fast path: no Function is constructed, no state
// saved, and the outputs stay history-free.
func ShouldRecord(inputs ...*Variable) bool {
	return GradEnabled() && AnyRequiresGrad(inputs...)
}

// Record wires fn into the graph: outgoing edges to the producers of inputs,
// one gradient slot per output, and history on each output pointing back at
// fn. Callers construct fn (with whatever saved state its backward formula
// needs) only after ShouldRecord returned true.
func Record(fn Function, inputs []*Variable, outputs ...*Variable) {
	fn.Base().SetNextEdges(CollectNextEdges(inputs...))
	for _, out := range outputs {
		slot := fn.Base().AddInputMetadata(out.Shape())
		out.SetHistory(fn, slot)
	}
}

// CheckInPlace validates that target may be mutated in place. A leaf that
// requires grad is its own graph endpoint: under gradient tracking the
// mutation cannot be represented, so it is rejected before any data moves.
// In-place operations call this before touching target's storage.
func CheckInPlace(target *Variable) error {
	if target == nil {
		return errors.New("in-place operation on a nil variable")
	}
	if GradEnabled() && target.IsLeaf() && target.RequiresGrad() {
		return errors.WithStack(ErrInPlaceOnLeaf)
	}
	return nil
}

// RecordInPlace handles an operation that mutated target's payload in place.
// The version bump is unconditional so that stale snapshots taken by earlier
// Functions are detected even when the mutation itself was not recorded.
// When recording, the mutated Variable is rebound to fn, which represents
// its value as of the mutation; a target that did not participate in the
// graph before gains history here, keeping the other operands' gradient
// paths alive. CheckInPlace has already excluded grad-requiring leaves.
func RecordInPlace(fn Function, target *Variable, inputs ...*Variable) {
	target.BumpVersion()
	if !ShouldRecord(inputs...) {
		return
	}
	fn.Base().SetNextEdges(CollectNextEdges(inputs...))
	slot := fn.Base().AddInputMetadata(target.Shape())
	target.SetHistory(fn, slot)
}
