package autograd

import (
	"sync/atomic"

	"github.com/ember-ml/ember/internal/tensor"
)

// nextSequenceNr supplies construction-order sequence numbers for Functions.
// A process-wide atomic rather than a per-goroutine counter: a single atomic
// add does not serialize recording, and it gives a total order even across
// goroutines (stronger than the per-thread ordering the engine relies on).
var nextSequenceNr atomic.Uint64

// Function is one node in the reverse-mode computation graph: it holds a
// backward formula plus whatever forward state that formula needs.
//
// Functions are vertices; Edges connect them. A Function's NextEdges point at
// the producers of its forward inputs, one edge per input. When several edges
// from different consumers point at the same input slot of a Function, the
// gradients flowing along them are summed before the Function runs.
//
// Concrete operations embed FunctionBase and implement Apply and Name.
// Functions are never copied after construction; they are shared by pointer
// from every downstream consumer and from the Variables they produced.
type Function interface {
	// Apply computes input gradients from output gradients. A nil slot means
	// "undefined gradient" and is treated as an implicit zero: formulas must
	// pass nil through rather than materialize zero tensors, and may receive
	// nil for outputs whose gradient was never needed.
	Apply(gradOutputs []*Variable) ([]*Variable, error)

	// Name identifies the operation for diagnostics, e.g. "MulBackward".
	Name() string

	// Base exposes the shared graph-connectivity state.
	Base() *FunctionBase

	// ReleaseSaved drops saved forward state once the graph segment will not
	// be reused. FunctionBase provides a no-op; operations holding saved
	// variables override it.
	ReleaseSaved()
}

// FunctionBase carries the graph-connectivity state common to every
// Function: sequence number, outgoing edges, expected gradient slots and
// backward hooks. Embed it by value and initialize with NewFunctionBase.
type FunctionBase struct {
	sequenceNr uint64

	// numInputs is the number of gradient slots this node receives, i.e. how
	// many Variables the forward operation produced.
	numInputs int

	// nextEdges has one entry per forward input, pointing at the Function
	// that produced it (or at a leaf's gradient accumulator).
	nextEdges []Edge

	// inputShapes records the shape of each forward output so that gradients
	// flowing into the corresponding slot can be validated.
	inputShapes []tensor.Shape

	preHooks  []PreHook
	postHooks []PostHook
}

// NewFunctionBase returns a FunctionBase with a fresh sequence number.
func NewFunctionBase() FunctionBase {
	return FunctionBase{sequenceNr: nextSequenceNr.Add(1)}
}

// Base returns the FunctionBase itself, satisfying the Function interface
// for types that embed it.
func (fb *FunctionBase) Base() *FunctionBase { return fb }

// ReleaseSaved is a no-op for functions without saved state.
func (fb *FunctionBase) ReleaseSaved() {}

// SequenceNr returns the construction-order sequence number.
func (fb *FunctionBase) SequenceNr() uint64 { return fb.sequenceNr }

// NumInputs returns the number of gradient slots this node expects.
func (fb *FunctionBase) NumInputs() int { return fb.numInputs }

// NextEdges returns the outgoing edges, one per forward input.
func (fb *FunctionBase) NextEdges() []Edge { return fb.nextEdges }

// SetNextEdges installs the outgoing edges. Called once during recording.
func (fb *FunctionBase) SetNextEdges(edges []Edge) { fb.nextEdges = edges }

// ShouldComputeOutput reports whether the gradient for forward input i is
// needed by anyone downstream. Backward formulas use this to skip work:
// an invalid edge means no gradient flows along that path.
func (fb *FunctionBase) ShouldComputeOutput(i int) bool {
	return i < len(fb.nextEdges) && fb.nextEdges[i].IsValid()
}

// AddInputMetadata registers one forward output and returns its slot index
// (the output_nr of the produced Variable).
func (fb *FunctionBase) AddInputMetadata(shape tensor.Shape) int {
	nr := fb.numInputs
	fb.numInputs++
	fb.inputShapes = append(fb.inputShapes, shape.Clone())
	return nr
}

// InputShape returns the expected shape for gradient slot i, or nil when the
// slot was registered without shape information.
func (fb *FunctionBase) InputShape(i int) tensor.Shape {
	if i < len(fb.inputShapes) {
		return fb.inputShapes[i]
	}
	return nil
}

// AddPreHook registers a callback invoked before Apply with the incoming
// output gradients. Hooks run in registration order.
func (fb *FunctionBase) AddPreHook(h PreHook) { fb.preHooks = append(fb.preHooks, h) }

// AddPostHook registers a callback invoked after Apply with the produced
// input gradients and the output gradients Apply consumed.
func (fb *FunctionBase) AddPostHook(h PostHook) { fb.postHooks = append(fb.postHooks, h) }
