package autograd

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ember-ml/ember/internal/tensor"
)

// VersionCounter tracks in-place mutations of a Variable's payload. Saved
// variables snapshot the current value and detect staleness on unpack.
// Views of the same storage share one counter.
type VersionCounter struct {
	value atomic.Uint64

	// mutatedInBackward is set when a bump happens while a backward pass is
	// running, which turns a later stale read into a concurrent-modification
	// error instead of a plain version mismatch.
	mutatedInBackward atomic.Bool
}

// Current returns the current version.
func (vc *VersionCounter) Current() uint64 {
	return vc.value.Load()
}

// Bump records one in-place mutation.
func (vc *VersionCounter) Bump() {
	vc.value.Add(1)
	if backwardsInFlight.Load() > 0 {
		vc.mutatedInBackward.Store(true)
	}
}

// Variable wraps a tensor payload together with autograd bookkeeping: the
// accumulated gradient, the Function that produced it, the output slot it
// came from and the in-place version counter.
//
// A Variable is a leaf iff it has no grad fn. Only leaves accumulate into
// Grad; gradients of intermediate Variables are transient, consumed by the
// engine unless RetainGrad was called. Variables are shared by pointer: one
// output may be consumed by any number of downstream operations.
type Variable struct {
	data    *tensor.RawTensor
	backend tensor.Backend

	mu           sync.Mutex
	requiresGrad bool
	grad         *Variable
	gradFn       Function
	outputNr     int
	accumulator  Function
	retainsGrad  bool

	version *VersionCounter
}

// NewLeaf creates a user-owned leaf Variable.
func NewLeaf(data *tensor.RawTensor, backend tensor.Backend, requiresGrad bool) *Variable {
	if requiresGrad && !data.DType().IsFloat() {
		panic(fmt.Sprintf("only floating point variables can require gradients, got %s", data.DType()))
	}
	return &Variable{
		data:         data,
		backend:      backend,
		requiresGrad: requiresGrad,
		version:      &VersionCounter{},
	}
}

// NewResult creates a Variable holding the output of a forward operation.
// History (grad fn, output nr) is attached separately during recording.
func NewResult(data *tensor.RawTensor, backend tensor.Backend) *Variable {
	return &Variable{
		data:    data,
		backend: backend,
		version: &VersionCounter{},
	}
}

// Data returns the tensor payload.
func (v *Variable) Data() *tensor.RawTensor { return v.data }

// Backend returns the compute backend the Variable was created on.
func (v *Variable) Backend() tensor.Backend { return v.backend }

// Shape returns the payload shape.
func (v *Variable) Shape() tensor.Shape { return v.data.Shape() }

// DType returns the payload data type.
func (v *Variable) DType() tensor.DataType { return v.data.DType() }

// RequiresGrad reports whether the Variable participates in the graph.
func (v *Variable) RequiresGrad() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.requiresGrad || v.gradFn != nil
}

// SetRequiresGrad flips gradient tracking for a leaf Variable.
// Returns an error for non-leaves, whose requires-grad status is implied by
// their history.
func (v *Variable) SetRequiresGrad(requiresGrad bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gradFn != nil {
		return fmt.Errorf("cannot change requiresGrad on a non-leaf variable (produced by %s)", v.gradFn.Name())
	}
	if requiresGrad && !v.data.DType().IsFloat() {
		return fmt.Errorf("only floating point variables can require gradients, got %s", v.data.DType())
	}
	v.requiresGrad = requiresGrad
	return nil
}

// IsLeaf reports whether the Variable was created by the user rather than by
// a recorded operation.
func (v *Variable) IsLeaf() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gradFn == nil
}

// GradFn returns the Function that produced this Variable, or nil for
// leaves.
func (v *Variable) GradFn() Function {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gradFn
}

// OutputNr returns which output slot of GradFn this Variable corresponds to.
func (v *Variable) OutputNr() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.outputNr
}

// Grad returns the accumulated gradient, or nil if none has been written.
func (v *Variable) Grad() *Variable {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grad
}

// ZeroGrad clears the accumulated gradient.
func (v *Variable) ZeroGrad() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.grad = nil
}

// RetainGrad requests that this non-leaf Variable's gradient be kept in Grad
// when backward runs. Leaves always retain their gradient. Implemented as a
// pre-hook on the producing Function that copies out the buffered gradient
// for this Variable's slot just before the Function runs.
func (v *Variable) RetainGrad() {
	v.mu.Lock()
	fn := v.gradFn
	nr := v.outputNr
	if fn == nil || v.retainsGrad {
		v.retainsGrad = true
		v.mu.Unlock()
		return
	}
	v.retainsGrad = true
	v.mu.Unlock()

	fn.Base().AddPreHook(func(grads []*Variable) []*Variable {
		if nr < len(grads) && grads[nr] != nil {
			v.addGrad(grads[nr])
		}
		return grads
	})
}

func (v *Variable) retainsGradient() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gradFn == nil || v.retainsGrad
}

// Version returns the current in-place mutation count.
func (v *Variable) Version() uint64 {
	return v.version.Current()
}

// VersionCounterRef returns the shared version counter.
func (v *Variable) VersionCounterRef() *VersionCounter {
	return v.version
}

// BumpVersion records an in-place mutation of the payload.
func (v *Variable) BumpVersion() {
	v.version.Bump()
}

// SetHistory binds the Variable to the Function that produced it.
// Called by recording for every differentiable operation output, and by
// in-place operations rebinding a mutated Variable to the new Function that
// represents its value as of the mutation.
func (v *Variable) SetHistory(fn Function, outputNr int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gradFn = fn
	v.outputNr = outputNr
}

// GradAccumulator returns the terminal accumulation Function for a leaf,
// creating it on first use. All graph edges from consumers of a leaf share
// one accumulator so that fan-out sums correctly.
func (v *Variable) GradAccumulator() Function {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gradFn != nil {
		panic("gradAccumulator requested for a non-leaf variable")
	}
	if v.accumulator == nil {
		v.accumulator = newAccumulateGrad(v)
	}
	return v.accumulator
}

// addGrad folds a new gradient contribution into Grad.
// The first contribution is stored as-is (keeping any history it carries,
// which is what makes double backward through .grad possible); later
// contributions are summed via the backend.
func (v *Variable) addGrad(g *Variable) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.grad == nil {
		v.grad = g
		return
	}
	v.grad = recordedAdd(v.grad, g)
}

// Detach returns a new leaf Variable sharing the payload and version counter
// but carrying no history.
func (v *Variable) Detach() *Variable {
	v.mu.Lock()
	defer v.mu.Unlock()
	return &Variable{
		data:    v.data,
		backend: v.backend,
		version: v.version,
	}
}

// Item returns the single element of a scalar float Variable as float64.
// Convenience for tests and loss reporting.
func (v *Variable) Item() float64 {
	if !v.data.Shape().IsScalar() {
		panic(fmt.Sprintf("item: variable is not scalar, shape %v", v.data.Shape()))
	}
	switch v.data.DType() {
	case tensor.Float32:
		return float64(v.data.AsFloat32()[0])
	case tensor.Float64:
		return v.data.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("item: unsupported dtype %s", v.data.DType()))
	}
}
