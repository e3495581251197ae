package autograd

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/tensor"
)

// SavedVariable is a snapshot of a Variable taken when a Function captures
// it for backward. It remembers the version at save time so that later
// in-place mutation of the original is detected on unpack, and it can be
// released once backward has consumed it.
type SavedVariable struct {
	data     *tensor.RawTensor
	backend  tensor.Backend
	version  uint64
	counter  *VersionCounter
	gradFn   Function
	outputNr int

	requiresGrad bool

	// isOutput marks a Function saving one of its own outputs, in which
	// case the grad fn is the saving Function itself and is supplied at
	// unpack time to avoid a reference cycle.
	isOutput bool

	released bool
}

// SaveVariable captures v for use during backward. Pass isOutput=true when a
// Function saves one of its own outputs.
func SaveVariable(v *Variable, isOutput bool) *SavedVariable {
	if v == nil {
		return nil
	}
	sv := &SavedVariable{
		data:         v.Data(),
		backend:      v.Backend(),
		version:      v.Version(),
		counter:      v.VersionCounterRef(),
		requiresGrad: v.RequiresGrad(),
		isOutput:     isOutput,
	}
	if !isOutput {
		sv.gradFn = v.GradFn()
		sv.outputNr = v.OutputNr()
	}
	return sv
}

// Unpack rehydrates the saved Variable for use in a backward formula.
// savedFor is the Function that owns this snapshot; it becomes the grad fn
// when the snapshot was of that Function's own output.
func (sv *SavedVariable) Unpack(savedFor Function) (*Variable, error) {
	if sv == nil {
		return nil, nil
	}
	if sv.released || sv.data == nil {
		return nil, errors.WithMessagef(ErrGraphAlreadyFreed,
			"trying to use a saved tensor after it was released; specify retainGraph to backward through the graph a second time")
	}
	current := sv.counter.Current()
	if current != sv.version {
		base := ErrVersionMismatch
		if sv.counter.mutatedInBackward.Load() {
			base = ErrConcurrentModification
		}
		name := "<unknown>"
		if savedFor != nil {
			name = savedFor.Name()
		}
		return nil, errors.WithMessagef(base,
			"tensor saved for %s is at version %d, expected version %d",
			name, current, sv.version)
	}

	v := &Variable{
		data:         sv.data,
		backend:      sv.backend,
		requiresGrad: sv.requiresGrad,
		version:      sv.counter,
	}
	if sv.isOutput {
		v.gradFn = savedFor
		v.outputNr = sv.outputNr
	} else if sv.gradFn != nil {
		v.gradFn = sv.gradFn
		v.outputNr = sv.outputNr
	}
	return v, nil
}

// Release drops the snapshot's payload. Further Unpack calls fail with
// ErrGraphAlreadyFreed.
func (sv *SavedVariable) Release() {
	if sv == nil {
		return
	}
	sv.released = true
	sv.data = nil
	sv.gradFn = nil
}
