package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
)

type transposeBackward struct {
	autograd.FunctionBase
	// inverse undoes the forward permutation.
	inverse []int
}

func (f *transposeBackward) Name() string { return "TransposeBackward" }

func (f *transposeBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	gx, err := Transpose(g, f.inverse...)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Transpose permutes x's dimensions. With no axes given, the order is
// reversed.
func Transpose(x *autograd.Variable, axes ...int) (*autograd.Variable, error) {
	ndim := len(x.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		return nil, errors.Errorf("transpose: %d axes for %dD tensor", len(axes), ndim)
	}
	inverse := make([]int, ndim)
	seen := make([]bool, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			return nil, errors.Errorf("transpose: invalid axes %v for %dD tensor", axes, ndim)
		}
		seen[ax] = true
		inverse[ax] = i
	}

	out := autograd.NewResult(x.Backend().Transpose(x.Data(), axes...), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &transposeBackward{
			FunctionBase: autograd.NewFunctionBase(),
			inverse:      inverse,
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
