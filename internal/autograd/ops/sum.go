package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// sumBackward broadcasts the scalar gradient back over the input shape.
type sumBackward struct {
	autograd.FunctionBase
	inShape tensor.Shape
}

func (f *sumBackward) Name() string { return "SumBackward" }

func (f *sumBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	gx, err := Expand(g, f.inShape)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Sum reduces all of x to a rank-0 scalar.
func Sum(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Sum(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &sumBackward{
			FunctionBase: autograd.NewFunctionBase(),
			inShape:      x.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}

// sumDimBackward re-inserts the reduced dimension (when it was dropped) and
// broadcasts over it.
type sumDimBackward struct {
	autograd.FunctionBase
	inShape tensor.Shape
	dim     int
	keepDim bool
}

func (f *sumDimBackward) Name() string { return "SumDimBackward" }

func (f *sumDimBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	var err error
	if !f.keepDim {
		kept := f.inShape.Clone()
		kept[f.dim] = 1
		if g, err = Reshape(g, kept); err != nil {
			return nil, err
		}
	}
	gx, err := Expand(g, f.inShape)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// SumDim sums x along dim. With keepDim the reduced dimension remains as
// size 1.
func SumDim(x *autograd.Variable, dim int, keepDim bool) (*autograd.Variable, error) {
	if dim < 0 || dim >= len(x.Shape()) {
		return nil, errors.Errorf("sumDim: invalid dimension %d for shape %v", dim, x.Shape())
	}
	out := autograd.NewResult(x.Backend().SumDim(x.Data(), dim, keepDim), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &sumDimBackward{
			FunctionBase: autograd.NewFunctionBase(),
			inShape:      x.Shape().Clone(),
			dim:          dim,
			keepDim:      keepDim,
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
