package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// expandBackward sums the gradient back down to the pre-broadcast shape.
type expandBackward struct {
	autograd.FunctionBase
	inShape tensor.Shape
}

func (f *expandBackward) Name() string { return "ExpandBackward" }

func (f *expandBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	gx, err := reduceTo(g, f.inShape)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Expand broadcasts x to shape, materializing the result.
func Expand(x *autograd.Variable, shape tensor.Shape) (*autograd.Variable, error) {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		return nil, errors.Errorf("expand: cannot expand %v to %v", x.Shape(), shape)
	}
	out := autograd.NewResult(x.Backend().Expand(x.Data(), shape), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &expandBackward{
			FunctionBase: autograd.NewFunctionBase(),
			inShape:      x.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
