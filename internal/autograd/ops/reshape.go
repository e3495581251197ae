package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

type reshapeBackward struct {
	autograd.FunctionBase
	inShape tensor.Shape
}

func (f *reshapeBackward) Name() string { return "ReshapeBackward" }

func (f *reshapeBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	gx, err := Reshape(g, f.inShape)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Reshape returns x viewed with a new shape holding the same elements.
func Reshape(x *autograd.Variable, shape tensor.Shape) (*autograd.Variable, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, "reshape")
	}
	if x.Shape().NumElements() != shape.NumElements() {
		return nil, errors.Errorf("reshape: cannot view %v as %v", x.Shape(), shape)
	}
	out := autograd.NewResult(x.Backend().Reshape(x.Data(), shape), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &reshapeBackward{
			FunctionBase: autograd.NewFunctionBase(),
			inShape:      x.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
