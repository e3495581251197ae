package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// addScalarBackward: the scalar contributes nothing, the gradient passes
// through unchanged.
type addScalarBackward struct {
	autograd.FunctionBase
}

func (f *addScalarBackward) Name() string { return "AddScalarBackward" }

func (f *addScalarBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	return []*autograd.Variable{gradOut(gradOutputs)}, nil
}

// AddScalar returns x + scalar, element-wise.
func AddScalar(x *autograd.Variable, scalar any) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().AddScalar(x.Data(), scalar), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &addScalarBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}

type mulScalarBackward struct {
	autograd.FunctionBase
	scalar any
}

func (f *mulScalarBackward) Name() string { return "MulScalarBackward" }

func (f *mulScalarBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	gx, err := MulScalar(g, f.scalar)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// MulScalar returns x * scalar, element-wise.
func MulScalar(x *autograd.Variable, scalar any) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().MulScalar(x.Data(), scalar), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &mulScalarBackward{FunctionBase: autograd.NewFunctionBase(), scalar: scalar}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
