package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// sqrtBackward: d(sqrt x)/dx = 1 / (2 * sqrt x) = 0.5 / out.
type sqrtBackward struct {
	autograd.FunctionBase
	out *autograd.SavedVariable
}

func (f *sqrtBackward) Name() string { return "SqrtBackward" }

func (f *sqrtBackward) ReleaseSaved() { f.out.Release() }

func (f *sqrtBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	out, err := f.out.Unpack(f)
	if err != nil {
		return nil, err
	}
	q, err := Div(g, out)
	if err != nil {
		return nil, err
	}
	gx, err := MulScalar(q, 0.5)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Sqrt returns the square root, element-wise.
func Sqrt(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Sqrt(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &sqrtBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
		fn.out = autograd.SaveVariable(out, true)
	}
	return out, nil
}
