package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// tanhBackward: d(tanh x)/dx = 1 - tanh^2 x = 1 - out^2.
type tanhBackward struct {
	autograd.FunctionBase
	out *autograd.SavedVariable
}

func (f *tanhBackward) Name() string { return "TanhBackward" }

func (f *tanhBackward) ReleaseSaved() { f.out.Release() }

func (f *tanhBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	out, err := f.out.Unpack(f)
	if err != nil {
		return nil, err
	}
	sq, err := Mul(out, out)
	if err != nil {
		return nil, err
	}
	gOut, err := Mul(g, sq)
	if err != nil {
		return nil, err
	}
	gx, err := Sub(g, gOut)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Tanh returns the hyperbolic tangent, element-wise.
func Tanh(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Tanh(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &tanhBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
		fn.out = autograd.SaveVariable(out, true)
	}
	return out, nil
}
