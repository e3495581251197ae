package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// sigmoidBackward: ds/dx = s * (1 - s) with s = out.
type sigmoidBackward struct {
	autograd.FunctionBase
	out *autograd.SavedVariable
}

func (f *sigmoidBackward) Name() string { return "SigmoidBackward" }

func (f *sigmoidBackward) ReleaseSaved() { f.out.Release() }

func (f *sigmoidBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
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
	ds, err := Sub(out, sq)
	if err != nil {
		return nil, err
	}
	gx, err := Mul(g, ds)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Sigmoid returns 1 / (1 + e^-x), element-wise.
func Sigmoid(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Sigmoid(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &sigmoidBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
		fn.out = autograd.SaveVariable(out, true)
	}
	return out, nil
}
