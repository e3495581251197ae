package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// expBackward saves the forward output: d(e^x)/dx = e^x = out.
type expBackward struct {
	autograd.FunctionBase
	out *autograd.SavedVariable
}

func (f *expBackward) Name() string { return "ExpBackward" }

func (f *expBackward) ReleaseSaved() { f.out.Release() }

func (f *expBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	out, err := f.out.Unpack(f)
	if err != nil {
		return nil, err
	}
	gx, err := Mul(g, out)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Exp returns e^x, element-wise.
func Exp(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Exp(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &expBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
		fn.out = autograd.SaveVariable(out, true)
	}
	return out, nil
}
