package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// divBackward differentiates z = a / b: dz/da = g / b, dz/db = -g * a / b^2.
type divBackward struct {
	autograd.FunctionBase
	a, b           *autograd.SavedVariable
	aShape, bShape tensor.Shape
}

func (f *divBackward) Name() string { return "DivBackward" }

func (f *divBackward) ReleaseSaved() {
	f.a.Release()
	f.b.Release()
}

func (f *divBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	b, err := f.b.Unpack(f)
	if err != nil {
		return nil, err
	}
	outs := make([]*autograd.Variable, 2)
	if f.ShouldComputeOutput(0) {
		ga, err := Div(g, b)
		if err != nil {
			return nil, err
		}
		if outs[0], err = reduceTo(ga, f.aShape); err != nil {
			return nil, err
		}
	}
	if f.ShouldComputeOutput(1) {
		a, err := f.a.Unpack(f)
		if err != nil {
			return nil, err
		}
		num, err := Mul(g, a)
		if err != nil {
			return nil, err
		}
		den, err := Mul(b, b)
		if err != nil {
			return nil, err
		}
		q, err := Div(num, den)
		if err != nil {
			return nil, err
		}
		gb, err := Neg(q)
		if err != nil {
			return nil, err
		}
		if outs[1], err = reduceTo(gb, f.bShape); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Div returns a / b, element-wise with NumPy-style broadcasting.
func Div(a, b *autograd.Variable) (*autograd.Variable, error) {
	if _, err := broadcastCheck("div", a, b); err != nil {
		return nil, err
	}
	out := autograd.NewResult(a.Backend().Div(a.Data(), b.Data()), a.Backend())
	if autograd.ShouldRecord(a, b) {
		fn := &divBackward{
			FunctionBase: autograd.NewFunctionBase(),
			a:            autograd.SaveVariable(a, false),
			b:            autograd.SaveVariable(b, false),
			aShape:       a.Shape().Clone(),
			bShape:       b.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{a, b}, out)
	}
	return out, nil
}
