package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

type subBackward struct {
	autograd.FunctionBase
	aShape, bShape tensor.Shape
}

func (f *subBackward) Name() string { return "SubBackward" }

func (f *subBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	outs := make([]*autograd.Variable, 2)
	var err error
	if f.ShouldComputeOutput(0) {
		if outs[0], err = reduceTo(g, f.aShape); err != nil {
			return nil, err
		}
	}
	if f.ShouldComputeOutput(1) {
		neg, err := Neg(g)
		if err != nil {
			return nil, err
		}
		if outs[1], err = reduceTo(neg, f.bShape); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Sub returns a - b with NumPy-style broadcasting.
func Sub(a, b *autograd.Variable) (*autograd.Variable, error) {
	if _, err := broadcastCheck("sub", a, b); err != nil {
		return nil, err
	}
	out := autograd.NewResult(a.Backend().Sub(a.Data(), b.Data()), a.Backend())
	if autograd.ShouldRecord(a, b) {
		fn := &subBackward{
			FunctionBase: autograd.NewFunctionBase(),
			aShape:       a.Shape().Clone(),
			bShape:       b.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{a, b}, out)
	}
	return out, nil
}
