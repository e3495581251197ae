package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

type addBackward struct {
	autograd.FunctionBase
	aShape, bShape tensor.Shape
}

func (f *addBackward) Name() string { return "AddBackward" }

func (f *addBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
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
		if outs[1], err = reduceTo(g, f.bShape); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Add returns a + b with NumPy-style broadcasting.
func Add(a, b *autograd.Variable) (*autograd.Variable, error) {
	if _, err := broadcastCheck("add", a, b); err != nil {
		return nil, err
	}
	out := autograd.NewResult(a.Backend().Add(a.Data(), b.Data()), a.Backend())
	if autograd.ShouldRecord(a, b) {
		fn := &addBackward{
			FunctionBase: autograd.NewFunctionBase(),
			aShape:       a.Shape().Clone(),
			bShape:       b.Shape().Clone(),
		}
		autograd.Record(fn, []*autograd.Variable{a, b}, out)
	}
	return out, nil
}
