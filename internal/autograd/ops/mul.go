package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// mulBackward differentiates z = a * b: dz/da = g * b, dz/db = g * a.
// Both operands are saved; mutating either in place between forward and
// backward invalidates the snapshot and backward reports it.
type mulBackward struct {
	autograd.FunctionBase
	a, b           *autograd.SavedVariable
	aShape, bShape tensor.Shape
}

func (f *mulBackward) Name() string { return "MulBackward" }

func (f *mulBackward) ReleaseSaved() {
	f.a.Release()
	f.b.Release()
}

func (f *mulBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	outs := make([]*autograd.Variable, 2)
	if f.ShouldComputeOutput(0) {
		b, err := f.b.Unpack(f)
		if err != nil {
			return nil, err
		}
		ga, err := Mul(g, b)
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
		gb, err := Mul(g, a)
		if err != nil {
			return nil, err
		}
		if outs[1], err = reduceTo(gb, f.bShape); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Mul returns a * b, element-wise with NumPy-style broadcasting.
func Mul(a, b *autograd.Variable) (*autograd.Variable, error) {
	if _, err := broadcastCheck("mul", a, b); err != nil {
		return nil, err
	}
	out := autograd.NewResult(a.Backend().Mul(a.Data(), b.Data()), a.Backend())
	if autograd.ShouldRecord(a, b) {
		fn := &mulBackward{
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
