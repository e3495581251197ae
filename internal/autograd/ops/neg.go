package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

type negBackward struct {
	autograd.FunctionBase
}

func (f *negBackward) Name() string { return "NegBackward" }

func (f *negBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	ng, err := Neg(g)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{ng}, nil
}

// Neg returns -x.
func Neg(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Neg(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &negBackward{FunctionBase: autograd.NewFunctionBase()}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
