package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// addInPlaceBackward differentiates target.add_(other): the mutated
// Variable's gradient passes through to the pre-mutation value and,
// reduced over broadcasting, to other.
type addInPlaceBackward struct {
	autograd.FunctionBase
	otherShape tensor.Shape
}

func (f *addInPlaceBackward) Name() string { return "AddInPlaceBackward" }

func (f *addInPlaceBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	outs := make([]*autograd.Variable, 2)
	outs[0] = g
	if f.ShouldComputeOutput(1) {
		var err error
		if outs[1], err = reduceTo(g, f.otherShape); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// AddInPlace adds other into target's storage, bumping target's version.
// Functions that saved target before the mutation will refuse to unpack it.
// Rejects grad-requiring leaf targets under gradient tracking.
func AddInPlace(target, other *autograd.Variable) error {
	outShape, err := broadcastCheck("add_", target, other)
	if err != nil {
		return err
	}
	if !outShape.Equal(target.Shape()) {
		return errors.Errorf("add_: broadcasting would grow %v to %v", target.Shape(), outShape)
	}
	if err := autograd.CheckInPlace(target); err != nil {
		return err
	}
	target.Data().CopyFrom(target.Backend().Add(target.Data(), other.Data()))
	fn := &addInPlaceBackward{
		FunctionBase: autograd.NewFunctionBase(),
		otherShape:   other.Shape().Clone(),
	}
	autograd.RecordInPlace(fn, target, target, other)
	return nil
}

// addScalarInPlaceBackward passes the gradient straight through.
type addScalarInPlaceBackward struct {
	autograd.FunctionBase
}

func (f *addScalarInPlaceBackward) Name() string { return "AddScalarInPlaceBackward" }

func (f *addScalarInPlaceBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	return []*autograd.Variable{gradOut(gradOutputs)}, nil
}

// AddScalarInPlace adds a scalar into target's storage, bumping its version.
// Rejects grad-requiring leaf targets under gradient tracking.
func AddScalarInPlace(target *autograd.Variable, scalar any) error {
	if err := autograd.CheckInPlace(target); err != nil {
		return err
	}
	target.Data().CopyFrom(target.Backend().AddScalar(target.Data(), scalar))
	fn := &addScalarInPlaceBackward{FunctionBase: autograd.NewFunctionBase()}
	autograd.RecordInPlace(fn, target, target)
	return nil
}
