package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// reluBackward masks the gradient where the input was non-positive.
type reluBackward struct {
	autograd.FunctionBase
	x *autograd.SavedVariable
}

func (f *reluBackward) Name() string { return "ReluBackward" }

func (f *reluBackward) ReleaseSaved() { f.x.Release() }

func (f *reluBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	x, err := f.x.Unpack(f)
	if err != nil {
		return nil, err
	}
	mask := reluMask(x.Backend(), x.Data())
	gx, err := Mul(g, autograd.NewLeaf(mask, x.Backend(), false))
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

func reluMask(backend tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
	positive := backend.Greater(x, tensor.ZerosLike(x))
	return backend.Cast(positive, x.DType())
}

// Relu returns max(x, 0), element-wise.
func Relu(x *autograd.Variable) (*autograd.Variable, error) {
	mask := reluMask(x.Backend(), x.Data())
	out := autograd.NewResult(x.Backend().Mul(x.Data(), mask), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &reluBackward{
			FunctionBase: autograd.NewFunctionBase(),
			x:            autograd.SaveVariable(x, false),
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
