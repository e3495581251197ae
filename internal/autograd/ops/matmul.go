package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
)

// matmulBackward: for z = a @ b, dz/da = g @ b^T and dz/db = a^T @ g.
type matmulBackward struct {
	autograd.FunctionBase
	a, b *autograd.SavedVariable
}

func (f *matmulBackward) Name() string { return "MatMulBackward" }

func (f *matmulBackward) ReleaseSaved() {
	f.a.Release()
	f.b.Release()
}

func (f *matmulBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
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
		bt, err := Transpose(b)
		if err != nil {
			return nil, err
		}
		if outs[0], err = MatMul(g, bt); err != nil {
			return nil, err
		}
	}
	if f.ShouldComputeOutput(1) {
		a, err := f.a.Unpack(f)
		if err != nil {
			return nil, err
		}
		at, err := Transpose(a)
		if err != nil {
			return nil, err
		}
		if outs[1], err = MatMul(at, g); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// MatMul returns the matrix product of two 2D Variables: (M, K) @ (K, N).
func MatMul(a, b *autograd.Variable) (*autograd.Variable, error) {
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, errors.Errorf("matmul: both operands must be 2D, got %v and %v", a.Shape(), b.Shape())
	}
	if a.Shape()[1] != b.Shape()[0] {
		return nil, errors.Errorf("matmul: inner dimensions do not match: %v @ %v", a.Shape(), b.Shape())
	}
	out := autograd.NewResult(a.Backend().MatMul(a.Data(), b.Data()), a.Backend())
	if autograd.ShouldRecord(a, b) {
		fn := &matmulBackward{
			FunctionBase: autograd.NewFunctionBase(),
			a:            autograd.SaveVariable(a, false),
			b:            autograd.SaveVariable(b, false),
		}
		autograd.Record(fn, []*autograd.Variable{a, b}, out)
	}
	return out, nil
}
