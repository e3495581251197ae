package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// logBackward: d(ln x)/dx = 1/x.
type logBackward struct {
	autograd.FunctionBase
	x *autograd.SavedVariable
}

func (f *logBackward) Name() string { return "LogBackward" }

func (f *logBackward) ReleaseSaved() { f.x.Release() }

func (f *logBackward) Apply(gradOutputs []*autograd.Variable) ([]*autograd.Variable, error) {
	g := gradOut(gradOutputs)
	if g == nil {
		return nil, nil
	}
	x, err := f.x.Unpack(f)
	if err != nil {
		return nil, err
	}
	gx, err := Div(g, x)
	if err != nil {
		return nil, err
	}
	return []*autograd.Variable{gx}, nil
}

// Log returns the natural logarithm, element-wise.
func Log(x *autograd.Variable) (*autograd.Variable, error) {
	out := autograd.NewResult(x.Backend().Log(x.Data()), x.Backend())
	if autograd.ShouldRecord(x) {
		fn := &logBackward{
			FunctionBase: autograd.NewFunctionBase(),
			x:            autograd.SaveVariable(x, false),
		}
		autograd.Record(fn, []*autograd.Variable{x}, out)
	}
	return out, nil
}
