package autograd

import (
	"github.com/pkg/errors"
)

// GraphRoot is the synthetic Function the engine starts a backward pass
// from. Its outputs are the seed gradients for the real roots.
type GraphRoot struct {
	FunctionBase
	grads []*Variable
}

// NewGraphRoot builds a root over the given edges, seeded with grads.
func NewGraphRoot(edges []Edge, grads []*Variable) *GraphRoot {
	r := &GraphRoot{FunctionBase: NewFunctionBase(), grads: grads}
	r.SetNextEdges(edges)
	return r
}

func (r *GraphRoot) Name() string { return "GraphRoot" }

func (r *GraphRoot) Apply(gradOutputs []*Variable) ([]*Variable, error) {
	return r.grads, nil
}

// ErrorFunction fails any backward pass that reaches it with a fixed
// message. It stands in for operations whose backward is not implemented.
type ErrorFunction struct {
	FunctionBase
	msg string
}

// NewErrorFunction creates an ErrorFunction raising msg.
func NewErrorFunction(msg string) *ErrorFunction {
	return &ErrorFunction{FunctionBase: NewFunctionBase(), msg: msg}
}

func (e *ErrorFunction) Name() string { return "ErrorFunction" }

func (e *ErrorFunction) Apply(gradOutputs []*Variable) ([]*Variable, error) {
	return nil, errors.WithMessage(ErrBackwardNotImplemented, e.msg)
}

// DelayedError wraps forward results so that the failure surfaces only if
// and when backward actually flows through them.
type DelayedError struct {
	FunctionBase
	msg string
}

// NewDelayedError creates a DelayedError raising msg on backward.
func NewDelayedError(msg string, numInputs int) *DelayedError {
	d := &DelayedError{FunctionBase: NewFunctionBase(), msg: msg}
	for i := 0; i < numInputs; i++ {
		d.AddInputMetadata(nil)
	}
	return d
}

func (d *DelayedError) Name() string { return "DelayedError" }

func (d *DelayedError) Apply(gradOutputs []*Variable) ([]*Variable, error) {
	return nil, errors.WithMessage(ErrBackwardNotImplemented, d.msg)
}

// WrapDelayed returns copies of inputs whose backward raises msg. The
// forward values are untouched.
func WrapDelayed(msg string, inputs ...*Variable) []*Variable {
	outputs := make([]*Variable, len(inputs))
	fn := NewErrorFunction(msg)
	fn.SetNextEdges(CollectNextEdges(inputs...))
	for i, in := range inputs {
		out := NewResult(in.Data(), in.Backend())
		if GradEnabled() && AnyRequiresGrad(inputs...) {
			slot := fn.Base().AddInputMetadata(in.Shape())
			out.SetHistory(fn, slot)
		}
		outputs[i] = out
	}
	return outputs
}
