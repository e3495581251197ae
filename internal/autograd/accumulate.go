package autograd

import (
	"github.com/pkg/errors"
)

// accumulateGrad is the terminal node behind every leaf that requires grad.
// It validates the incoming gradient's shape and folds it into the leaf's
// Grad field. One accumulator exists per leaf, shared by all consumers, so
// fan-out contributions sum correctly and repeated backward passes keep
// accumulating.
type accumulateGrad struct {
	FunctionBase
	variable *Variable
}

func newAccumulateGrad(v *Variable) Function {
	// Top sequence number so accumulation runs as soon as it becomes ready,
	// letting the leaf gradient be observed before unrelated branches finish.
	fn := &accumulateGrad{
		FunctionBase: FunctionBase{sequenceNr: ^uint64(0)},
		variable:     v,
	}
	fn.AddInputMetadata(v.Shape())
	return fn
}

func (a *accumulateGrad) Name() string { return "AccumulateGrad" }

func (a *accumulateGrad) Apply(gradOutputs []*Variable) ([]*Variable, error) {
	if len(gradOutputs) == 0 || gradOutputs[0] == nil {
		return nil, nil
	}
	g := gradOutputs[0]
	if !g.Shape().Equal(a.variable.Shape()) {
		return nil, errors.WithMessagef(ErrGradientShapeMismatch,
			"accumulating gradient of shape %v into variable of shape %v",
			g.Shape(), a.variable.Shape())
	}
	a.variable.addGrad(g)
	return nil, nil
}

// gradSum is the recorded form of gradient addition. It exists so that
// summing two same-shape gradients stays differentiable: when grad mode is
// on during a backward pass (create-graph), the sum itself joins the graph
// and higher-order backward flows through both contributions.
type gradSum struct {
	FunctionBase
}

func (g *gradSum) Name() string { return "GradSumBackward" }

func (g *gradSum) Apply(gradOutputs []*Variable) ([]*Variable, error) {
	grad := gradOutputs[0]
	return []*Variable{grad, grad}, nil
}

// recordedAdd sums two same-shape gradient Variables, recording the addition
// when gradient tracking is active.
func recordedAdd(a, b *Variable) *Variable {
	sum := a.Backend().Add(a.Data(), b.Data())
	out := NewResult(sum, a.Backend())
	if GradEnabled() && AnyRequiresGrad(a, b) {
		fn := &gradSum{FunctionBase: NewFunctionBase()}
		fn.SetNextEdges(CollectNextEdges(a, b))
		slot := fn.AddInputMetadata(out.Data().Shape())
		out.SetHistory(fn, slot)
	}
	return out
}
