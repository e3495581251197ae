package autograd

// Edge identifies a particular input slot of a Function: during backward the
// gradient for that forward input flows along the edge into Function's slot
// InputNr. The zero Edge is invalid and marks "no gradient needed on this
// path"; the engine drops gradients sent along invalid edges.
type Edge struct {
	Function Function
	InputNr  int
}

// IsValid reports whether the edge points at a function.
func (e Edge) IsValid() bool {
	return e.Function != nil
}

// GradientEdge returns the edge describing where v's gradient should flow:
// the producing function's slot for non-leaves, the gradient accumulator for
// leaves that require grad, and an invalid edge otherwise.
func GradientEdge(v *Variable) Edge {
	if v == nil {
		return Edge{}
	}
	if fn := v.GradFn(); fn != nil {
		return Edge{Function: fn, InputNr: v.OutputNr()}
	}
	if v.RequiresGrad() {
		return Edge{Function: v.GradAccumulator(), InputNr: 0}
	}
	return Edge{}
}

// CollectNextEdges builds the outgoing edges for a new Function from its
// forward inputs. Returns nil when gradient tracking is disabled.
func CollectNextEdges(inputs ...*Variable) []Edge {
	if !GradEnabled() {
		return nil
	}
	edges := make([]Edge, len(inputs))
	for i, in := range inputs {
		edges[i] = GradientEdge(in)
	}
	return edges
}

// AnyRequiresGrad reports whether any input participates in the graph.
// The fast path: when false, recording is skipped entirely and outputs get no
// history.
func AnyRequiresGrad(inputs ...*Variable) bool {
	for _, in := range inputs {
		if in != nil && in.RequiresGrad() {
			return true
		}
	}
	return false
}
