package autograd

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/tensor"
)

// BackwardOptions configure a Backward call.
type BackwardOptions struct {
	// Gradients seed each root; nil entries (or a nil slice) mean an
	// implicit ones seed, which is only legal for scalar roots.
	Gradients []*Variable

	// RetainGraph keeps saved state so the graph can be backed through
	// again. CreateGraph additionally records the backward pass, enabling
	// higher-order derivatives.
	RetainGraph bool
	CreateGraph bool

	// Inputs restricts accumulation to these Variables. Leaves among them
	// get their Grad field updated as usual; other leaves on the graph are
	// skipped, along with every branch no listed input depends on.
	Inputs []*Variable
}

// Backward runs reverse-mode differentiation from roots, accumulating
// gradients into the Grad field of every reachable leaf that requires grad
// (or only into opts.Inputs when given).
func Backward(roots []*Variable, opts BackwardOptions) error {
	rootEdges, seeds, err := makeRoots(roots, opts.Gradients)
	if err != nil {
		return err
	}

	var captures []capture
	var accTargets []Function
	for _, in := range opts.Inputs {
		edge := GradientEdge(in)
		if !edge.IsValid() {
			return errors.New("one of the input variables does not require grad")
		}
		if in.IsLeaf() {
			accTargets = append(accTargets, edge.Function)
			continue
		}
		// The capture is the only accumulation path for a non-leaf input:
		// pairing it with a retain-grad hook would double the gradient
		// whenever the producing function also executes.
		captures = append(captures, capture{
			fn:          edge.Function,
			slot:        edge.InputNr,
			resultIndex: -1,
			variable:    in,
		})
	}

	engineOpts := Options{RetainGraph: opts.RetainGraph, CreateGraph: opts.CreateGraph}
	if _, err := defaultEngine.Execute(rootEdges, seeds, engineOpts, captures, accTargets, 0); err != nil {
		return err
	}
	synchronize(roots)
	return nil
}

// GradOptions configure a Grad call.
type GradOptions struct {
	Gradients   []*Variable
	RetainGraph bool
	CreateGraph bool

	// AllowUnused permits inputs the outputs do not depend on; their
	// gradient comes back nil instead of raising an error.
	AllowUnused bool
}

// Grad computes the gradients of outputs with respect to inputs and returns
// them, one per input, without touching any Variable's Grad field.
func Grad(outputs, inputs []*Variable, opts GradOptions) ([]*Variable, error) {
	if len(inputs) == 0 {
		return nil, errors.New("grad requires at least one input variable")
	}
	rootEdges, seeds, err := makeRoots(outputs, opts.Gradients)
	if err != nil {
		return nil, err
	}

	captures := make([]capture, len(inputs))
	for i, in := range inputs {
		edge := GradientEdge(in)
		if !edge.IsValid() {
			return nil, errors.New("one of the input variables does not require grad")
		}
		captures[i] = capture{fn: edge.Function, slot: edge.InputNr, resultIndex: i}
	}

	engineOpts := Options{RetainGraph: opts.RetainGraph, CreateGraph: opts.CreateGraph}
	results, err := defaultEngine.Execute(rootEdges, seeds, engineOpts, captures, nil, len(inputs))
	if err != nil {
		return nil, err
	}
	if !opts.AllowUnused {
		for i, g := range results {
			if g == nil {
				return nil, errors.Errorf(
					"input %d appears to not have been used in the graph; set AllowUnused if this is intended", i)
			}
		}
	}
	synchronize(outputs)
	return results, nil
}

// makeRoots validates the differentiated variables and builds the seed
// gradient for each: the caller's seed when given, an implicit ones tensor
// for scalar roots otherwise.
func makeRoots(roots, grads []*Variable) ([]Edge, []*Variable, error) {
	if len(roots) == 0 {
		return nil, nil, errors.New("backward requires at least one root variable")
	}
	if grads != nil && len(grads) != len(roots) {
		return nil, nil, errors.Errorf("got %d seed gradients for %d roots", len(grads), len(roots))
	}

	edges := make([]Edge, len(roots))
	seeds := make([]*Variable, len(roots))
	for i, root := range roots {
		if root == nil {
			return nil, nil, errors.Errorf("root %d is nil", i)
		}
		edge := GradientEdge(root)
		if !edge.IsValid() {
			return nil, nil, errors.Errorf(
				"element %d of the differentiated variables does not require grad and does not have a grad fn", i)
		}
		edges[i] = edge

		var seed *Variable
		if grads != nil {
			seed = grads[i]
		}
		if seed == nil {
			if !root.Shape().IsScalar() {
				return nil, nil, errors.Errorf(
					"grad can be implicitly created only for scalar outputs, root %d has shape %v", i, root.Shape())
			}
			seed = NewLeaf(tensor.OnesLike(root.Data()), root.Backend(), false)
		} else if !seed.Shape().Equal(root.Shape()) {
			return nil, nil, errors.WithMessagef(ErrGradientShapeMismatch,
				"seed gradient %d has shape %v, root has shape %v", i, seed.Shape(), root.Shape())
		}
		seeds[i] = seed
	}
	return edges, seeds, nil
}

// synchronize flushes any asynchronous backend work before gradients are
// handed to the caller.
func synchronize(roots []*Variable) {
	for _, r := range roots {
		if s, ok := r.Backend().(tensor.Synchronizer); ok {
			s.Synchronize()
			return
		}
	}
}
