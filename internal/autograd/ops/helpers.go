package ops

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/tensor"
)

// broadcastCheck validates a binary operation's operands and returns the
// broadcast output shape. The backends panic on malformed shapes; checking
// here turns user mistakes into errors instead.
func broadcastCheck(name string, a, b *autograd.Variable) (tensor.Shape, error) {
	if a == nil || b == nil {
		return nil, errors.Errorf("%s: nil operand", name)
	}
	if a.DType() != b.DType() {
		return nil, errors.Errorf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType())
	}
	out, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return out, nil
}

// reduceTo sums grad down to shape, undoing the expansion broadcasting
// performed in forward. Goes through recorded operations so that
// higher-order backward differentiates through the reduction too.
func reduceTo(grad *autograd.Variable, shape tensor.Shape) (*autograd.Variable, error) {
	g := grad
	if g.Shape().Equal(shape) {
		return g, nil
	}
	var err error
	// Collapse the leading dimensions broadcasting prepended.
	for len(g.Shape()) > len(shape) {
		if g, err = SumDim(g, 0, false); err != nil {
			return nil, err
		}
	}
	// Then the dimensions stretched from size one.
	for i, n := range shape {
		if n == 1 && g.Shape()[i] != 1 {
			if g, err = SumDim(g, i, true); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// gradOut pulls the single output gradient, nil meaning an implicit zero
// that short-circuits the whole formula.
func gradOut(gradOutputs []*autograd.Variable) *autograd.Variable {
	if len(gradOutputs) == 0 {
		return nil
	}
	return gradOutputs[0]
}
