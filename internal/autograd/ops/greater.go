package ops

import (
	"github.com/ember-ml/ember/internal/autograd"
)

// Greater returns the element-wise a > b comparison as a Bool tensor.
// Comparisons have no gradient: asking for one fails at call time rather
// than during backward.
func Greater(a, b *autograd.Variable) (*autograd.Variable, error) {
	if _, err := broadcastCheck("greater", a, b); err != nil {
		return nil, err
	}
	if autograd.ShouldRecord(a, b) {
		return nil, autograd.NotDifferentiable("greater")
	}
	out := autograd.NewResult(a.Backend().Greater(a.Data(), b.Data()), a.Backend())
	return out, nil
}
