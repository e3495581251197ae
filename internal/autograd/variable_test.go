package autograd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/autograd/ops"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

func leaf(t *testing.T, data []float64, shape tensor.Shape, requiresGrad bool) *autograd.Variable {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return autograd.NewLeaf(raw, cpu.New(), requiresGrad)
}

func scalarLeaf(t *testing.T, v float64, requiresGrad bool) *autograd.Variable {
	t.Helper()
	return leaf(t, []float64{v}, tensor.Shape{}, requiresGrad)
}

// TestVariable_LeafState tests the basic leaf bookkeeping.
func TestVariable_LeafState(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	assert.True(t, x.IsLeaf())
	assert.True(t, x.RequiresGrad())
	assert.Nil(t, x.GradFn())
	assert.Nil(t, x.Grad())
	assert.Equal(t, uint64(0), x.Version())
}

// TestVariable_SetRequiresGrad tests flipping gradient tracking on leaves
// and the non-leaf rejection.
func TestVariable_SetRequiresGrad(t *testing.T) {
	x := scalarLeaf(t, 1, false)
	assert.False(t, x.RequiresGrad())
	require.NoError(t, x.SetRequiresGrad(true))
	assert.True(t, x.RequiresGrad())

	y, err := ops.Mul(x, x)
	require.NoError(t, err)
	require.NotNil(t, y.GradFn())
	assert.Error(t, y.SetRequiresGrad(false))
}

// TestVariable_SetRequiresGrad_IntRejected tests that integer variables
// cannot require gradients.
func TestVariable_SetRequiresGrad_IntRejected(t *testing.T) {
	raw, err := tensor.FromSlice([]int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	x := autograd.NewLeaf(raw, cpu.New(), false)
	assert.Error(t, x.SetRequiresGrad(true))
}

// TestVariable_NonLeafHistory tests that recorded outputs carry history.
func TestVariable_NonLeafHistory(t *testing.T) {
	x := scalarLeaf(t, 3, true)
	y, err := ops.Mul(x, x)
	require.NoError(t, err)

	assert.False(t, y.IsLeaf())
	assert.True(t, y.RequiresGrad())
	require.NotNil(t, y.GradFn())
	assert.Equal(t, "MulBackward", y.GradFn().Name())
	assert.Equal(t, 0, y.OutputNr())
}

// TestVariable_Detach tests that Detach drops history but shares payload
// and version counter.
func TestVariable_Detach(t *testing.T) {
	x := scalarLeaf(t, 3, true)
	y, err := ops.Mul(x, x)
	require.NoError(t, err)

	d := y.Detach()
	assert.True(t, d.IsLeaf())
	assert.False(t, d.RequiresGrad())
	assert.Same(t, y.Data(), d.Data())

	d.BumpVersion()
	assert.Equal(t, uint64(1), y.Version())
}

// TestVariable_BumpVersion tests in-place mutation counting.
func TestVariable_BumpVersion(t *testing.T) {
	x := scalarLeaf(t, 1, true)
	x.BumpVersion()
	x.BumpVersion()
	assert.Equal(t, uint64(2), x.Version())
}

// TestGradMode tests the ambient recording flag and its restore guard.
func TestGradMode(t *testing.T) {
	assert.True(t, autograd.GradEnabled())

	restore := autograd.NoGrad()
	assert.False(t, autograd.GradEnabled())
	restore()
	assert.True(t, autograd.GradEnabled())

	func() {
		defer autograd.SetGradEnabled(false)()
		assert.False(t, autograd.GradEnabled())
	}()
	assert.True(t, autograd.GradEnabled())
}

// TestNoGrad_FastPath tests that operations under NoGrad record nothing.
func TestNoGrad_FastPath(t *testing.T) {
	x := scalarLeaf(t, 2, true)

	restore := autograd.NoGrad()
	y, err := ops.Mul(x, x)
	restore()

	require.NoError(t, err)
	assert.Nil(t, y.GradFn())
	assert.True(t, y.IsLeaf())
	assert.InDelta(t, 4.0, y.Item(), 1e-12)
}

// TestGradientEdge tests edge construction for leaves, non-leaves and
// untracked variables.
func TestGradientEdge(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	edge := autograd.GradientEdge(x)
	require.True(t, edge.IsValid())
	assert.Equal(t, "AccumulateGrad", edge.Function.Name())

	// The accumulator is shared across calls.
	again := autograd.GradientEdge(x)
	assert.Same(t, edge.Function, again.Function)

	y, err := ops.Mul(x, x)
	require.NoError(t, err)
	edge = autograd.GradientEdge(y)
	require.True(t, edge.IsValid())
	assert.Same(t, y.GradFn(), edge.Function)

	plain := scalarLeaf(t, 1, false)
	assert.False(t, autograd.GradientEdge(plain).IsValid())
}
