package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/autograd/ops"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

func scalarLeaf(t *testing.T, v float64, requiresGrad bool) *autograd.Variable {
	t.Helper()
	raw, err := tensor.FromSlice([]float64{v}, tensor.Shape{})
	require.NoError(t, err)
	return autograd.NewLeaf(raw, cpu.New(), requiresGrad)
}

func vecLeaf(t *testing.T, data []float64, shape tensor.Shape) *autograd.Variable {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return autograd.NewLeaf(raw, cpu.New(), true)
}

// numericalGradient computes df/dx by central differences.
func numericalGradient(f func(float64) float64, x, eps float64) float64 {
	return (f(x+eps) - f(x-eps)) / (2 * eps)
}

// autodiffGradient differentiates op at x through the graph.
func autodiffGradient(t *testing.T, op func(*autograd.Variable) (*autograd.Variable, error), x float64) float64 {
	t.Helper()
	v := scalarLeaf(t, x, true)
	y, err := op(v)
	require.NoError(t, err)
	require.NoError(t, autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}))
	require.NotNil(t, v.Grad())
	return v.Grad().Item()
}

// TestUnaryGradients checks every unary backward formula against central
// differences.
func TestUnaryGradients(t *testing.T) {
	tests := []struct {
		name string
		op   func(*autograd.Variable) (*autograd.Variable, error)
		ref  func(float64) float64
		at   float64
	}{
		{"neg", ops.Neg, func(v float64) float64 { return -v }, 1.3},
		{"exp", ops.Exp, math.Exp, 0.7},
		{"log", ops.Log, math.Log, 2.1},
		{"sqrt", ops.Sqrt, math.Sqrt, 3.5},
		{"tanh", ops.Tanh, math.Tanh, 0.4},
		{"sigmoid", ops.Sigmoid, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, 0.9},
		{"relu_pos", ops.Relu, func(v float64) float64 { return math.Max(v, 0) }, 1.5},
		{"relu_neg", ops.Relu, func(v float64) float64 { return math.Max(v, 0) }, -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := autodiffGradient(t, tt.op, tt.at)
			want := numericalGradient(tt.ref, tt.at, 1e-6)
			if math.Abs(got-want) > 1e-4 {
				t.Errorf("gradient at %f = %f, numerical %f", tt.at, got, want)
			}
		})
	}
}

// TestBinaryGradients checks the binary backward formulas at a point.
func TestBinaryGradients(t *testing.T) {
	tests := []struct {
		name         string
		op           func(_, _ *autograd.Variable) (*autograd.Variable, error)
		a, b         float64
		wantA, wantB float64
	}{
		{"add", ops.Add, 2, 3, 1, 1},
		{"sub", ops.Sub, 2, 3, 1, -1},
		{"mul", ops.Mul, 2, 3, 3, 2},
		{"div", ops.Div, 2, 4, 0.25, -0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scalarLeaf(t, tt.a, true)
			b := scalarLeaf(t, tt.b, true)
			y, err := tt.op(a, b)
			require.NoError(t, err)
			require.NoError(t, autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}))
			if got := a.Grad().Item(); math.Abs(got-tt.wantA) > 1e-9 {
				t.Errorf("da = %f, want %f", got, tt.wantA)
			}
			if got := b.Grad().Item(); math.Abs(got-tt.wantB) > 1e-9 {
				t.Errorf("db = %f, want %f", got, tt.wantB)
			}
		})
	}
}

// TestBroadcastGradientReduction tests that gradients of broadcast operands
// are summed back to the operand shape.
func TestBroadcastGradientReduction(t *testing.T) {
	matrix := vecLeaf(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	row := vecLeaf(t, []float64{10, 20, 30}, tensor.Shape{3})

	sum, err := ops.Add(matrix, row)
	require.NoError(t, err)
	total, err := ops.Sum(sum)
	require.NoError(t, err)
	require.NoError(t, autograd.Backward([]*autograd.Variable{total}, autograd.BackwardOptions{}))

	require.True(t, row.Grad().Shape().Equal(tensor.Shape{3}))
	for i, g := range row.Grad().Data().AsFloat64() {
		if g != 2 {
			t.Errorf("row grad[%d] = %f, want 2 (summed over broadcast rows)", i, g)
		}
	}
	for i, g := range matrix.Grad().Data().AsFloat64() {
		if g != 1 {
			t.Errorf("matrix grad[%d] = %f, want 1", i, g)
		}
	}
}

// TestMatMulGradients tests dC/dA = g @ B^T and dC/dB = A^T @ g with a ones
// seed.
func TestMatMulGradients(t *testing.T) {
	a := vecLeaf(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := vecLeaf(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})

	c, err := ops.MatMul(a, b)
	require.NoError(t, err)
	total, err := ops.Sum(c)
	require.NoError(t, err)
	require.NoError(t, autograd.Backward([]*autograd.Variable{total}, autograd.BackwardOptions{}))

	// With g = ones: dA = ones @ B^T, row sums of B columns.
	wantA := []float64{11, 15, 11, 15}
	for i, g := range a.Grad().Data().AsFloat64() {
		if math.Abs(g-wantA[i]) > 1e-9 {
			t.Errorf("dA[%d] = %f, want %f", i, g, wantA[i])
		}
	}
	wantB := []float64{4, 4, 6, 6}
	for i, g := range b.Grad().Data().AsFloat64() {
		if math.Abs(g-wantB[i]) > 1e-9 {
			t.Errorf("dB[%d] = %f, want %f", i, g, wantB[i])
		}
	}
}

// TestShapeOpGradients tests reshape, transpose, expand and sumdim
// backward flows.
func TestShapeOpGradients(t *testing.T) {
	x := vecLeaf(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	r, err := ops.Reshape(x, tensor.Shape{3, 2})
	require.NoError(t, err)
	tr, err := ops.Transpose(r)
	require.NoError(t, err)
	sd, err := ops.SumDim(tr, 1, false)
	require.NoError(t, err)
	total, err := ops.Sum(sd)
	require.NoError(t, err)

	require.NoError(t, autograd.Backward([]*autograd.Variable{total}, autograd.BackwardOptions{}))
	require.True(t, x.Grad().Shape().Equal(tensor.Shape{2, 3}))
	for i, g := range x.Grad().Data().AsFloat64() {
		if g != 1 {
			t.Errorf("grad[%d] = %f, want 1", i, g)
		}
	}
}

// TestExpandGradient tests that expanded gradients sum back down.
func TestExpandGradient(t *testing.T) {
	x := vecLeaf(t, []float64{3}, tensor.Shape{1})
	e, err := ops.Expand(x, tensor.Shape{4})
	require.NoError(t, err)
	total, err := ops.Sum(e)
	require.NoError(t, err)
	require.NoError(t, autograd.Backward([]*autograd.Variable{total}, autograd.BackwardOptions{}))
	if g := x.Grad().Data().AsFloat64()[0]; g != 4 {
		t.Errorf("grad = %f, want 4", g)
	}
}

// TestVersionMismatch tests that mutating a saved operand in place breaks a
// later backward.
func TestVersionMismatch(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	m, err := ops.MulScalar(x, 1.0)
	require.NoError(t, err)
	y, err := ops.Mul(m, m)
	require.NoError(t, err)

	require.NoError(t, ops.AddScalarInPlace(m, 1.0))

	err = autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{})
	require.Error(t, err)
	require.ErrorIs(t, err, autograd.ErrVersionMismatch)
}

// TestConcurrentModification tests that a version bump landing while the
// backward pass is running is reported as a concurrent modification rather
// than a plain stale version.
func TestConcurrentModification(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	m, err := ops.MulScalar(x, 1.0)
	require.NoError(t, err)
	y, err := ops.Mul(m, m)
	require.NoError(t, err)

	var hookErr error
	y.GradFn().Base().AddPreHook(func(grads []*autograd.Variable) []*autograd.Variable {
		hookErr = ops.AddScalarInPlace(m, 1.0)
		return nil
	})

	err = autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{})
	require.NoError(t, hookErr)
	require.Error(t, err)
	require.ErrorIs(t, err, autograd.ErrConcurrentModification)
}

// TestInPlace_NoSavedState tests that in-place mutation is fine when no
// Function saved the variable.
func TestInPlace_NoSavedState(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	mid, err := ops.AddScalar(x, 1.0)
	require.NoError(t, err)
	y, err := ops.AddScalar(mid, 1.0)
	require.NoError(t, err)

	// AddScalar saves nothing, so mutating mid afterward is harmless.
	require.NoError(t, ops.AddScalarInPlace(mid, 10.0))
	require.NoError(t, autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}))
	require.InDelta(t, 1.0, x.Grad().Item(), 1e-12)
}

// TestInPlace_LeafRejected tests that a grad-requiring leaf cannot be
// mutated in place while gradient tracking is on, and can be once it is off.
func TestInPlace_LeafRejected(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	z := scalarLeaf(t, 1, true)

	require.ErrorIs(t, ops.AddScalarInPlace(x, 1.0), autograd.ErrInPlaceOnLeaf)
	require.ErrorIs(t, ops.AddInPlace(x, z), autograd.ErrInPlaceOnLeaf)
	require.InDelta(t, 2.0, x.Item(), 1e-12)

	restore := autograd.NoGrad()
	defer restore()
	require.NoError(t, ops.AddScalarInPlace(x, 1.0))
	require.InDelta(t, 3.0, x.Item(), 1e-12)
}

// TestAddInPlace_GradFlowsFromOther tests that adding a grad-requiring
// operand into a plain leaf records the mutation, so the operand's gradient
// survives downstream use of the target.
func TestAddInPlace_GradFlowsFromOther(t *testing.T) {
	target := scalarLeaf(t, 1, false)
	w := scalarLeaf(t, 5, true)

	require.NoError(t, ops.AddInPlace(target, w))
	require.False(t, target.IsLeaf())

	y, err := ops.MulScalar(target, 2.0)
	require.NoError(t, err)
	require.NoError(t, autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}))
	require.NotNil(t, w.Grad())
	require.InDelta(t, 2.0, w.Grad().Item(), 1e-12)
}

// TestAddInPlaceGradient tests gradient flow through a recorded in-place
// addition on a non-leaf.
func TestAddInPlaceGradient(t *testing.T) {
	x := scalarLeaf(t, 2, true)
	z := scalarLeaf(t, 5, true)

	mid, err := ops.MulScalar(x, 3.0)
	require.NoError(t, err)
	require.NoError(t, ops.AddInPlace(mid, z))
	require.Equal(t, "AddInPlaceBackward", mid.GradFn().Name())

	require.NoError(t, autograd.Backward([]*autograd.Variable{mid}, autograd.BackwardOptions{}))
	require.InDelta(t, 3.0, x.Grad().Item(), 1e-12)
	require.InDelta(t, 1.0, z.Grad().Item(), 1e-12)
}

// TestGreater_NotDifferentiable tests the call-time rejection and the
// no-grad escape hatch.
func TestGreater_NotDifferentiable(t *testing.T) {
	a := scalarLeaf(t, 2, true)
	b := scalarLeaf(t, 1, true)

	_, err := ops.Greater(a, b)
	require.Error(t, err)
	require.ErrorIs(t, err, autograd.ErrNotDifferentiable)

	restore := autograd.NoGrad()
	mask, err := ops.Greater(a, b)
	restore()
	require.NoError(t, err)
	require.Equal(t, tensor.Bool, mask.DType())
	require.True(t, mask.Data().AsBool()[0])
}

// TestScalarOps tests forward values alongside gradients.
func TestScalarOps(t *testing.T) {
	x := scalarLeaf(t, 4, true)
	y, err := ops.MulScalar(x, 2.5)
	require.NoError(t, err)
	require.InDelta(t, 10.0, y.Item(), 1e-12)

	require.NoError(t, autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}))
	require.InDelta(t, 2.5, x.Grad().Item(), 1e-12)
}

// TestHigherOrder_MulChain tests create-graph through the mul formula:
// y = x*x, dy/dx = 2x, d2y/dx2 = 2.
func TestHigherOrder_MulChain(t *testing.T) {
	x := scalarLeaf(t, 5, true)
	y, err := ops.Mul(x, x)
	require.NoError(t, err)

	first, err := autograd.Grad([]*autograd.Variable{y}, []*autograd.Variable{x},
		autograd.GradOptions{CreateGraph: true})
	require.NoError(t, err)
	require.InDelta(t, 10.0, first[0].Item(), 1e-12)

	second, err := autograd.Grad(first, []*autograd.Variable{x}, autograd.GradOptions{})
	require.NoError(t, err)
	require.InDelta(t, 2.0, second[0].Item(), 1e-12)
}
