package cpu_test

import (
	"math"
	"testing"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// TestUnaryOps tests the element-wise math functions against the stdlib.
func TestUnaryOps(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{0.5, 1, 2}, tensor.Shape{3})

	tests := []struct {
		name string
		op   func(*tensor.RawTensor) *tensor.RawTensor
		ref  func(float64) float64
	}{
		{"neg", b.Neg, func(v float64) float64 { return -v }},
		{"exp", b.Exp, math.Exp},
		{"log", b.Log, math.Log},
		{"sqrt", b.Sqrt, math.Sqrt},
		{"tanh", b.Tanh, math.Tanh},
		{"sigmoid", b.Sigmoid, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }},
	}
	for _, tt := range tests {
		got := tt.op(x).AsFloat32()
		for i, in := range x.AsFloat32() {
			want := tt.ref(float64(in))
			if math.Abs(float64(got[i])-want) > 1e-6 {
				t.Errorf("%s(%f) = %f, want %f", tt.name, in, got[i], want)
			}
		}
	}
}

// TestMatMul tests 2D matrix multiplication.
func TestMatMul(t *testing.T) {
	b := cpu.New()
	// (2x3) @ (3x2)
	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := fromF32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	got := b.MatMul(x, y)
	if !got.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v, want [2 2]", got.Shape())
	}
	want := []float32{58, 64, 139, 154}
	for i, v := range got.AsFloat32() {
		if v != want[i] {
			t.Errorf("matmul[%d] = %f, want %f", i, v, want[i])
		}
	}
}

// TestSum tests full reduction to a rank-0 scalar.
func TestSum(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	got := b.Sum(x)
	if !got.Shape().IsScalar() {
		t.Fatalf("Sum shape = %v, want scalar", got.Shape())
	}
	if got.AsFloat32()[0] != 10 {
		t.Errorf("Sum = %f, want 10", got.AsFloat32()[0])
	}
}

// TestSumDim tests reduction along one dimension with and without keepDim.
func TestSumDim(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	cols := b.SumDim(x, 0, false)
	if !cols.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("SumDim(0) shape = %v, want [3]", cols.Shape())
	}
	wantCols := []float32{5, 7, 9}
	for i, v := range cols.AsFloat32() {
		if v != wantCols[i] {
			t.Errorf("SumDim(0)[%d] = %f, want %f", i, v, wantCols[i])
		}
	}

	rows := b.SumDim(x, 1, true)
	if !rows.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("SumDim(1, keep) shape = %v, want [2 1]", rows.Shape())
	}
	if rows.AsFloat32()[0] != 6 || rows.AsFloat32()[1] != 15 {
		t.Errorf("SumDim(1, keep) = %v", rows.AsFloat32())
	}
}

// TestTranspose tests the 2D permutation.
func TestTranspose(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	got := b.Transpose(x)
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	want := []float32{1, 4, 2, 5, 3, 6}
	for i, v := range got.AsFloat32() {
		if v != want[i] {
			t.Errorf("transpose[%d] = %f, want %f", i, v, want[i])
		}
	}
}

// TestExpand tests broadcasting to a larger shape, including from rank-0.
func TestExpand(t *testing.T) {
	b := cpu.New()

	row := fromF32(t, []float32{1, 2, 3}, tensor.Shape{1, 3})
	got := b.Expand(row, tensor.Shape{2, 3})
	want := []float32{1, 2, 3, 1, 2, 3}
	for i, v := range got.AsFloat32() {
		if v != want[i] {
			t.Errorf("expand[%d] = %f, want %f", i, v, want[i])
		}
	}

	scalar := fromF32(t, []float32{5}, tensor.Shape{})
	full := b.Expand(scalar, tensor.Shape{2, 2})
	for i, v := range full.AsFloat32() {
		if v != 5 {
			t.Errorf("expand scalar[%d] = %f, want 5", i, v)
		}
	}
}

// TestGreaterWhere tests comparison masks and selection.
func TestGreaterWhere(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{-1, 0, 2}, tensor.Shape{3})
	zeros := tensor.ZerosLike(x)

	mask := b.Greater(x, zeros)
	if mask.DType() != tensor.Bool {
		t.Fatalf("Greater dtype = %s, want Bool", mask.DType())
	}
	wantMask := []bool{false, false, true}
	for i, v := range mask.AsBool() {
		if v != wantMask[i] {
			t.Errorf("mask[%d] = %v, want %v", i, v, wantMask[i])
		}
	}

	picked := b.Where(mask, x, zeros).AsFloat32()
	if picked[0] != 0 || picked[2] != 2 {
		t.Errorf("Where = %v", picked)
	}
}

// TestCast tests dtype conversion, including the float16 storage path and
// bool-to-float promotion used by gradient masks.
func TestCast(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1.5, -2}, tensor.Shape{2})

	asF64 := b.Cast(x, tensor.Float64).AsFloat64()
	if asF64[0] != 1.5 || asF64[1] != -2 {
		t.Errorf("Cast to float64 = %v", asF64)
	}

	asF16 := b.Cast(x, tensor.Float16)
	back := b.Cast(asF16, tensor.Float32).AsFloat32()
	if back[0] != 1.5 || back[1] != -2 {
		t.Errorf("float16 roundtrip = %v", back)
	}

	mask, _ := tensor.FromSlice([]bool{true, false}, tensor.Shape{2})
	asF32 := b.Cast(mask, tensor.Float32).AsFloat32()
	if asF32[0] != 1 || asF32[1] != 0 {
		t.Errorf("Cast bool = %v", asF32)
	}
}
