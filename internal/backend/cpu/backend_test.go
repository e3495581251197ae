package cpu_test

import (
	"testing"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

func fromF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return raw
}

// TestBackend_Name tests backend identity.
func TestBackend_Name(t *testing.T) {
	b := cpu.New()
	if b.Name() != "CPU" {
		t.Errorf("Name() = %s, want CPU", b.Name())
	}
	if b.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", b.Device())
	}
}

// TestBinaryOps tests element-wise arithmetic on same-shape operands.
func TestBinaryOps(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	y := fromF32(t, []float32{4, 3, 2, 1}, tensor.Shape{4})

	tests := []struct {
		name string
		op   func(_, _ *tensor.RawTensor) *tensor.RawTensor
		want []float32
	}{
		{"add", b.Add, []float32{5, 5, 5, 5}},
		{"sub", b.Sub, []float32{-3, -1, 1, 3}},
		{"mul", b.Mul, []float32{4, 6, 6, 4}},
		{"div", b.Div, []float32{0.25, 2.0 / 3.0, 1.5, 4}},
	}
	for _, tt := range tests {
		got := tt.op(x, y).AsFloat32()
		for i := range tt.want {
			if diff := got[i] - tt.want[i]; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("%s[%d] = %f, want %f", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

// TestBinaryOps_Broadcast tests row and scalar broadcasting.
func TestBinaryOps_Broadcast(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	row := fromF32(t, []float32{10, 20, 30}, tensor.Shape{3})

	got := b.Add(x, row)
	if !got.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape = %v, want [2 3]", got.Shape())
	}
	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range got.AsFloat32() {
		if v != want[i] {
			t.Errorf("add broadcast[%d] = %f, want %f", i, v, want[i])
		}
	}

	scalar := fromF32(t, []float32{2}, tensor.Shape{})
	prod := b.Mul(x, scalar)
	if prod.AsFloat32()[5] != 12 {
		t.Errorf("mul scalar broadcast = %v", prod.AsFloat32())
	}
}

// TestScalarOps tests AddScalar and MulScalar.
func TestScalarOps(t *testing.T) {
	b := cpu.New()
	x := fromF32(t, []float32{1, 2, 3}, tensor.Shape{3})

	sum := b.AddScalar(x, float32(10)).AsFloat32()
	if sum[0] != 11 || sum[2] != 13 {
		t.Errorf("AddScalar = %v", sum)
	}
	prod := b.MulScalar(x, 2.0).AsFloat32()
	if prod[0] != 2 || prod[2] != 6 {
		t.Errorf("MulScalar = %v", prod)
	}
}

// TestBinaryOps_Float64 tests the float64 kernel path.
func TestBinaryOps_Float64(t *testing.T) {
	b := cpu.New()
	x, _ := tensor.FromSlice([]float64{1.5, 2.5}, tensor.Shape{2})
	y, _ := tensor.FromSlice([]float64{0.5, 0.5}, tensor.Shape{2})
	got := b.Sub(x, y).AsFloat64()
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("Sub float64 = %v", got)
	}
}
