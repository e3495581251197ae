package tensor_test

import (
	"testing"

	"github.com/ember-ml/ember/internal/tensor"
)

// TestFromSlice tests construction from Go slices.
func TestFromSlice(t *testing.T) {
	raw, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType = %s, want Float32", raw.DType())
	}
	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape = %v, want [2 3]", raw.Shape())
	}
	got := raw.AsFloat32()
	if got[0] != 1 || got[5] != 6 {
		t.Errorf("data = %v", got)
	}
}

// TestFromSlice_WrongCount tests that element count must match the shape.
func TestFromSlice_WrongCount(t *testing.T) {
	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}); err == nil {
		t.Error("expected error for 3 elements in shape [2,2]")
	}
}

// TestClone tests that clones do not share storage.
func TestClone(t *testing.T) {
	raw, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	clone := raw.Clone()
	clone.AsFloat64()[0] = 99
	if raw.AsFloat64()[0] != 1 {
		t.Error("clone shares storage with original")
	}
}

// TestWithShape tests the zero-copy view.
func TestWithShape(t *testing.T) {
	raw, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, tensor.Shape{4})
	view := raw.WithShape(tensor.Shape{2, 2})
	view.AsInt32()[0] = 42
	if raw.AsInt32()[0] != 42 {
		t.Error("WithShape should share storage")
	}
}

// TestCreation tests the fill constructors.
func TestCreation(t *testing.T) {
	ones := tensor.Ones(tensor.Shape{3}, tensor.Float32)
	for _, v := range ones.AsFloat32() {
		if v != 1 {
			t.Fatalf("Ones = %v", ones.AsFloat32())
		}
	}
	full := tensor.Full(tensor.Shape{2}, 2.5, tensor.Float64)
	if full.AsFloat64()[1] != 2.5 {
		t.Errorf("Full = %v", full.AsFloat64())
	}
	scalar := tensor.Scalar(7, tensor.Float32)
	if !scalar.Shape().IsScalar() || scalar.AsFloat32()[0] != 7 {
		t.Errorf("Scalar = %v %v", scalar.Shape(), scalar.AsFloat32())
	}
}

// TestFloat16Storage tests the half-precision payload roundtrip.
func TestFloat16Storage(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float16, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if raw.ByteSize() != 4 {
		t.Errorf("ByteSize = %d, want 4 (2 x 2-byte elements)", raw.ByteSize())
	}
	h := raw.AsFloat16()
	if len(h) != 2 {
		t.Fatalf("AsFloat16 length = %d", len(h))
	}
}

// TestDataTypeProperties tests Size and IsFloat per dtype.
func TestDataTypeProperties(t *testing.T) {
	tests := []struct {
		dtype   tensor.DataType
		size    int
		isFloat bool
	}{
		{tensor.Float32, 4, true},
		{tensor.Float64, 8, true},
		{tensor.Float16, 2, true},
		{tensor.Int32, 4, false},
		{tensor.Int64, 8, false},
		{tensor.Uint8, 1, false},
		{tensor.Bool, 1, false},
	}
	for _, tt := range tests {
		if tt.dtype.Size() != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, tt.dtype.Size(), tt.size)
		}
		if tt.dtype.IsFloat() != tt.isFloat {
			t.Errorf("%s.IsFloat() = %v, want %v", tt.dtype, tt.dtype.IsFloat(), tt.isFloat)
		}
	}
}
