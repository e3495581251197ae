package tensor

import "fmt"

// FromSlice creates a RawTensor from a Go slice. The data is copied.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("fromSlice: shape %v needs %d elements, got %d",
			shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, dtype, CPU)
	if err != nil {
		return nil, err
	}

	switch src := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), src)
	case []float64:
		copy(raw.AsFloat64(), src)
	case []int32:
		copy(raw.AsInt32(), src)
	case []int64:
		copy(raw.AsInt64(), src)
	case []uint8:
		copy(raw.AsUint8(), src)
	case []bool:
		copy(raw.AsBool(), src)
	}

	return raw, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	raw, err := NewRaw(shape, dtype, CPU)
	if err != nil {
		panic(err) // Shape validation should prevent this.
	}
	return raw
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) *RawTensor {
	t := Zeros(shape, dtype)
	fill(t, 1.0)
	return t
}

// Full creates a tensor filled with the given value.
// Only float dtypes are supported.
func Full(shape Shape, value float64, dtype DataType) *RawTensor {
	t := Zeros(shape, dtype)
	fill(t, value)
	return t
}

// OnesLike creates a ones tensor with the same shape, dtype and device as t.
func OnesLike(t *RawTensor) *RawTensor {
	result := Ones(t.Shape(), t.DType())
	result.device = t.Device()
	return result
}

// ZerosLike creates a zeros tensor with the same shape, dtype and device as t.
func ZerosLike(t *RawTensor) *RawTensor {
	result := Zeros(t.Shape(), t.DType())
	result.device = t.Device()
	return result
}

// Scalar creates a rank-0 tensor holding a single value.
func Scalar(value float64, dtype DataType) *RawTensor {
	return Full(Shape{}, value, dtype)
}

func fill(t *RawTensor, value float64) {
	switch t.DType() {
	case Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int32:
		data := t.AsInt32()
		for i := range data {
			data[i] = int32(value)
		}
	case Int64:
		data := t.AsInt64()
		for i := range data {
			data[i] = int64(value)
		}
	case Uint8:
		data := t.AsUint8()
		for i := range data {
			data[i] = uint8(value)
		}
	default:
		panic(fmt.Sprintf("fill: unsupported dtype %s", t.DType()))
	}
}
