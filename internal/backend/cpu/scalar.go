package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// toFloat64 normalizes the scalar values accepted by the Backend interface.
func toFloat64(name string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	case int32:
		return float64(s)
	case int64:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}

// AddScalar adds a scalar value to each element of the tensor.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("addScalar", scalar)
	return b.unaryFloat("addScalar", x, func(v float64) float64 { return v + s })
}

// MulScalar multiplies each element of the tensor by a scalar value.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("mulScalar", scalar)
	return b.unaryFloat("mulScalar", x, func(v float64) float64 { return v * s })
}
