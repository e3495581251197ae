package cpu

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// unaryFloat applies an element-wise float function, dispatching on dtype.
func (b *Backend) unaryFloat(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		parallel.ForChunks(len(src), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = float32(f(float64(src[i])))
			}
		}, b.cfg)
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		parallel.ForChunks(len(src), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(src[i])
			}
		}, b.cfg)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}

	return result
}

// Neg computes element-wise negation: -x.
func (b *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("neg", x, func(v float64) float64 { return -v })
}

// Exp computes element-wise exponential: exp(x).
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("log", x, math.Log)
}

// Sqrt computes element-wise square root: sqrt(x).
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("sqrt", x, math.Sqrt)
}

// Tanh computes element-wise hyperbolic tangent.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("tanh", x, math.Tanh)
}

// Sigmoid computes element-wise sigmoid: 1 / (1 + exp(-x)).
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryFloat("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}
