//go:build windows

package webgpu

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Add performs element-wise addition, on GPU when both operands are
// same-shape float32.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("add", addShader, x, y, b.fallback.Add)
}

// Sub performs element-wise subtraction.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("sub", subShader, x, y, b.fallback.Sub)
}

// Mul performs element-wise multiplication.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("mul", mulShader, x, y, b.fallback.Mul)
}

// Div performs element-wise division.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("div", divShader, x, y, b.fallback.Div)
}

func (b *Backend) binary(name, code string, x, y *tensor.RawTensor, cpuOp func(_, _ *tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligible(x, y) {
		return cpuOp(x, y)
	}
	result, err := b.runBinaryOp(x, y, name, code)
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}
	return result
}

// Neg negates element-wise.
func (b *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("neg", negShader, x, b.fallback.Neg)
}

// Exp computes e^x element-wise.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("exp", expShader, x, b.fallback.Exp)
}

// Log computes the natural logarithm element-wise.
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("log", logShader, x, b.fallback.Log)
}

// Sqrt computes the square root element-wise.
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("sqrt", sqrtShader, x, b.fallback.Sqrt)
}

// Tanh computes the hyperbolic tangent element-wise.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("tanh", tanhShader, x, b.fallback.Tanh)
}

// Sigmoid computes the logistic function element-wise.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("sigmoid", sigmoidShader, x, b.fallback.Sigmoid)
}

func (b *Backend) unary(name, code string, x *tensor.RawTensor, cpuOp func(*tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return cpuOp(x)
	}
	result, err := b.runUnaryOp(x, name, code)
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}
	return result
}

// MatMul multiplies two 2D matrices, on GPU for float32.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 || y.DType() != tensor.Float32 ||
		len(x.Shape()) != 2 || len(y.Shape()) != 2 || x.Shape()[1] != y.Shape()[0] {
		return b.fallback.MatMul(x, y)
	}
	result, err := b.runMatMul(x, y)
	if err != nil {
		panic("webgpu: matmul: " + err.Error())
	}
	return result
}

// The remaining operations are memory movement or bookkeeping with no win
// from a GPU round trip; they run through the CPU backend.

func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.fallback.AddScalar(x, scalar)
}

func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.fallback.MulScalar(x, scalar)
}

func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return b.fallback.Reshape(t, newShape)
}

func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	return b.fallback.Transpose(t, axes...)
}

func (b *Backend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.fallback.Expand(x, shape)
}

func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Sum(x)
}

func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.fallback.SumDim(x, dim, keepDim)
}

func (b *Backend) Greater(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Greater(x, y)
}

func (b *Backend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Where(condition, x, y)
}

func (b *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return b.fallback.Cast(x, dtype)
}
