// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend implements tensor operations on CPU.
// Element loops over large tensors are parallelized via the parallel package.
type Backend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
		cfg:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return b.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("add", x, y, addKernel)
}

// Sub performs element-wise subtraction with broadcasting.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("sub", x, y, subKernel)
}

// Mul performs element-wise multiplication with broadcasting.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("mul", x, y, mulKernel)
}

// Div performs element-wise division with broadcasting.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("div", x, y, divKernel)
}

// binaryOp computes the broadcast output shape, allocates the result and
// dispatches to the dtype-specific kernel.
func (b *Backend) binaryOp(name string, x, y *tensor.RawTensor, k binaryKernel) *tensor.RawTensor {
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, x.DType(), y.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if needsBroadcast {
		b.broadcastBinary(name, result, x, y, outShape, k)
	} else {
		b.vectorBinary(name, result, x, y, k)
	}
	return result
}
