package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Greater returns a bool tensor with a > b element-wise (with broadcasting).
func (b *Backend) Greater(x, y *tensor.RawTensor) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("greater: %v", err))
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool, b.device)
	if err != nil {
		panic(fmt.Sprintf("greater: %v", err))
	}

	outStrides := outShape.ComputeStrides()
	xStrides := broadcastStrides(x.Shape(), outShape)
	yStrides := broadcastStrides(y.Shape(), outShape)
	dst := result.AsBool()

	switch x.DType() {
	case tensor.Float32:
		greaterLoop(dst, x.AsFloat32(), y.AsFloat32(), outStrides, xStrides, yStrides)
	case tensor.Float64:
		greaterLoop(dst, x.AsFloat64(), y.AsFloat64(), outStrides, xStrides, yStrides)
	case tensor.Int32:
		greaterLoop(dst, x.AsInt32(), y.AsInt32(), outStrides, xStrides, yStrides)
	case tensor.Int64:
		greaterLoop(dst, x.AsInt64(), y.AsInt64(), outStrides, xStrides, yStrides)
	default:
		panic(fmt.Sprintf("greater: unsupported dtype %s", x.DType()))
	}

	return result
}

func greaterLoop[T numeric](dst []bool, a, b []T, outStrides, aStrides, bStrides []int) {
	for i := range dst {
		dst[i] = a[flatIndex(i, outStrides, aStrides)] > b[flatIndex(i, outStrides, bStrides)]
	}
}

// Where selects x where condition is true, else y. The condition must be a
// bool tensor with the same shape as x and y.
func (b *Backend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if !condition.Shape().Equal(x.Shape()) || !x.Shape().Equal(y.Shape()) {
		panic(fmt.Sprintf("where: shape mismatch %v / %v / %v",
			condition.Shape(), x.Shape(), y.Shape()))
	}

	result, err := tensor.NewRaw(x.Shape(), x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	cond := condition.AsBool()
	switch x.DType() {
	case tensor.Float32:
		whereLoop(result.AsFloat32(), cond, x.AsFloat32(), y.AsFloat32())
	case tensor.Float64:
		whereLoop(result.AsFloat64(), cond, x.AsFloat64(), y.AsFloat64())
	case tensor.Int32:
		whereLoop(result.AsInt32(), cond, x.AsInt32(), y.AsInt32())
	case tensor.Int64:
		whereLoop(result.AsInt64(), cond, x.AsInt64(), y.AsInt64())
	default:
		panic(fmt.Sprintf("where: unsupported dtype %s", x.DType()))
	}

	return result
}

func whereLoop[T numeric](dst []T, cond []bool, x, y []T) {
	for i := range dst {
		if cond[i] {
			dst[i] = x[i]
		} else {
			dst[i] = y[i]
		}
	}
}
