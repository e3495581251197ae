package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// numeric constrains the element types the arithmetic kernels cover.
// Float16 is a storage-only dtype: Cast it to float32 before math.
type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// binaryKernel selects one of the element-wise operations below.
type binaryKernel int

const (
	addKernel binaryKernel = iota
	subKernel
	mulKernel
	divKernel
)

func applyKernel[T numeric](k binaryKernel, a, b T) T {
	switch k {
	case addKernel:
		return a + b
	case subKernel:
		return a - b
	case mulKernel:
		return a * b
	case divKernel:
		return a / b
	default:
		panic("unknown binary kernel")
	}
}

// vectorBinary runs a same-shape element-wise kernel.
func (b *Backend) vectorBinary(name string, dst, x, y *tensor.RawTensor, k binaryKernel) {
	switch x.DType() {
	case tensor.Float32:
		vecLoop(dst.AsFloat32(), x.AsFloat32(), y.AsFloat32(), k, b.cfg)
	case tensor.Float64:
		vecLoop(dst.AsFloat64(), x.AsFloat64(), y.AsFloat64(), k, b.cfg)
	case tensor.Int32:
		vecLoop(dst.AsInt32(), x.AsInt32(), y.AsInt32(), k, b.cfg)
	case tensor.Int64:
		vecLoop(dst.AsInt64(), x.AsInt64(), y.AsInt64(), k, b.cfg)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
}

func vecLoop[T numeric](dst, a, b []T, k binaryKernel, cfg parallel.Config) {
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = applyKernel(k, a[i], b[i])
		}
	}, cfg)
}

// broadcastBinary runs an element-wise kernel with stride-0 broadcasting.
func (b *Backend) broadcastBinary(name string, dst, x, y *tensor.RawTensor, outShape tensor.Shape, k binaryKernel) {
	switch x.DType() {
	case tensor.Float32:
		broadcastLoop(dst.AsFloat32(), x.AsFloat32(), y.AsFloat32(), x.Shape(), y.Shape(), outShape, k, b.cfg)
	case tensor.Float64:
		broadcastLoop(dst.AsFloat64(), x.AsFloat64(), y.AsFloat64(), x.Shape(), y.Shape(), outShape, k, b.cfg)
	case tensor.Int32:
		broadcastLoop(dst.AsInt32(), x.AsInt32(), y.AsInt32(), x.Shape(), y.Shape(), outShape, k, b.cfg)
	case tensor.Int64:
		broadcastLoop(dst.AsInt64(), x.AsInt64(), y.AsInt64(), x.Shape(), y.Shape(), outShape, k, b.cfg)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
}

func broadcastLoop[T numeric](dst, a, b []T, aShape, bShape, outShape tensor.Shape, k binaryKernel, cfg parallel.Config) {
	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	parallel.ForChunks(outShape.NumElements(), func(start, end int) {
		for i := start; i < end; i++ {
			aIdx := flatIndex(i, outStrides, aStrides)
			bIdx := flatIndex(i, outStrides, bStrides)
			dst[i] = applyKernel(k, a[aIdx], b[bIdx])
		}
	}, cfg)
}

// broadcastStrides computes strides for broadcasting inShape to outShape.
// Dimensions of size 1 (or missing on the left) get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

// flatIndex maps a flat output index back to a flat source index using
// broadcast-adjusted strides.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i := 0; i < len(outStrides); i++ {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		idx += coord * inStrides[i]
	}
	return idx
}
