package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sum reduces all elements to a rank-0 scalar tensor.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// SumDim sums along the given dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is removed from the shape.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumDim: invalid dimension %d for shape %v", dim, shape))
	}

	keptShape := shape.Clone()
	keptShape[dim] = 1

	result, err := tensor.NewRaw(keptShape, x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("sumDim: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		sumDimLoop(x.AsFloat32(), result.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDimLoop(x.AsFloat64(), result.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("sumDim: unsupported dtype %s", x.DType()))
	}

	if keepDim {
		return result
	}

	squeezed := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			squeezed = append(squeezed, d)
		}
	}
	return result.WithShape(squeezed)
}

// sumDimLoop accumulates src into dst, where dst has the same shape as src
// except dimension dim has size 1.
func sumDimLoop[T ~float32 | ~float64](src, dst []T, shape tensor.Shape, dim int) {
	for i := range dst {
		dst[i] = 0
	}

	// outer iterates everything left of dim, inner everything right of it.
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	inner := strides[dim]
	outer := len(src) / (dimSize * inner)

	for o := 0; o < outer; o++ {
		srcBase := o * dimSize * inner
		dstBase := o * inner
		for d := 0; d < dimSize; d++ {
			row := src[srcBase+d*inner : srcBase+(d+1)*inner]
			out := dst[dstBase : dstBase+inner]
			for j, v := range row {
				out[j] += v
			}
		}
	}
}
