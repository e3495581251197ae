package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xShape := x.Shape()
	yShape := y.Shape()

	if len(xShape) != 2 || len(yShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(xShape), len(yShape)))
	}

	m, k := xShape[0], xShape[1]
	kAlt, n := yShape[0], yShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, x.DType(), b.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		matmulRows(result.AsFloat32(), x.AsFloat32(), y.AsFloat32(), m, k, n, b.cfg)
	case tensor.Float64:
		matmulRows(result.AsFloat64(), x.AsFloat64(), y.AsFloat64(), m, k, n, b.cfg)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", x.DType()))
	}

	return result
}

// matmulRows computes C = A @ B, parallelized over rows of C.
// The k-j loop order keeps the inner loop sequential over B's rows for
// cache-friendly access.
func matmulRows[T ~float32 | ~float64](c, a, b []T, m, k, n int, cfg parallel.Config) {
	rowCfg := cfg
	rowCfg.MinChunkSize = 1
	if m*k*n < 1<<15 {
		rowCfg.Enabled = false
	}

	parallel.ForChunks(m, func(start, end int) {
		for i := start; i < end; i++ {
			row := c[i*n : (i+1)*n]
			for j := range row {
				row[j] = 0
			}
			for kk := 0; kk < k; kk++ {
				av := a[i*k+kk]
				if av == 0 {
					continue
				}
				bRow := b[kk*n : (kk+1)*n]
				for j, bv := range bRow {
					row[j] += av * bv
				}
			}
		}
	}, rowCfg)
}
