//go:build !windows

// Package webgpu implements a GPU backend on top of WebGPU. The native
// wgpu library is only shipped for windows; other platforms get a stub
// that reports the backend as unavailable.
package webgpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// New reports that WebGPU is not available on this platform.
func New() (tensor.Backend, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}
