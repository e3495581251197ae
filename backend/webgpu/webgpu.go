// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU backend built on WebGPU. It is available
// on windows, where the native wgpu library ships; New returns an error
// elsewhere and callers should fall back to the CPU backend.
package webgpu

import (
	internalwebgpu "github.com/ember-ml/ember/internal/backend/webgpu"
	"github.com/ember-ml/ember/tensor"
)

// New initializes the WebGPU backend, or returns an error when no GPU
// device is available.
func New() (tensor.Backend, error) {
	return internalwebgpu.New()
}
