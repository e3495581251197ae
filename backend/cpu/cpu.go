// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend: no CGO, NumPy-compatible
// broadcasting, element loops parallelized across cores.
package cpu

import (
	internalcpu "github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
