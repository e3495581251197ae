// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor data in the Ember ML
// framework: shapes, data types, devices, the raw tensor container and the
// backend interface compute implementations satisfy.
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	y := backend.Add(x, x)
package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// DType constrains the Go element types a tensor can be built from.
type DType = tensor.DType

// DataType identifies a tensor's element type at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape holds the dimensions of a tensor. Shape{2, 3} is a 2x3 matrix; the
// empty Shape is a rank-0 scalar.
type Shape = tensor.Shape

// RawTensor is the untyped tensor container: a flat byte buffer plus shape,
// strides, dtype and device.
type RawTensor = tensor.RawTensor

// Backend is the compute interface tensor operations are written against.
type Backend = tensor.Backend

// Synchronizer is implemented by backends whose work completes
// asynchronously.
type Synchronizer = tensor.Synchronizer

// FromSlice builds a tensor from a Go slice and a shape.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros returns a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) *RawTensor { return tensor.Zeros(shape, dtype) }

// Ones returns a one-filled tensor.
func Ones(shape Shape, dtype DataType) *RawTensor { return tensor.Ones(shape, dtype) }

// Full returns a tensor filled with value.
func Full(shape Shape, value float64, dtype DataType) *RawTensor {
	return tensor.Full(shape, value, dtype)
}

// Scalar returns a rank-0 tensor holding value.
func Scalar(value float64, dtype DataType) *RawTensor { return tensor.Scalar(value, dtype) }

// OnesLike returns a one-filled tensor with t's shape and dtype.
func OnesLike(t *RawTensor) *RawTensor { return tensor.OnesLike(t) }

// ZerosLike returns a zero-filled tensor with t's shape and dtype.
func ZerosLike(t *RawTensor) *RawTensor { return tensor.ZerosLike(t) }

// BroadcastShapes reports the NumPy-style broadcast result of two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) { return tensor.BroadcastShapes(a, b) }
