// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autograd provides reverse-mode automatic differentiation.
//
// Variables wrap tensors; recorded operations build a graph of backward
// Functions; Backward walks the graph in reverse, accumulating gradients
// into the leaves.
//
// Example:
//
//	backend := cpu.New()
//	data, _ := tensor.FromSlice([]float32{2}, tensor.Shape{})
//	x := autograd.NewLeaf(data, backend, true)
//	y, _ := autograd.Mul(x, x)
//	_ = autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{})
//	// x.Grad() now holds dy/dx = 2x = 4
package autograd

import (
	"github.com/ember-ml/ember/internal/autograd"
	"github.com/ember-ml/ember/internal/autograd/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// Variable is a tensor with gradient bookkeeping.
type Variable = autograd.Variable

// Edge points at one input slot of a Function.
type Edge = autograd.Edge

// Function is a node in the backward graph.
type Function = autograd.Function

// FunctionBase is the embeddable connectivity state for custom Functions.
type FunctionBase = autograd.FunctionBase

// SavedVariable is a version-checked snapshot held by a Function.
type SavedVariable = autograd.SavedVariable

// Engine executes backward passes.
type Engine = autograd.Engine

// BackwardOptions configure Backward.
type BackwardOptions = autograd.BackwardOptions

// GradOptions configure Grad.
type GradOptions = autograd.GradOptions

// Hook types for observing backward execution.
type (
	PreHook  = autograd.PreHook
	PostHook = autograd.PostHook
)

// Sentinel errors of the gradient system.
var (
	ErrNotDifferentiable      = autograd.ErrNotDifferentiable
	ErrVersionMismatch        = autograd.ErrVersionMismatch
	ErrBackwardNotImplemented = autograd.ErrBackwardNotImplemented
	ErrGradientShapeMismatch  = autograd.ErrGradientShapeMismatch
	ErrGraphAlreadyFreed      = autograd.ErrGraphAlreadyFreed
	ErrConcurrentModification = autograd.ErrConcurrentModification
	ErrInPlaceOnLeaf          = autograd.ErrInPlaceOnLeaf
)

// NewLeaf creates a user-owned leaf Variable.
func NewLeaf(data *tensor.RawTensor, backend tensor.Backend, requiresGrad bool) *Variable {
	return autograd.NewLeaf(data, backend, requiresGrad)
}

// Backward differentiates roots and accumulates into leaf gradients.
func Backward(roots []*Variable, opts BackwardOptions) error {
	return autograd.Backward(roots, opts)
}

// Grad returns the gradients of outputs with respect to inputs without
// touching any Variable's Grad field.
func Grad(outputs, inputs []*Variable, opts GradOptions) ([]*Variable, error) {
	return autograd.Grad(outputs, inputs, opts)
}

// GradEnabled reports whether operations are currently being recorded.
func GradEnabled() bool { return autograd.GradEnabled() }

// SetGradEnabled flips recording and returns a restore func:
//
//	defer autograd.SetGradEnabled(false)()
func SetGradEnabled(enabled bool) func() { return autograd.SetGradEnabled(enabled) }

// NoGrad disables recording until the returned restore func runs.
func NoGrad() func() { return autograd.NoGrad() }

// Differentiable operations.
var (
	Add       = ops.Add
	Sub       = ops.Sub
	Mul       = ops.Mul
	Div       = ops.Div
	Neg       = ops.Neg
	AddScalar = ops.AddScalar
	MulScalar = ops.MulScalar
	MatMul    = ops.MatMul
	Exp       = ops.Exp
	Log       = ops.Log
	Sqrt      = ops.Sqrt
	Tanh      = ops.Tanh
	Sigmoid   = ops.Sigmoid
	Relu      = ops.Relu
	Reshape   = ops.Reshape
	Transpose = ops.Transpose
	Expand    = ops.Expand
	Sum       = ops.Sum
	SumDim    = ops.SumDim
	Greater   = ops.Greater

	// In-place variants; they bump the target's version counter.
	AddInPlace       = ops.AddInPlace
	AddScalarInPlace = ops.AddScalarInPlace
)

// WrapDelayed defers an error to backward time: the returned Variables carry
// the forward values but fail with msg when differentiated.
func WrapDelayed(msg string, inputs ...*Variable) []*Variable {
	return autograd.WrapDelayed(msg, inputs...)
}

// NewFunctionBase returns an initialized FunctionBase for a custom Function.
func NewFunctionBase() FunctionBase { return autograd.NewFunctionBase() }

// NewResult wraps a forward output; Record attaches its history.
func NewResult(data *tensor.RawTensor, backend tensor.Backend) *Variable {
	return autograd.NewResult(data, backend)
}

// ShouldRecord reports whether an operation over inputs must join the graph.
func ShouldRecord(inputs ...*Variable) bool { return autograd.ShouldRecord(inputs...) }

// Record wires a custom Function into the graph: edges to the producers of
// inputs and history on every output.
func Record(fn Function, inputs []*Variable, outputs ...*Variable) {
	autograd.Record(fn, inputs, outputs...)
}

// SaveVariable snapshots v for use in a backward formula. Pass isOutput=true
// when a Function saves one of its own outputs.
func SaveVariable(v *Variable, isOutput bool) *SavedVariable {
	return autograd.SaveVariable(v, isOutput)
}
