//go:build windows

// Package webgpu implements a GPU backend on top of WebGPU, using
// go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO bindings.
//
// Float32 element-wise arithmetic, the unary math functions and 2D matmul
// run as WGSL compute shaders; everything else falls back to the CPU
// backend. Each operation reads its result back before returning, so the
// backend is synchronous from the engine's point of view.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend implements tensor operations on GPU via WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Compiled shader and pipeline caches, keyed by shader name.
	mu        sync.RWMutex
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	// fallback handles dtypes and operations without a GPU kernel.
	fallback *cpu.Backend
}

// New initializes the WebGPU backend. Returns an error when no adapter or
// device is available, including when the native library is missing.
func New() (backend tensor.Backend, err error) {
	// The bindings panic when wgpu_native cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	if info := adapter.GetInfo(); info != nil {
		klog.V(1).Infof("webgpu: using adapter %+v", info)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		fallback:  cpu.New(),
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// Synchronize flushes outstanding device work. Every operation maps its
// result buffer back to host memory before returning, so there is nothing
// in flight to wait for; the method exists to satisfy tensor.Synchronizer.
func (b *Backend) Synchronize() {}

// Release frees the device objects. The backend must not be used afterward.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

// gpuEligible reports whether an element-wise kernel can run on GPU:
// float32 payloads with identical shapes.
func gpuEligible(tensors ...*tensor.RawTensor) bool {
	for _, t := range tensors {
		if t.DType() != tensor.Float32 {
			return false
		}
		if !t.Shape().Equal(tensors[0].Shape()) {
			return false
		}
	}
	return true
}
