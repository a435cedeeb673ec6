// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the GPU driver built on gogpu/wgpu HAL compute
// shaders. Shape fills and strokes are evaluated as signed distance
// fields on the GPU, one compute pass per shape; lines and bitmap
// blits fall back to the CPU rasterizer. The finished frame is
// uploaded to a HAL texture for the host to present.
//
// The driver does not own a GPU device: the host supplies one through
// a provider exposing HalDevice() any and HalQueue() any (the gogpu
// convention). Register a provider before creating devices:
//
//	wgpu.SetDefaultProvider(app)
//	dev, err := d2d.NewDevice(d2d.WithDriverName("wgpu"))
//
// or construct the driver directly with [New].
package wgpu

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/d2d"
)

//go:embed shaders/shapes.wgsl
var shapesShaderSource string

func init() {
	d2d.RegisterDriver("wgpu", func() d2d.Driver { return New(defaultProvider) })
}

var defaultProvider gpucontext.DeviceProvider

// SetDefaultProvider sets the device provider used when the driver is
// constructed through the registry. The provider typically comes from
// the host application (gogpu.App.GPUContextProvider()) and must also
// expose HalDevice() any and HalQueue() any.
func SetDefaultProvider(provider gpucontext.DeviceProvider) {
	defaultProvider = provider
}

// Driver is the GPU rendering driver. One instance serves one Device.
type Driver struct {
	provider gpucontext.DeviceProvider

	device hal.Device
	queue  hal.Queue

	shapeShader   hal.ShaderModule
	bindLayout    hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	shapePipeline hal.ComputePipeline
}

// New creates a driver over the given device provider.
func New(provider gpucontext.DeviceProvider) *Driver {
	return &Driver{provider: provider}
}

// Name implements d2d.Driver.
func (dr *Driver) Name() string { return "wgpu" }

// Init implements d2d.Driver: it borrows the HAL device and queue from
// the provider and builds the shape pipeline.
func (dr *Driver) Init() error {
	if dr.provider == nil {
		return fmt.Errorf("wgpu: no device provider (call SetDefaultProvider or pass one to New)")
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := dr.provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL device access")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	dr.device = device
	dr.queue = queue

	if err := dr.createPipeline(); err != nil {
		dr.device = nil
		dr.queue = nil
		return err
	}
	return nil
}

// Close implements d2d.Driver. The device is shared with the host and
// stays alive; only the driver's own pipeline objects are destroyed.
func (dr *Driver) Close() {
	dr.destroyPipeline()
	dr.device = nil
	dr.queue = nil
}

func (dr *Driver) createPipeline() error {
	spirvBytes, err := naga.Compile(shapesShaderSource)
	if err != nil {
		return fmt.Errorf("wgpu: compile shapes shader: %w", err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shader, err := dr.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "d2d_shapes",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	dr.shapeShader = shader

	bindLayout, err := dr.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "d2d_shapes_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		dr.destroyPipeline()
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	dr.bindLayout = bindLayout

	pipeLayout, err := dr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "d2d_shapes_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{dr.bindLayout},
	})
	if err != nil {
		dr.destroyPipeline()
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	dr.pipeLayout = pipeLayout

	pipeline, err := dr.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "d2d_shapes_pipeline", Layout: dr.pipeLayout,
		Compute: hal.ComputeState{Module: dr.shapeShader, EntryPoint: "main"},
	})
	if err != nil {
		dr.destroyPipeline()
		return fmt.Errorf("wgpu: create compute pipeline: %w", err)
	}
	dr.shapePipeline = pipeline
	return nil
}

func (dr *Driver) destroyPipeline() {
	if dr.device == nil {
		return
	}
	if dr.shapePipeline != nil {
		dr.device.DestroyComputePipeline(dr.shapePipeline)
		dr.shapePipeline = nil
	}
	if dr.pipeLayout != nil {
		dr.device.DestroyPipelineLayout(dr.pipeLayout)
		dr.pipeLayout = nil
	}
	if dr.bindLayout != nil {
		dr.device.DestroyBindGroupLayout(dr.bindLayout)
		dr.bindLayout = nil
	}
	if dr.shapeShader != nil {
		dr.device.DestroyShaderModule(dr.shapeShader)
		dr.shapeShader = nil
	}
}

// CreateBrush implements d2d.Driver. Solid colors carry no GPU state;
// the handle just pins the color for command execution.
func (dr *Driver) CreateBrush(desc d2d.BrushDesc) (d2d.DriverBrush, error) {
	return &brush{color: desc.Color}, nil
}

// CreateStrokeStyle implements d2d.Driver.
func (dr *Driver) CreateStrokeStyle(desc d2d.StrokeDesc) (d2d.DriverStroke, error) {
	return &stroke{desc: desc}, nil
}

const gpuSubmitTimeout = 5 * time.Second

// mapFormat translates the descriptor format into the HAL texture
// format. Only 8-bit RGBA/BGRA variants are renderable by this driver.
func mapFormat(f gputypes.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gputypes.TextureFormatUndefined, gputypes.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("wgpu: unsupported target format %v", f)
	}
}

type brush struct {
	color d2d.Color
}

func (b *brush) Destroy() {}

type stroke struct {
	desc d2d.StrokeDesc
}

func (s *stroke) Destroy() {}
