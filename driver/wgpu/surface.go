// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/d2d"
	"github.com/gogpu/d2d/internal/raster"
)

// CreateSurface implements d2d.Driver. The surface pairs a HAL texture
// (what the host presents) with a CPU image holding the canonical
// frame pixels between GPU dispatches.
func (dr *Driver) CreateSurface(desc d2d.TargetDesc) (d2d.DriverSurface, error) {
	format, err := mapFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	tex, err := dr.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create surface texture: %w", err)
	}
	return &surface{
		driver:  dr,
		texture: tex,
		img:     image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
	}, nil
}

// CreateBitmap implements d2d.Driver. Pixels are kept on the CPU for
// the blit fallback and uploaded to a sampled texture for the host.
func (dr *Driver) CreateBitmap(desc d2d.BitmapDesc) (d2d.DriverBitmap, error) {
	if want := desc.Width * desc.Height * 4; len(desc.Pix) != want {
		return nil, fmt.Errorf("wgpu: bitmap pixel buffer is %d bytes, want %d", len(desc.Pix), want)
	}
	format, err := mapFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	tex, err := dr.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bitmap texture: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	copy(img.Pix, desc.Pix)

	dr.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Origin: hal.Origin3D{}, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(desc.Width * 4), RowsPerImage: uint32(desc.Height)},
		&hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
	)

	return &bitmap{driver: dr, texture: tex, img: img}, nil
}

type bitmap struct {
	driver  *Driver
	texture hal.Texture
	img     *image.RGBA
}

func (b *bitmap) Size() d2d.Size {
	return d2d.Size{Width: b.img.Rect.Dx(), Height: b.img.Rect.Dy()}
}

func (b *bitmap) Destroy() {
	if b.texture != nil && b.driver.device != nil {
		b.driver.device.DestroyTexture(b.texture)
		b.texture = nil
	}
	b.img = nil
}

type surface struct {
	driver  *Driver
	texture hal.Texture
	img     *image.RGBA
}

func (s *surface) Size() d2d.Size {
	return d2d.Size{Width: s.img.Rect.Dx(), Height: s.img.Rect.Dy()}
}

func (s *surface) Destroy() {
	if s.texture != nil && s.driver.device != nil {
		s.driver.device.DestroyTexture(s.texture)
		s.texture = nil
	}
}

// Flush executes the batch and uploads the finished frame. Commands
// are walked in order; consecutive GPU-friendly shape fills are
// accumulated and dispatched as one compute submission, everything
// else goes through the CPU rasterizer. A failed submission or fence
// wait means the device went away underneath us and is reported as
// removal.
func (s *surface) Flush(cmds []d2d.Command) error {
	var pending []shapeData
	for i := range cmds {
		cmd := &cmds[i]
		if sd, ok := shapeOf(cmd); ok {
			pending = append(pending, sd)
			continue
		}
		if len(pending) > 0 {
			if err := s.dispatchShapes(pending); err != nil {
				return err
			}
			pending = pending[:0]
		}
		s.executeCPU(cmd)
	}
	if len(pending) > 0 {
		if err := s.dispatchShapes(pending); err != nil {
			return err
		}
	}
	return s.present()
}

// executeCPU rasterizes one command that the shape kernel cannot
// express: clears, lines (dashed or not) and bitmap blits.
func (s *surface) executeCPU(cmd *d2d.Command) {
	switch cmd.Kind {
	case d2d.CmdClear:
		raster.Clear(s.img, cmd.Color)
	case d2d.CmdLine:
		col := colorOf(cmd)
		dashes, offset := dashOf(cmd)
		raster.Line(s.img, cmd.P0, cmd.P1, col, cmd.StrokeWidth, dashes, offset)
	case d2d.CmdDrawBitmap:
		if bm, ok := cmd.Bitmap.(*bitmap); ok && bm.img != nil {
			raster.Blit(s.img, bm.img, cmd.Dst, cmd.Opacity)
		}
	case d2d.CmdFillRect:
		raster.FillRect(s.img, cmd.Rect, colorOf(cmd))
	case d2d.CmdStrokeRect:
		raster.StrokeRect(s.img, cmd.Rect, colorOf(cmd), cmd.StrokeWidth)
	case d2d.CmdFillRoundedRect:
		raster.FillRoundedRect(s.img, cmd.Round, colorOf(cmd))
	case d2d.CmdStrokeRoundedRect:
		raster.StrokeRoundedRect(s.img, cmd.Round, colorOf(cmd), cmd.StrokeWidth)
	case d2d.CmdFillEllipse:
		raster.FillEllipse(s.img, cmd.Ellipse, colorOf(cmd))
	case d2d.CmdStrokeEllipse:
		raster.StrokeEllipse(s.img, cmd.Ellipse, colorOf(cmd), cmd.StrokeWidth)
	}
}

// present uploads the frame pixels to the surface texture and submits
// an empty command buffer so device health is observed every frame.
func (s *surface) present() error {
	dr := s.driver
	w := uint32(s.img.Rect.Dx())
	h := uint32(s.img.Rect.Dy())

	dr.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.texture, MipLevel: 0, Origin: hal.Origin3D{}, Aspect: gputypes.TextureAspectAll},
		s.img.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	encoder, err := dr.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "d2d_present"})
	if err != nil {
		return fmt.Errorf("wgpu: create present encoder: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	if err := encoder.BeginEncoding("d2d_present"); err != nil {
		return fmt.Errorf("wgpu: begin present encoding: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end present encoding: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	defer dr.device.FreeCommandBuffer(cmdBuf)

	fence, err := dr.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	defer dr.device.DestroyFence(fence)

	if err := dr.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: present submit: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	ok, err := dr.device.Wait(fence, 1, gpuSubmitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: present wait (ok=%v): %w: %w", ok, err, d2d.ErrDeviceRemoved)
	}
	return nil
}

// shapeData mirrors the kernel's shape struct: 12 little-endian words.
type shapeData struct {
	Kind               uint32
	CenterX, CenterY   float32
	Param1, Param2     float32
	Param3, HalfStroke float32
	IsStroked          uint32
	ColorR, ColorG     float32
	ColorB, ColorA     float32
}

const (
	shapeEllipse = 0
	shapeRect    = 1
)

// shapeOf converts a command into kernel shape data. Commands carrying
// a dash pattern stay on the CPU path, where dashing is implemented.
func shapeOf(cmd *d2d.Command) (shapeData, bool) {
	if cmd.Stroke != nil {
		if st, ok := cmd.Stroke.(*stroke); ok && len(st.desc.Dashes) > 0 {
			return shapeData{}, false
		}
	}
	col := colorOf(cmd)
	sd := shapeData{
		ColorR: float32(col.R), ColorG: float32(col.G),
		ColorB: float32(col.B), ColorA: float32(col.A),
	}
	half := float32(cmd.StrokeWidth / 2)

	switch cmd.Kind {
	case d2d.CmdFillEllipse, d2d.CmdStrokeEllipse:
		sd.Kind = shapeEllipse
		sd.CenterX = float32(cmd.Ellipse.Center.X)
		sd.CenterY = float32(cmd.Ellipse.Center.Y)
		sd.Param1 = float32(cmd.Ellipse.RadiusX)
		sd.Param2 = float32(cmd.Ellipse.RadiusY)
		if cmd.Kind == d2d.CmdStrokeEllipse {
			sd.HalfStroke, sd.IsStroked = half, 1
		}
		return sd, true
	case d2d.CmdFillRect, d2d.CmdStrokeRect:
		sd.Kind = shapeRect
		sd.CenterX = float32((cmd.Rect.Min.X + cmd.Rect.Max.X) / 2)
		sd.CenterY = float32((cmd.Rect.Min.Y + cmd.Rect.Max.Y) / 2)
		sd.Param1 = float32(cmd.Rect.Width() / 2)
		sd.Param2 = float32(cmd.Rect.Height() / 2)
		if cmd.Kind == d2d.CmdStrokeRect {
			sd.HalfStroke, sd.IsStroked = half, 1
		}
		return sd, true
	case d2d.CmdFillRoundedRect, d2d.CmdStrokeRoundedRect:
		sd.Kind = shapeRect
		sd.CenterX = float32((cmd.Round.Rect.Min.X + cmd.Round.Rect.Max.X) / 2)
		sd.CenterY = float32((cmd.Round.Rect.Min.Y + cmd.Round.Rect.Max.Y) / 2)
		sd.Param1 = float32(cmd.Round.Rect.Width() / 2)
		sd.Param2 = float32(cmd.Round.Rect.Height() / 2)
		sd.Param3 = float32(cmd.Round.RadiusX)
		if cmd.Kind == d2d.CmdStrokeRoundedRect {
			sd.HalfStroke, sd.IsStroked = half, 1
		}
		return sd, true
	}
	return shapeData{}, false
}

func colorOf(cmd *d2d.Command) d2d.Color {
	if b, ok := cmd.Brush.(*brush); ok {
		return b.color
	}
	return d2d.Color{}
}

func dashOf(cmd *d2d.Command) ([]float64, float64) {
	if st, ok := cmd.Stroke.(*stroke); ok {
		return st.desc.Dashes, st.desc.DashOffset
	}
	return nil, 0
}

// frameParams is the kernel's uniform block.
type frameParams struct {
	TargetWidth  uint32
	TargetHeight uint32
	ShapeIndex   uint32
	Pad          uint32
}

// dispatchShapes runs one compute pass per accumulated shape over the
// frame pixels: upload, N passes, readback. One submit and one fence
// wait for the whole batch.
func (s *surface) dispatchShapes(shapes []shapeData) error {
	dr := s.driver
	w := uint32(s.img.Rect.Dx())
	h := uint32(s.img.Rect.Dy())
	pixelBufSize := uint64(w) * uint64(h) * 4
	shapesBytes := packShapes(shapes)

	shapesBuf, err := dr.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "d2d_shapes", Size: uint64(len(shapesBytes)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create shapes buffer: %w", err)
	}
	defer dr.device.DestroyBuffer(shapesBuf)

	pixelBuf, err := dr.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "d2d_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pixel buffer: %w", err)
	}
	defer dr.device.DestroyBuffer(pixelBuf)

	stagingBuf, err := dr.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "d2d_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer dr.device.DestroyBuffer(stagingBuf)

	dr.queue.WriteBuffer(shapesBuf, 0, shapesBytes)
	dr.queue.WriteBuffer(pixelBuf, 0, s.img.Pix)

	// One uniform buffer and bind group per shape; the passes share the
	// shape and pixel buffers, with implicit barriers between passes
	// preserving paint order.
	paramSize := uint64(unsafe.Sizeof(frameParams{}))
	uniforms := make([]hal.Buffer, 0, len(shapes))
	groups := make([]hal.BindGroup, 0, len(shapes))
	defer func() {
		for _, bg := range groups {
			dr.device.DestroyBindGroup(bg)
		}
		for _, ub := range uniforms {
			dr.device.DestroyBuffer(ub)
		}
	}()
	for i := range shapes {
		ub, err := dr.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "d2d_params", Size: paramSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create uniform buffer %d: %w", i, err)
		}
		uniforms = append(uniforms, ub)
		dr.queue.WriteBuffer(ub, 0, packParams(frameParams{TargetWidth: w, TargetHeight: h, ShapeIndex: uint32(i)}))

		bg, err := dr.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "d2d_shapes_bind", Layout: dr.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: paramSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: shapesBuf.NativeHandle(), Offset: 0, Size: uint64(len(shapesBytes))}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group %d: %w", i, err)
		}
		groups = append(groups, bg)
	}

	encoder, err := dr.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "d2d_shapes_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	if err := encoder.BeginEncoding("d2d_shapes"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	for _, bg := range groups {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "d2d_shape_pass"})
		pass.SetPipeline(dr.shapePipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch((w+7)/8, (h+7)/8, 1)
		pass.End()
	}
	encoder.CopyBufferToBuffer(pixelBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	defer dr.device.FreeCommandBuffer(cmdBuf)

	fence, err := dr.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	defer dr.device.DestroyFence(fence)
	if err := dr.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	ok, err := dr.device.Wait(fence, 1, gpuSubmitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU (ok=%v): %w: %w", ok, err, d2d.ErrDeviceRemoved)
	}

	readback := make([]byte, pixelBufSize)
	if err := dr.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("wgpu: readback: %w: %w", err, d2d.ErrDeviceRemoved)
	}
	copy(s.img.Pix, readback)
	return nil
}

// packShapes serializes shapes for upload: fixed little-endian layout,
// independent of host struct padding.
func packShapes(shapes []shapeData) []byte {
	const shapeSize = 48
	out := make([]byte, shapeSize*len(shapes))
	for i, sd := range shapes {
		b := out[i*shapeSize:]
		binary.LittleEndian.PutUint32(b[0:], sd.Kind)
		putF32(b[4:], sd.CenterX)
		putF32(b[8:], sd.CenterY)
		putF32(b[12:], sd.Param1)
		putF32(b[16:], sd.Param2)
		putF32(b[20:], sd.Param3)
		putF32(b[24:], sd.HalfStroke)
		binary.LittleEndian.PutUint32(b[28:], sd.IsStroked)
		putF32(b[32:], sd.ColorR)
		putF32(b[36:], sd.ColorG)
		putF32(b[40:], sd.ColorB)
		putF32(b[44:], sd.ColorA)
	}
	return out
}

func packParams(p frameParams) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint32(out[0:], p.TargetWidth)
	binary.LittleEndian.PutUint32(out[4:], p.TargetHeight)
	binary.LittleEndian.PutUint32(out[8:], p.ShapeIndex)
	return out
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
