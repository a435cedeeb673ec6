// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/d2d"
)

func TestInitWithoutProvider(t *testing.T) {
	drv := New(nil)
	if err := drv.Init(); err == nil {
		t.Fatal("Init() error = nil, want missing-provider failure")
	}
}

// badProvider satisfies gpucontext.DeviceProvider but exposes no
// usable HAL objects.
type badProvider struct{}

func (badProvider) Device() gpucontext.Device             { return nil }
func (badProvider) Queue() gpucontext.Queue               { return nil }
func (badProvider) Adapter() gpucontext.Adapter           { return nil }
func (badProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (badProvider) HalDevice() any                        { return nil }
func (badProvider) HalQueue() any                         { return nil }

func TestInitWithNilHALObjects(t *testing.T) {
	drv := New(badProvider{})
	if err := drv.Init(); err == nil {
		t.Fatal("Init() error = nil, want nil-device failure")
	}
}

func TestMapFormat(t *testing.T) {
	tests := []struct {
		name    string
		in      gputypes.TextureFormat
		want    gputypes.TextureFormat
		wantErr bool
	}{
		{"undefined defaults to rgba8", gputypes.TextureFormatUndefined, gputypes.TextureFormatRGBA8Unorm, false},
		{"rgba8 passes through", gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8Unorm, false},
		{"bgra8 passes through", gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8Unorm, false},
		{"srgb passes through", gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb, false},
		{"unknown rejected", gputypes.TextureFormat(0xFFFF), gputypes.TextureFormatUndefined, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("mapFormat(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("mapFormat(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShapeOfEllipse(t *testing.T) {
	cmd := d2d.Command{
		Kind:    d2d.CmdFillEllipse,
		Ellipse: d2d.Ellipse{Center: d2d.Pt(10, 20), RadiusX: 5, RadiusY: 7},
		Brush:   &brush{color: d2d.Red},
	}
	sd, ok := shapeOf(&cmd)
	if !ok {
		t.Fatal("shapeOf() rejected a fill ellipse")
	}
	if sd.Kind != shapeEllipse {
		t.Errorf("Kind = %d, want ellipse", sd.Kind)
	}
	if sd.CenterX != 10 || sd.CenterY != 20 || sd.Param1 != 5 || sd.Param2 != 7 {
		t.Errorf("geometry = %+v", sd)
	}
	if sd.IsStroked != 0 {
		t.Error("fill marked stroked")
	}
	if sd.ColorR != 1 || sd.ColorA != 1 {
		t.Errorf("color = (%v %v %v %v)", sd.ColorR, sd.ColorG, sd.ColorB, sd.ColorA)
	}
}

func TestShapeOfStrokedRect(t *testing.T) {
	cmd := d2d.Command{
		Kind:        d2d.CmdStrokeRect,
		Rect:        d2d.RectWH(10, 10, 20, 30),
		StrokeWidth: 4,
		Brush:       &brush{color: d2d.Blue},
	}
	sd, ok := shapeOf(&cmd)
	if !ok {
		t.Fatal("shapeOf() rejected a stroked rect")
	}
	if sd.Kind != shapeRect {
		t.Errorf("Kind = %d, want rect", sd.Kind)
	}
	if sd.CenterX != 20 || sd.CenterY != 25 {
		t.Errorf("center = (%v, %v), want (20, 25)", sd.CenterX, sd.CenterY)
	}
	if sd.Param1 != 10 || sd.Param2 != 15 {
		t.Errorf("half extents = (%v, %v), want (10, 15)", sd.Param1, sd.Param2)
	}
	if sd.IsStroked != 1 || sd.HalfStroke != 2 {
		t.Errorf("stroke = is:%d half:%v, want 1/2", sd.IsStroked, sd.HalfStroke)
	}
}

func TestShapeOfRejectsLinesAndBitmaps(t *testing.T) {
	for _, kind := range []d2d.CmdKind{d2d.CmdLine, d2d.CmdDrawBitmap, d2d.CmdClear} {
		cmd := d2d.Command{Kind: kind}
		if _, ok := shapeOf(&cmd); ok {
			t.Errorf("shapeOf() accepted kind %v", kind)
		}
	}
}

func TestShapeOfRejectsDashedStrokes(t *testing.T) {
	cmd := d2d.Command{
		Kind:        d2d.CmdStrokeRect,
		Rect:        d2d.RectWH(0, 0, 10, 10),
		StrokeWidth: 1,
		Brush:       &brush{color: d2d.Black},
		Stroke:      &stroke{desc: d2d.StrokeDesc{Dashes: []float64{2, 2}}},
	}
	if _, ok := shapeOf(&cmd); ok {
		t.Error("shapeOf() accepted a dashed stroke; dashing is CPU-only")
	}
}

// The wire layout is fixed at 48 bytes per shape, little-endian, in
// field order. The kernel depends on it.
func TestPackShapesLayout(t *testing.T) {
	shapes := []shapeData{{
		Kind:    shapeRect,
		CenterX: 1.5, CenterY: 2.5,
		Param1: 3, Param2: 4, Param3: 5,
		HalfStroke: 0.5, IsStroked: 1,
		ColorR: 1, ColorG: 0.25, ColorB: 0, ColorA: 1,
	}}
	b := packShapes(shapes)
	if len(b) != 48 {
		t.Fatalf("packed length = %d, want 48", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[0:]); got != shapeRect {
		t.Errorf("kind word = %d", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4:])); got != 1.5 {
		t.Errorf("center_x = %v, want 1.5", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:]); got != 1 {
		t.Errorf("is_stroked word = %d, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[36:])); got != 0.25 {
		t.Errorf("color_g = %v, want 0.25", got)
	}
}

func TestPackParams(t *testing.T) {
	b := packParams(frameParams{TargetWidth: 640, TargetHeight: 480, ShapeIndex: 7})
	if len(b) != 16 {
		t.Fatalf("packed length = %d, want 16", len(b))
	}
	if binary.LittleEndian.Uint32(b[0:]) != 640 ||
		binary.LittleEndian.Uint32(b[4:]) != 480 ||
		binary.LittleEndian.Uint32(b[8:]) != 7 {
		t.Errorf("packed params = % x", b)
	}
}

func TestShaderSourceEmbedded(t *testing.T) {
	if shapesShaderSource == "" {
		t.Fatal("shapes shader source is empty")
	}
}
