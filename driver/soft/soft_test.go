// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/d2d"
)

func newDevice(t *testing.T) (*d2d.Device, *Driver) {
	t.Helper()
	drv := New()
	dev, err := d2d.NewDevice(d2d.WithDriver(drv))
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	return dev, drv
}

func TestRegistered(t *testing.T) {
	for _, name := range d2d.Drivers() {
		if name == "soft" {
			return
		}
	}
	t.Error(`"soft" missing from driver registry`)
}

func TestDrawToPixels(t *testing.T) {
	dev, drv := newDevice(t)

	target, err := dev.CreateRenderTarget(d2d.TargetDesc{Width: 16, Height: 16, Label: "out"})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	red, err := dev.CreateSolidBrush(d2d.Red)
	if err != nil {
		t.Fatalf("CreateSolidBrush() error = %v", err)
	}

	sess, err := target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() error = %v", err)
	}
	sess.Clear(d2d.White)
	if err := sess.FillRect(d2d.RectWH(4, 4, 8, 8), red); err != nil {
		t.Fatalf("FillRect() error = %v", err)
	}
	if err := sess.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	img := drv.Surface("out")
	if img == nil {
		t.Fatal(`Surface("out") = nil`)
	}
	if got := img.RGBAAt(8, 8); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel inside rect = %v, want red", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel outside rect = %v, want white", got)
	}
}

func TestPutPixel(t *testing.T) {
	dev, drv := newDevice(t)

	target, err := dev.CreateRenderTarget(d2d.TargetDesc{Width: 8, Height: 8, Label: "px"})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	b, err := dev.CreateSolidBrush(d2d.Blue)
	if err != nil {
		t.Fatalf("CreateSolidBrush() error = %v", err)
	}

	sess, err := target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() error = %v", err)
	}
	if err := sess.PutPixel(d2d.Pt(3, 5), b); err != nil {
		t.Fatalf("PutPixel() error = %v", err)
	}
	if err := sess.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	img := drv.Surface("px")
	if got := img.RGBAAt(3, 5); got.B != 255 {
		t.Errorf("pixel (3,5) = %v, want blue", got)
	}
	if got := img.RGBAAt(4, 5); got.A != 0 {
		t.Errorf("neighbor pixel painted: %v", got)
	}
}

// The loss cycle against a real driver: simulate, observe ErrDeviceLost
// from End, then keep rendering and see the new surface receive pixels.
func TestSimulatedDeviceLoss(t *testing.T) {
	dev, drv := newDevice(t)

	target, err := dev.CreateRenderTarget(d2d.TargetDesc{Width: 8, Height: 8, Label: "loss"})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	b, err := dev.CreateSolidBrush(d2d.Green)
	if err != nil {
		t.Fatalf("CreateSolidBrush() error = %v", err)
	}

	sess, err := target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() error = %v", err)
	}
	drv.TriggerDeviceLoss()
	if err := sess.End(); !errors.Is(err, d2d.ErrDeviceLost) {
		t.Fatalf("End() error = %v, want ErrDeviceLost", err)
	}
	if dev.Generation() != 1 {
		t.Errorf("Generation() = %v, want 1", dev.Generation())
	}

	// Recovery frame renders into a fresh incarnation.
	sess, err = target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() after loss error = %v", err)
	}
	if err := sess.FillRect(d2d.RectWH(0, 0, 8, 8), b); err != nil {
		t.Fatalf("FillRect() error = %v", err)
	}
	if err := sess.End(); err != nil {
		t.Fatalf("End() after recovery error = %v", err)
	}

	img := drv.Surface("loss")
	if got := img.RGBAAt(4, 4); got.G != 255 {
		t.Errorf("recovered frame pixel = %v, want green", got)
	}
}

// A stale surface handle used against a newer incarnation reports
// removal on its own, without an armed loss.
func TestStaleIncarnationFlush(t *testing.T) {
	drv := New()
	if err := drv.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s, err := drv.CreateSurface(d2d.TargetDesc{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}

	drv.TriggerDeviceLoss()
	if err := s.Flush(nil); !errors.Is(err, d2d.ErrDeviceRemoved) {
		t.Fatalf("armed Flush() error = %v, want ErrDeviceRemoved", err)
	}
	// The loss was consumed, but the handle is from the old incarnation.
	if err := s.Flush(nil); !errors.Is(err, d2d.ErrDeviceRemoved) {
		t.Errorf("stale Flush() error = %v, want ErrDeviceRemoved", err)
	}
}

func TestBitmapDraw(t *testing.T) {
	dev, drv := newDevice(t)

	pix := make([]uint8, 2*2*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+3] = 255, 255 // opaque red
	}
	bm, err := dev.CreateBitmap(d2d.BitmapDesc{Width: 2, Height: 2, Pix: pix})
	if err != nil {
		t.Fatalf("CreateBitmap() error = %v", err)
	}

	target, err := dev.CreateRenderTarget(d2d.TargetDesc{Width: 8, Height: 8, Label: "bm"})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	sess, err := target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() error = %v", err)
	}
	if err := sess.DrawBitmap(bm, d2d.RectWH(2, 2, 4, 4), 1); err != nil {
		t.Fatalf("DrawBitmap() error = %v", err)
	}
	if err := sess.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	img := drv.Surface("bm")
	if got := img.RGBAAt(4, 4); got.R != 255 {
		t.Errorf("blitted pixel = %v, want red", got)
	}
}

func TestBitmapBadBufferSize(t *testing.T) {
	dev, _ := newDevice(t)

	_, err := dev.CreateBitmap(d2d.BitmapDesc{Width: 4, Height: 4, Pix: make([]uint8, 3)})
	var ce *d2d.CreationError
	if !errors.As(err, &ce) {
		t.Fatalf("CreateBitmap() error = %v, want *CreationError", err)
	}
}

func TestDashedStroke(t *testing.T) {
	dev, drv := newDevice(t)

	target, err := dev.CreateRenderTarget(d2d.TargetDesc{Width: 32, Height: 4, Label: "dash"})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	b, err := dev.CreateSolidBrush(d2d.Black)
	if err != nil {
		t.Fatalf("CreateSolidBrush() error = %v", err)
	}
	style, err := dev.CreateStrokeStyle(d2d.StrokeDesc{Dashes: []float64{4, 4}})
	if err != nil {
		t.Fatalf("CreateStrokeStyle() error = %v", err)
	}

	sess, err := target.BeginDraw(dev)
	if err != nil {
		t.Fatalf("BeginDraw() error = %v", err)
	}
	sess.SetStrokeStyle(style)
	if err := sess.DrawLine(d2d.Pt(0, 2), d2d.Pt(32, 2), b, 1); err != nil {
		t.Fatalf("DrawLine() error = %v", err)
	}
	if err := sess.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	img := drv.Surface("dash")
	if got := img.RGBAAt(1, 2); got.A == 0 {
		t.Error("first dash not painted")
	}
	if got := img.RGBAAt(6, 2); got.A != 0 {
		t.Errorf("gap pixel painted: %v", got)
	}
}
