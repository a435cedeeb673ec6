// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package soft provides the pure-Go software driver. It renders into
// in-memory RGBA images and needs no GPU, which makes it the driver of
// choice for tests, headless rendering and CI.
//
// Importing the package registers it under the name "soft":
//
//	import _ "github.com/gogpu/d2d/driver/soft"
//
// Real hardware never disappears underneath a CPU renderer, so the
// driver can also simulate device loss on demand via
// [Driver.TriggerDeviceLoss]; the next flush then reports the
// device-removed status exactly as a GPU driver would.
package soft

import (
	"fmt"
	"image"

	"github.com/gogpu/d2d"
	"github.com/gogpu/d2d/internal/raster"
)

func init() {
	d2d.RegisterDriver("soft", func() d2d.Driver { return New() })
}

// Driver is the software rendering driver. One instance serves one
// Device; use [New] or let d2d.NewDevice construct it by name.
type Driver struct {
	incarnation uint64
	pendingLoss bool
	surfaces    map[string]*surface
}

// New creates an unregistered driver instance, for passing directly to
// d2d.NewDevice with d2d.WithDriver.
func New() *Driver {
	return &Driver{surfaces: make(map[string]*surface)}
}

// Name implements d2d.Driver.
func (dr *Driver) Name() string { return "soft" }

// Init implements d2d.Driver. The software device always comes up.
func (dr *Driver) Init() error {
	dr.incarnation = 1
	return nil
}

// Close implements d2d.Driver.
func (dr *Driver) Close() {
	dr.surfaces = nil
}

// TriggerDeviceLoss arms a simulated device loss: the next surface
// flush fails with the device-removed status and starts a new
// incarnation. Handles from the old incarnation then refuse to draw,
// mirroring how a real GPU invalidates its objects.
func (dr *Driver) TriggerDeviceLoss() {
	dr.pendingLoss = true
}

// Surface returns the pixels of the most recent surface created under
// label, or nil if no such surface exists. The returned image aliases
// driver memory: read it between frames, not during one.
func (dr *Driver) Surface(label string) *image.RGBA {
	s, ok := dr.surfaces[label]
	if !ok {
		return nil
	}
	return s.img
}

// CreateSurface implements d2d.Driver.
func (dr *Driver) CreateSurface(desc d2d.TargetDesc) (d2d.DriverSurface, error) {
	s := &surface{
		driver: dr,
		born:   dr.incarnation,
		img:    image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
	}
	if dr.surfaces != nil {
		dr.surfaces[desc.Label] = s
	}
	return s, nil
}

// CreateBrush implements d2d.Driver.
func (dr *Driver) CreateBrush(desc d2d.BrushDesc) (d2d.DriverBrush, error) {
	return &brush{born: dr.incarnation, color: desc.Color}, nil
}

// CreateBitmap implements d2d.Driver. Pixels are copied into an RGBA
// image at creation; the descriptor's buffer is not retained.
func (dr *Driver) CreateBitmap(desc d2d.BitmapDesc) (d2d.DriverBitmap, error) {
	img := image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	if want := desc.Width * desc.Height * 4; len(desc.Pix) != want {
		return nil, fmt.Errorf("soft: bitmap pixel buffer is %d bytes, want %d", len(desc.Pix), want)
	}
	copy(img.Pix, desc.Pix)
	return &bitmap{born: dr.incarnation, img: img}, nil
}

// CreateStrokeStyle implements d2d.Driver.
func (dr *Driver) CreateStrokeStyle(desc d2d.StrokeDesc) (d2d.DriverStroke, error) {
	return &stroke{born: dr.incarnation, desc: desc}, nil
}

type brush struct {
	born  uint64
	color d2d.Color
}

func (b *brush) Destroy() {}

type bitmap struct {
	born uint64
	img  *image.RGBA
}

func (b *bitmap) Size() d2d.Size {
	return d2d.Size{Width: b.img.Rect.Dx(), Height: b.img.Rect.Dy()}
}

func (b *bitmap) Destroy() { b.img = nil }

type stroke struct {
	born uint64
	desc d2d.StrokeDesc
}

func (s *stroke) Destroy() {}

type surface struct {
	driver *Driver
	born   uint64
	img    *image.RGBA
}

func (s *surface) Size() d2d.Size {
	return d2d.Size{Width: s.img.Rect.Dx(), Height: s.img.Rect.Dy()}
}

func (s *surface) Destroy() {}

// Flush executes the batch onto the surface image. A surface from an
// older incarnation, or a flush with a loss armed, reports the
// device-removed status.
func (s *surface) Flush(cmds []d2d.Command) error {
	if s.driver.pendingLoss {
		s.driver.pendingLoss = false
		s.driver.incarnation++
		return fmt.Errorf("soft: simulated loss: %w", d2d.ErrDeviceRemoved)
	}
	if s.born != s.driver.incarnation {
		return fmt.Errorf("soft: surface from incarnation %d used on %d: %w",
			s.born, s.driver.incarnation, d2d.ErrDeviceRemoved)
	}
	for i := range cmds {
		if err := s.execute(&cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *surface) execute(cmd *d2d.Command) error {
	col, dashes, offset, err := paintOf(cmd)
	if err != nil {
		return err
	}
	switch cmd.Kind {
	case d2d.CmdClear:
		raster.Clear(s.img, cmd.Color)
	case d2d.CmdLine:
		raster.Line(s.img, cmd.P0, cmd.P1, col, cmd.StrokeWidth, dashes, offset)
	case d2d.CmdFillRect:
		raster.FillRect(s.img, cmd.Rect, col)
	case d2d.CmdStrokeRect:
		raster.StrokeRect(s.img, cmd.Rect, col, cmd.StrokeWidth)
	case d2d.CmdFillRoundedRect:
		raster.FillRoundedRect(s.img, cmd.Round, col)
	case d2d.CmdStrokeRoundedRect:
		raster.StrokeRoundedRect(s.img, cmd.Round, col, cmd.StrokeWidth)
	case d2d.CmdFillEllipse:
		raster.FillEllipse(s.img, cmd.Ellipse, col)
	case d2d.CmdStrokeEllipse:
		raster.StrokeEllipse(s.img, cmd.Ellipse, col, cmd.StrokeWidth)
	case d2d.CmdDrawBitmap:
		bm, ok := cmd.Bitmap.(*bitmap)
		if !ok || bm.img == nil {
			return fmt.Errorf("soft: bitmap handle %T is not a soft bitmap", cmd.Bitmap)
		}
		raster.Blit(s.img, bm.img, cmd.Dst, cmd.Opacity)
	default:
		return fmt.Errorf("soft: unknown command kind %d", cmd.Kind)
	}
	return nil
}

// paintOf extracts the brush color and the optional dash pattern
// captured in the command.
func paintOf(cmd *d2d.Command) (d2d.Color, []float64, float64, error) {
	var col d2d.Color
	if cmd.Brush != nil {
		b, ok := cmd.Brush.(*brush)
		if !ok {
			return col, nil, 0, fmt.Errorf("soft: brush handle %T is not a soft brush", cmd.Brush)
		}
		col = b.color
	}
	if cmd.Stroke != nil {
		st, ok := cmd.Stroke.(*stroke)
		if !ok {
			return col, nil, 0, fmt.Errorf("soft: stroke handle %T is not a soft stroke style", cmd.Stroke)
		}
		return col, st.desc.Dashes, st.desc.DashOffset, nil
	}
	return col, nil, 0, nil
}
