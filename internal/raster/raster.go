// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster executes batched draw commands onto an in-memory RGBA
// image. It is the pixel backend shared by the drivers: the soft driver
// presents the image directly, the wgpu driver uploads it as a texture.
//
// Coordinates are float64 target pixels; geometry is point-sampled at
// pixel centers. The rasterizer is deliberately simple — correctness
// and clipping over antialiasing.
package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/d2d"
)

// Clear overwrites every pixel of dst with c, including alpha.
func Clear(dst *image.RGBA, c d2d.Color) {
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(c.Std()), image.Point{}, xdraw.Src)
}

// FillRect paints the interior of r with c using source-over blending.
func FillRect(dst *image.RGBA, r d2d.Rect, c d2d.Color) {
	ir := clipRect(dst, r)
	if ir.Empty() {
		return
	}
	xdraw.Draw(dst, ir, image.NewUniform(c.Std()), image.Point{}, xdraw.Over)
}

// StrokeRect draws the outline of r with the given stroke width,
// centered on the edges.
func StrokeRect(dst *image.RGBA, r d2d.Rect, c d2d.Color, width float64) {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	// Top, bottom, left, right bands. The horizontal bands extend the
	// full outer width, covering the corners.
	FillRect(dst, d2d.Rect{
		Min: d2d.Pt(r.Min.X-h, r.Min.Y-h),
		Max: d2d.Pt(r.Max.X+h, r.Min.Y+h),
	}, c)
	FillRect(dst, d2d.Rect{
		Min: d2d.Pt(r.Min.X-h, r.Max.Y-h),
		Max: d2d.Pt(r.Max.X+h, r.Max.Y+h),
	}, c)
	FillRect(dst, d2d.Rect{
		Min: d2d.Pt(r.Min.X-h, r.Min.Y+h),
		Max: d2d.Pt(r.Min.X+h, r.Max.Y-h),
	}, c)
	FillRect(dst, d2d.Rect{
		Min: d2d.Pt(r.Max.X-h, r.Min.Y+h),
		Max: d2d.Pt(r.Max.X+h, r.Max.Y-h),
	}, c)
}

// Line draws a stroked segment from p0 to p1. dashes, when non-empty,
// alternates on/off lengths expressed in multiples of the width,
// shifted by offset.
func Line(dst *image.RGBA, p0, p1 d2d.Point, c d2d.Color, width float64, dashes []float64, offset float64) {
	if width <= 0 {
		width = 1
	}
	if len(dashes) == 0 {
		segment(dst, p0, p1, c, width)
		return
	}
	for _, seg := range dashSegments(p0, p1, width, dashes, offset) {
		segment(dst, seg[0], seg[1], c, width)
	}
}

// FillEllipse paints the interior of e.
func FillEllipse(dst *image.RGBA, e d2d.Ellipse, c d2d.Color) {
	fillRegion(dst, e.Bounds(), c, func(x, y float64) bool {
		return insideEllipse(e, x, y)
	})
}

// StrokeEllipse draws the outline of e: the band between the ellipse
// grown and shrunk by half the stroke width.
func StrokeEllipse(dst *image.RGBA, e d2d.Ellipse, c d2d.Color, width float64) {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	outer := d2d.Ellipse{Center: e.Center, RadiusX: e.RadiusX + h, RadiusY: e.RadiusY + h}
	inner := d2d.Ellipse{Center: e.Center, RadiusX: e.RadiusX - h, RadiusY: e.RadiusY - h}
	fillRegion(dst, outer.Bounds(), c, func(x, y float64) bool {
		return insideEllipse(outer, x, y) && !insideEllipse(inner, x, y)
	})
}

// FillRoundedRect paints the interior of rr.
func FillRoundedRect(dst *image.RGBA, rr d2d.RoundedRect, c d2d.Color) {
	fillRegion(dst, rr.Rect, c, func(x, y float64) bool {
		return insideRoundedRect(rr, x, y)
	})
}

// StrokeRoundedRect draws the outline of rr, the band between the
// shape grown and shrunk by half the stroke width.
func StrokeRoundedRect(dst *image.RGBA, rr d2d.RoundedRect, c d2d.Color, width float64) {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	outer := inflateRounded(rr, h)
	inner := inflateRounded(rr, -h)
	fillRegion(dst, outer.Rect, c, func(x, y float64) bool {
		return insideRoundedRect(outer, x, y) && !insideRoundedRect(inner, x, y)
	})
}

// Blit scales src into the dst rectangle with the given opacity in
// [0, 1] (clamped).
func Blit(dst *image.RGBA, src image.Image, r d2d.Rect, opacity float64) {
	ir := clipRect(dst, r)
	if ir.Empty() {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	if opacity <= 0 {
		return
	}
	full := image.Rect(
		int(math.Floor(r.Min.X)), int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)), int(math.Ceil(r.Max.Y)),
	)
	var opts *xdraw.Options
	if opacity < 1 {
		a := uint8(math.Round(opacity * 255))
		opts = &xdraw.Options{
			SrcMask: image.NewUniform(color.Alpha{A: a}),
		}
	}
	xdraw.ApproxBiLinear.Scale(dst, full, src, src.Bounds(), xdraw.Over, opts)
}

// segment rasterizes one solid stroked segment with round caps by
// distance test over its bounding box.
func segment(dst *image.RGBA, p0, p1 d2d.Point, c d2d.Color, width float64) {
	h := width / 2
	box := d2d.Rect{
		Min: d2d.Pt(math.Min(p0.X, p1.X)-h, math.Min(p0.Y, p1.Y)-h),
		Max: d2d.Pt(math.Max(p0.X, p1.X)+h, math.Max(p0.Y, p1.Y)+h),
	}
	fillRegion(dst, box, c, func(x, y float64) bool {
		return distToSegment(d2d.Pt(x, y), p0, p1) <= h
	})
}

// dashSegments splits p0→p1 into the visible sub-segments of the dash
// pattern. Dash lengths are multiples of the stroke width.
func dashSegments(p0, p1 d2d.Point, width float64, dashes []float64, offset float64) [][2]d2d.Point {
	d := p1.Sub(p0)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return nil
	}
	ux, uy := d.X/length, d.Y/length

	var total float64
	for _, v := range dashes {
		total += v * width
	}
	if total <= 0 {
		return [][2]d2d.Point{{p0, p1}}
	}

	var out [][2]d2d.Point
	pos := -math.Mod(offset*width, total)
	on := true
	i := 0
	for pos < length {
		seg := dashes[i] * width
		start := math.Max(pos, 0)
		end := math.Min(pos+seg, length)
		if on && end > start {
			out = append(out, [2]d2d.Point{
				d2d.Pt(p0.X+ux*start, p0.Y+uy*start),
				d2d.Pt(p0.X+ux*end, p0.Y+uy*end),
			})
		}
		pos += seg
		on = !on
		i = (i + 1) % len(dashes)
	}
	return out
}

// fillRegion blends c into every pixel of box whose center satisfies
// inside.
func fillRegion(dst *image.RGBA, box d2d.Rect, c d2d.Color, inside func(x, y float64) bool) {
	ir := clipRect(dst, box)
	if ir.Empty() {
		return
	}
	src := premultiply(c)
	if src.A == 0 {
		return
	}
	for py := ir.Min.Y; py < ir.Max.Y; py++ {
		for px := ir.Min.X; px < ir.Max.X; px++ {
			if inside(float64(px)+0.5, float64(py)+0.5) {
				blendPixel(dst, px, py, src)
			}
		}
	}
}

func insideEllipse(e d2d.Ellipse, x, y float64) bool {
	if e.RadiusX <= 0 || e.RadiusY <= 0 {
		return false
	}
	dx := (x - e.Center.X) / e.RadiusX
	dy := (y - e.Center.Y) / e.RadiusY
	return dx*dx+dy*dy <= 1
}

func insideRoundedRect(rr d2d.RoundedRect, x, y float64) bool {
	r := rr.Rect
	if r.Empty() || x < r.Min.X || x > r.Max.X || y < r.Min.Y || y > r.Max.Y {
		return false
	}
	rx := math.Min(rr.RadiusX, r.Width()/2)
	ry := math.Min(rr.RadiusY, r.Height()/2)
	if rx <= 0 || ry <= 0 {
		return true
	}
	// Outside the corner squares the straight bands apply; inside one,
	// the point must fall within the corner ellipse.
	var cx, cy float64
	switch {
	case x < r.Min.X+rx && y < r.Min.Y+ry:
		cx, cy = r.Min.X+rx, r.Min.Y+ry
	case x > r.Max.X-rx && y < r.Min.Y+ry:
		cx, cy = r.Max.X-rx, r.Min.Y+ry
	case x < r.Min.X+rx && y > r.Max.Y-ry:
		cx, cy = r.Min.X+rx, r.Max.Y-ry
	case x > r.Max.X-rx && y > r.Max.Y-ry:
		cx, cy = r.Max.X-rx, r.Max.Y-ry
	default:
		return true
	}
	dx := (x - cx) / rx
	dy := (y - cy) / ry
	return dx*dx+dy*dy <= 1
}

func inflateRounded(rr d2d.RoundedRect, by float64) d2d.RoundedRect {
	return d2d.RoundedRect{
		Rect: d2d.Rect{
			Min: d2d.Pt(rr.Rect.Min.X-by, rr.Rect.Min.Y-by),
			Max: d2d.Pt(rr.Rect.Max.X+by, rr.Rect.Max.Y+by),
		},
		RadiusX: math.Max(rr.RadiusX+by, 0),
		RadiusY: math.Max(rr.RadiusY+by, 0),
	}
}

func distToSegment(p, a, b d2d.Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	den := ab.X*ab.X + ab.Y*ab.Y
	if den == 0 {
		return math.Hypot(ap.X, ap.Y)
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx := p.X - (a.X + ab.X*t)
	dy := p.Y - (a.Y + ab.Y*t)
	return math.Hypot(dx, dy)
}

// clipRect converts a float rect to integer pixels clipped to dst.
func clipRect(dst *image.RGBA, r d2d.Rect) image.Rectangle {
	ir := image.Rect(
		int(math.Floor(r.Min.X)), int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)), int(math.Ceil(r.Max.Y)),
	)
	return ir.Intersect(dst.Bounds())
}

func premultiply(c d2d.Color) color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(math.Round(clamp01(c.R) * a * 255)),
		G: uint8(math.Round(clamp01(c.G) * a * 255)),
		B: uint8(math.Round(clamp01(c.B) * a * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

// blendPixel composites a premultiplied src over dst at (x, y).
func blendPixel(dst *image.RGBA, x, y int, src color.RGBA) {
	if src.A == 255 {
		dst.SetRGBA(x, y, src)
		return
	}
	i := dst.PixOffset(x, y)
	inv := uint32(255 - src.A)
	dst.Pix[i+0] = uint8(uint32(src.R) + (uint32(dst.Pix[i+0])*inv+127)/255)
	dst.Pix[i+1] = uint8(uint32(src.G) + (uint32(dst.Pix[i+1])*inv+127)/255)
	dst.Pix[i+2] = uint8(uint32(src.B) + (uint32(dst.Pix[i+2])*inv+127)/255)
	dst.Pix[i+3] = uint8(uint32(src.A) + (uint32(dst.Pix[i+3])*inv+127)/255)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
