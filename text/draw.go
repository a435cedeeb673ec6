// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/d2d"
	"github.com/gogpu/d2d/internal/cache"
)

// Drawer renders shaped text into draw sessions. It keeps a cache of
// glyph bitmaps per (rune, color) at the drawer's face size; each
// cached bitmap is a managed device resource, so a device loss costs
// one re-upload per glyph on the next frame and nothing else.
//
// A Drawer is bound to one Device and follows the same single-threaded
// discipline.
type Drawer struct {
	dev  *d2d.Device
	face *Face

	glyphs *cache.LRU[glyphKey, *glyphEntry]
	otFace font.Face
}

type glyphKey struct {
	r    rune
	rgba uint32
}

type glyphEntry struct {
	bitmap *d2d.Bitmap
	bounds image.Rectangle // mask bounds relative to the glyph origin
	err    error
}

// NewDrawer creates a drawer for the given device and face.
func NewDrawer(dev *d2d.Device, face *Face) (*Drawer, error) {
	if face == nil {
		return nil, fmt.Errorf("text: nil face")
	}
	otFace, err := opentype.NewFace(face.source.raster, &opentype.FaceOptions{
		Size:    face.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: create raster face: %w", err)
	}
	return &Drawer{
		dev:    dev,
		face:   face,
		glyphs: cache.NewLRU[glyphKey, *glyphEntry](256, hashGlyphKey),
		otFace: otFace,
	}, nil
}

// Face returns the drawer's face.
func (d *Drawer) Face() *Face { return d.face }

// CacheStats reports glyph cache hit/miss counters.
func (d *Drawer) CacheStats() cache.Stats { return d.glyphs.Stats() }

// Measure returns the advance width of s in pixels.
func (d *Drawer) Measure(s string) float64 {
	return Advance(d.face, s)
}

// DrawString draws s with its baseline origin at origin. Glyph color
// is baked into the cached bitmaps, so reusing a small palette keeps
// the cache effective.
func (d *Drawer) DrawString(sess *d2d.Session, s string, origin d2d.Point, col d2d.Color) error {
	for _, g := range Shape(d.face, s) {
		r := runeAt(s, g.Cluster)
		if r == 0 || r == ' ' || r == '\t' {
			continue
		}
		entry := d.glyphEntry(r, col)
		if entry.err != nil {
			return entry.err
		}
		if entry.bitmap == nil {
			continue
		}
		dst := d2d.Rect{
			Min: d2d.Pt(
				origin.X+g.X+float64(entry.bounds.Min.X),
				origin.Y+g.Y+float64(entry.bounds.Min.Y),
			),
			Max: d2d.Pt(
				origin.X+g.X+float64(entry.bounds.Max.X),
				origin.Y+g.Y+float64(entry.bounds.Max.Y),
			),
		}
		if err := sess.DrawBitmap(entry.bitmap, dst, col.A); err != nil {
			return err
		}
	}
	return nil
}

// glyphEntry returns the cached device bitmap for r in col, building
// mask and bitmap on first use.
func (d *Drawer) glyphEntry(r rune, col d2d.Color) *glyphEntry {
	key := glyphKey{r: r, rgba: packColor(col)}
	entry := d.glyphs.GetOrCreate(key, func() *glyphEntry {
		return d.buildGlyph(r, col)
	})
	if entry.err != nil {
		// Creation failures are not cached; the next draw retries.
		d.glyphs.Delete(key)
	}
	return entry
}

func (d *Drawer) buildGlyph(r rune, col d2d.Color) *glyphEntry {
	bounds, _, ok := d.otFace.GlyphBounds(r)
	if !ok {
		// Fall back to the font's notdef rendering via a placeholder box.
		bounds, _, ok = d.otFace.GlyphBounds('?')
		if !ok {
			return &glyphEntry{}
		}
		r = '?'
	}
	rect := image.Rect(
		int(bounds.Min.X)>>6, int(bounds.Min.Y)>>6,
		int(bounds.Max.X+63)>>6, int(bounds.Max.Y+63)>>6,
	)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return &glyphEntry{}
	}

	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: d.otFace,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(r))

	// Tint the mask into straight-alpha RGBA pixels.
	rgba := image.NewRGBA(mask.Bounds())
	cr := uint8(clamp255(col.R * 255))
	cg := uint8(clamp255(col.G * 255))
	cb := uint8(clamp255(col.B * 255))
	for i, a := range mask.Pix {
		o := i * 4
		rgba.Pix[o+0] = cr
		rgba.Pix[o+1] = cg
		rgba.Pix[o+2] = cb
		rgba.Pix[o+3] = a
	}

	bm, err := d.dev.CreateBitmap(d2d.BitmapDesc{
		Width:  rect.Dx(),
		Height: rect.Dy(),
		Pix:    rgba.Pix,
		Label:  fmt.Sprintf("glyph %q", r),
	})
	if err != nil {
		return &glyphEntry{err: err}
	}
	return &glyphEntry{bitmap: bm, bounds: rect}
}

// runeAt returns the rune starting at byte offset i in s.
func runeAt(s string, i int) rune {
	if i < 0 || i >= len(s) {
		return 0
	}
	for _, r := range s[i:] {
		return r
	}
	return 0
}

func packColor(c d2d.Color) uint32 {
	return uint32(clamp255(c.R*255))<<24 |
		uint32(clamp255(c.G*255))<<16 |
		uint32(clamp255(c.B*255))<<8 |
		uint32(clamp255(c.A*255))
}

func hashGlyphKey(k glyphKey) uint64 {
	return uint64(k.r)<<32 ^ uint64(k.rgba)
}

func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}
