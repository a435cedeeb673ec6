// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package text draws shaped text through a draw session. It sits
// outside the resilience core: glyphs are rasterized to alpha masks on
// the CPU, cached as device bitmaps, and blitted like any other
// bitmap, so text survives device loss with no special handling.
//
// Shaping uses go-text/typesetting (HarfBuzz port): kerning,
// ligatures and complex scripts work, and bidirectional text is
// segmented with x/text's UBA implementation before shaping.
package text

import (
	"bytes"
	"fmt"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontSource is a parsed font file. It is immutable after creation and
// safe for concurrent use; create one per font file and share it.
type FontSource struct {
	data []byte

	// shaped is the go-text font used for shaping (thread-safe).
	shaped *gofont.Font

	// raster is the x/image font used for mask rasterization.
	raster *sfnt.Font
}

// NewFontSource parses TTF/OTF font data. The data slice is retained.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("text: empty font data")
	}
	shapedFace, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}
	rasterFont, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font for rasterization: %w", err)
	}
	return &FontSource{
		data:   data,
		shaped: shapedFace.Font,
		raster: rasterFont,
	}, nil
}

// Face is a font source at a fixed pixel size.
//
// A Face owns no device state; it can outlive any Device and be shared
// across devices. Per-device rasterization caches live in [Drawer].
type Face struct {
	source *FontSource
	size   float64
}

// NewFace creates a face at the given pixel size.
func NewFace(source *FontSource, size float64) (*Face, error) {
	if source == nil {
		return nil, fmt.Errorf("text: nil font source")
	}
	if size <= 0 {
		return nil, fmt.Errorf("text: invalid face size %g", size)
	}
	return &Face{source: source, size: size}, nil
}

// Size returns the face's pixel size.
func (f *Face) Size() float64 { return f.size }

// Source returns the font source this face was created from.
func (f *Face) Source() *FontSource { return f.source }

// shapingFace wraps the source font for one shaping call. gofont.Face
// carries mutable glyph caches and is not safe for concurrent use, so
// each call gets a fresh one; construction is cheap.
func (f *Face) shapingFace() *gofont.Face {
	return &gofont.Face{Font: f.source.shaped}
}
