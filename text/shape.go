// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// ShapedGlyph is one positioned glyph from shaping, in pixels relative
// to the text origin on the baseline.
type ShapedGlyph struct {
	// GID is the font glyph index.
	GID uint32

	// Cluster is the byte offset of the source rune in the original
	// string.
	Cluster int

	// X, Y is the glyph position including shaping offsets.
	X, Y float64

	// XAdvance is the pen advance after this glyph.
	XAdvance float64
}

// Shape converts a string into positioned glyphs. The text is first
// split into bidirectional runs (x/text UBA), then each run is shaped
// with HarfBuzz in its own direction; runs are emitted in visual
// order, left to right.
func Shape(face *Face, text string) []ShapedGlyph {
	if text == "" || face == nil {
		return nil
	}

	var p bidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		return shapeRun(face, text, 0, false, nil, 0)
	}
	ordering, err := p.Order()
	if err != nil {
		return shapeRun(face, text, 0, false, nil, 0)
	}

	var out []ShapedGlyph
	var penX float64
	offset := 0
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		runText := run.String()
		rtl := run.Direction() == bidi.RightToLeft
		out = shapeRun(face, runText, offset, rtl, out, penX)
		if n := len(out); n > 0 {
			last := out[n-1]
			penX = last.X + last.XAdvance
		}
		offset += len(runText)
	}
	return out
}

// Advance returns the total advance width of the shaped text in
// pixels.
func Advance(face *Face, text string) float64 {
	glyphs := Shape(face, text)
	if len(glyphs) == 0 {
		return 0
	}
	last := glyphs[len(glyphs)-1]
	return last.X + last.XAdvance
}

// shapeRun shapes one directionally uniform run starting at penX and
// appends the glyphs to dst.
func shapeRun(face *Face, runText string, byteOffset int, rtl bool, dst []ShapedGlyph, penX float64) []ShapedGlyph {
	runes := []rune(runText)
	if len(runes) == 0 {
		return dst
	}
	dir := di.DirectionLTR
	if rtl {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face.shapingFace(),
		Size:      floatToFixed(face.size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("und"),
	}

	var shaper shaping.HarfbuzzShaper
	output := shaper.Shape(input)

	x := penX
	for _, g := range output.Glyphs {
		adv := fixedToFloat(g.Advance)
		dst = append(dst, ShapedGlyph{
			GID:      uint32(g.GlyphID),
			Cluster:  byteOffset + g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		})
		x += adv
	}
	return dst
}

// detectScript picks the script of the first non-space rune; runs from
// the bidi segmenter are close to script-uniform in practice.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
