// Package cellgrid holds the frame buffers the compositor writes into: a
// grid of terminal Cells, a parallel Kind tag per cell, an RGBA pixel
// overlay, and the per-cell display-width grid. Cells, kinds and pixels are
// doubled (current + previous) so the differential emitter can diff them
// frame to frame; the width grid is kept for the current frame only.
package cellgrid

// EGCBase marks an Ord value as an index into the extended-grapheme-cluster
// pool rather than a bare Unicode codepoint.
const EGCBase = 0x180000

// Style is a bitset of SGR-ish text attributes.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Underline
	Strikethrough
	Overline
	Reverse
)

// RGB is an 8-bit-per-channel sRGB color.
type RGB struct {
	R, G, B uint8
}

// Lerp blends b into the receiver by fraction alpha in [0, 1].
func (c RGB) Lerp(b RGB, alpha float64) RGB {
	return RGB{
		R: lerpByte(c.R, b.R, alpha),
		G: lerpByte(c.G, b.G, alpha),
		B: lerpByte(c.B, b.B, alpha),
	}
}

func lerpByte(a, b uint8, alpha float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*alpha
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Cell is one terminal character position.
type Cell struct {
	Ord      uint32
	Style    Style
	FG, BG   RGB
}

// IsEGC reports whether Ord is an index into the extended-grapheme-cluster
// pool rather than a literal codepoint.
func (c Cell) IsEGC() bool {
	return c.Ord&EGCBase != 0
}

// Blank is the blank glyph cell: a space on a black background with no
// styling.
var Blank = Cell{Ord: ' '}

// Kind tags how a cell's visual content is produced.
type Kind uint8

const (
	// Glyph cells are rendered solely from Cell fields.
	Glyph Kind = iota
	// Sixel cells are rendered entirely from the pixel overlay.
	Sixel
	// Mixed cells are partially covered by the pixel overlay; the glyph
	// still contributes where overlay alpha is zero.
	Mixed
	// SeeThroughSixel cells had their background composited through a
	// low-variance sixel layer and must have bg reconciled post-quantization.
	SeeThroughSixel
)

// RGBA is a straight-alpha 8-bit-per-channel pixel.
type RGBA struct {
	R, G, B, A uint8
}

// Opaque reports whether the pixel is fully covering (alpha == 255).
func (p RGBA) Opaque() bool { return p.A == 255 }

// Transparent reports whether the pixel contributes nothing (alpha == 0).
func (p RGBA) Transparent() bool { return p.A == 0 }

// BlendOver alpha-blends p over dst (straight alpha, dst treated opaque).
func BlendOver(p RGBA, dst RGB) RGB {
	if p.A == 0 {
		return dst
	}
	if p.A == 255 {
		return RGB{p.R, p.G, p.B}
	}
	a := float64(p.A) / 255
	return RGB{
		R: lerpByte(dst.R, p.R, a),
		G: lerpByte(dst.G, p.G, a),
		B: lerpByte(dst.B, p.B, a),
	}
}
