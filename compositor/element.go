// Package compositor writes elements (back-to-front, already position- and
// region-clipped) into a cellgrid.FrameBuffer's cell, kind, and pixel
// overlay grids. Every Render* function is a pure, stateless write against
// the frame buffer it is given; all z-ordering comes from call order.
package compositor

import (
	"termcore/cellgrid"
	"termcore/region"
)

// Header is the common per-element payload every compositor entry point
// takes: the already-clipped region it may touch, its absolute top-left
// corner, and its blend parameters.
type Header struct {
	Region      region.Region
	AbsY, AbsX  int
	Alpha       float64
	Transparent bool
}

// Blitter selects how a Graphics or GraphicsField element turns an RGBA
// texture into cells plus overlay pixels.
type Blitter int

const (
	Full Blitter = iota
	Half
	Braille
	SixelBlitter
)

// Pane is a solid-color fill.
type Pane struct {
	Header
	BG cellgrid.RGB
}

// Canvas is a positioned source cell grid (e.g. a text widget, or a
// parsed terminal pane) composited into the frame buffer.
type Canvas struct {
	Header
	Source []cellgrid.Cell
	SrcW   int
}

// Graphics is an RGBA texture rendered through one blitter strategy.
type Graphics struct {
	Header
	Texture []cellgrid.RGBA
	TexW    int
	Blit    Blitter
}

// FieldPoint is a fractional-position particle anchor; the particle lands
// at the cell (floor(Y), floor(X)).
type FieldPoint struct {
	Y, X float64
}

// TextField renders single-cell text particles at fractional positions.
type TextField struct {
	Header
	Positions []FieldPoint
	Particles []cellgrid.Cell
}

// GraphicsField renders RGBA particles at fractional positions through one
// blitter strategy; Braille particles falling in the same cell accumulate.
type GraphicsField struct {
	Header
	Positions []FieldPoint
	Particles []cellgrid.RGBA
	Blit      Blitter
}

// Cursor is the final style-mask overlay pass applied to a region.
type Cursor struct {
	Region region.Region
	On, Off cellgrid.Style
	FG, BG  *cellgrid.RGB
}

func clampAlpha(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
