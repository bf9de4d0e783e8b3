// Package diffrender implements the differential update algorithm: compare
// a frame buffer's current and previous cell/kind/pixel grids, normalize
// wide-character widths, and emit the minimal cursor-move/SGR/glyph/sixel
// byte stream that brings the terminal from the previous frame to the
// current one.
package diffrender

import (
	"fmt"
	"io"

	"termcore/cellgrid"
	"termcore/compositor"
	"termcore/egc"
	"termcore/escseq"
	"termcore/outbuf"
	"termcore/palette"
	"termcore/sixel"
)

// Emitter tracks cross-frame cursor position and last-emitted style so glyph
// emission can compute a minimal SGR delta instead of a full attribute reset
// per cell.
type Emitter struct {
	pool       *egc.Pool
	haveCursor bool
	cursorY    int
	cursorX    int
	haveStyle  bool
	lastStyle  cellgrid.Cell
}

// New returns an emitter bound to an EGC pool used to resolve multi-rune
// glyph clusters.
func New(pool *egc.Pool) *Emitter {
	return &Emitter{pool: pool}
}

// Emit diffs fb against its previous frame and writes the update into out.
// resized forces a full sixel re-emission (the terminal geometry changed,
// so every stale pixel must be assumed dirty).
func (e *Emitter) Emit(fb *cellgrid.FrameBuffer, out *outbuf.Buffer, resized bool) error {
	compositor.NormalizeWidths(fb, e.pool)

	rect, hasGraphics := nonGlyphBounds(fb)
	emitSixel := resized || kindsDiffer(fb)
	if hasGraphics && !emitSixel {
		emitSixel = graphicsRegionDirty(fb, rect)
	}

	// Render into a scratch buffer first: whether anything is emitted at all
	// depends on the diff below, and ESC 7/ESC 8 must only bracket actual
	// content, never appear alone on a no-op frame.
	body := outbuf.New()

	if emitSixel && hasGraphics {
		full := rect
		rect = truncateToSixelRows(fb, rect)
		// MIXED glyphs are emitted over the untruncated rect so the rows
		// truncateToSixelRows carved off still get their glyphs.
		for y := full.y; y < full.y+full.h; y++ {
			for x := full.x; x < full.x+full.w; x++ {
				idx := fb.CellIndex(y, x)
				if fb.Kind[idx] == cellgrid.Mixed {
					if err := e.emitGlyph(fb, body, y, x); err != nil {
						return err
					}
				}
			}
		}
		if rect.h > 0 {
			if err := e.moveCursor(body, rect.y, rect.x); err != nil {
				return err
			}
			entries, err := e.emitSixelBlock(fb, body, rect)
			if err != nil {
				return err
			}
			for y := rect.y; y < rect.y+rect.h; y++ {
				for x := rect.x; x < rect.x+rect.w; x++ {
					idx := fb.CellIndex(y, x)
					if fb.Kind[idx] != cellgrid.SeeThroughSixel {
						continue
					}
					reconcileSeeThrough(fb, idx, entries)
					if err := e.emitGlyph(fb, body, y, x); err != nil {
						return err
					}
				}
			}
		} else {
			emitSixel = false
		}
	}

	for y := 0; y < fb.Geometry.Rows; y++ {
		for x := 0; x < fb.Geometry.Cols; x++ {
			idx := fb.CellIndex(y, x)
			if fb.Kind[idx] != cellgrid.Glyph {
				continue
			}
			insideRect := emitSixel && hasGraphics && rectContains(rect, y, x)
			wasNonGlyph := fb.PrevKind[idx] != cellgrid.Glyph
			differs := fb.Cells[idx] != fb.PrevCells[idx]
			if !differs && !insideRect && !wasNonGlyph {
				continue
			}
			if err := e.emitGlyph(fb, body, y, x); err != nil {
				return err
			}
		}
	}

	if body.Len() > 0 {
		out.WriteString(escseq.SaveCursor)
		out.Write(body.Bytes())
		out.WriteString(escseq.RestoreCursor)
	}
	return nil
}

type pixelRect struct{ y, x, h, w int }

func nonGlyphBounds(fb *cellgrid.FrameBuffer) (pixelRect, bool) {
	minY, minX := fb.Geometry.Rows, fb.Geometry.Cols
	maxY, maxX := -1, -1
	found := false
	for y := 0; y < fb.Geometry.Rows; y++ {
		for x := 0; x < fb.Geometry.Cols; x++ {
			if fb.Kind[fb.CellIndex(y, x)] == cellgrid.Glyph {
				continue
			}
			found = true
			if y < minY {
				minY = y
			}
			if x < minX {
				minX = x
			}
			if y > maxY {
				maxY = y
			}
			if x > maxX {
				maxX = x
			}
		}
	}
	if !found {
		return pixelRect{}, false
	}
	return pixelRect{y: minY, x: minX, h: maxY - minY + 1, w: maxX - minX + 1}, true
}

func rectContains(r pixelRect, y, x int) bool {
	return y >= r.y && y < r.y+r.h && x >= r.x && x < r.x+r.w
}

func kindsDiffer(fb *cellgrid.FrameBuffer) bool {
	for i := range fb.Kind {
		if fb.Kind[i] != fb.PrevKind[i] {
			return true
		}
	}
	return false
}

func graphicsRegionDirty(fb *cellgrid.FrameBuffer, rect pixelRect) bool {
	cw, ch := fb.Geometry.CellPixelW, fb.Geometry.CellPixelH
	for y := rect.y; y < rect.y+rect.h; y++ {
		for x := rect.x; x < rect.x+rect.w; x++ {
			idx := fb.CellIndex(y, x)
			kind := fb.Kind[idx]
			if kind == cellgrid.Glyph {
				continue
			}
			if !cellEqualExcludingBG(fb.Cells[idx], fb.PrevCells[idx], kind == cellgrid.SeeThroughSixel) {
				return true
			}
			for py := 0; py < ch; py++ {
				base := cellPixelIndex(fb, y, x, py)
				for px := 0; px < cw; px++ {
					if fb.Pixels[base+px] != fb.PrevPixels[base+px] {
						return true
					}
				}
			}
		}
	}
	return false
}

func cellPixelIndex(fb *cellgrid.FrameBuffer, y, x, py int) int {
	row := y*fb.Geometry.CellPixelH + py
	return fb.PixelIndex(row, x*fb.Geometry.CellPixelW)
}

func cellEqualExcludingBG(a, b cellgrid.Cell, ignoreBG bool) bool {
	if ignoreBG {
		a.BG, b.BG = cellgrid.RGB{}, cellgrid.RGB{}
	}
	return a == b
}

// truncateToSixelRows rounds the bounding rect's height down to a multiple
// of six if it reaches the last row (so the sixel image never forces a
// terminal scroll), reclassifying any cell it carves off as MIXED so its
// glyph gets re-emitted instead of being silently left stale.
func truncateToSixelRows(fb *cellgrid.FrameBuffer, rect pixelRect) pixelRect {
	if rect.y+rect.h != fb.Geometry.Rows {
		return rect
	}
	truncated := rect.h - rect.h%6
	if truncated == rect.h {
		return rect
	}
	for y := rect.y + truncated; y < rect.y+rect.h; y++ {
		for x := rect.x; x < rect.x+rect.w; x++ {
			idx := fb.CellIndex(y, x)
			if fb.Kind[idx] != cellgrid.Glyph {
				fb.Kind[idx] = cellgrid.Mixed
			}
		}
	}
	rect.h = truncated
	return rect
}

func (e *Emitter) emitSixelBlock(fb *cellgrid.FrameBuffer, out *outbuf.Buffer, rect pixelRect) ([]palette.Entry, error) {
	cw, ch := fb.Geometry.CellPixelW, fb.Geometry.CellPixelH
	pw, ph := rect.w*cw, rect.h*ch
	pixels := make([]cellgrid.RGBA, 0, pw*ph)
	hasTransparent := false
	for py := 0; py < ph; py++ {
		row := rect.y*ch + py
		base := fb.PixelIndex(row, rect.x*cw)
		for px := 0; px < pw; px++ {
			p := fb.Pixels[base+px]
			if p.A == 0 {
				hasTransparent = true
			}
			pixels = append(pixels, p)
		}
	}
	res := palette.Build(pixels, palette.MaxColors)
	img := sixel.Image{
		Width: pw, Height: ph,
		Index: res.Index, Palette: res.Entries,
		HasTransparent: hasTransparent,
	}
	if err := sixel.Encode(out, img, fb.Geometry.AspectH, fb.Geometry.AspectW); err != nil {
		return nil, err
	}
	return res.Entries, nil
}

func reconcileSeeThrough(fb *cellgrid.FrameBuffer, idx int, palette []palette.Entry) {
	if len(palette) == 0 {
		return
	}
	cell := fb.Cells[idx]
	r99, g99, b99 := scale255to99(cell.BG.R), scale255to99(cell.BG.G), scale255to99(cell.BG.B)
	best, bestDist := 0, -1
	for i, e := range palette {
		dr, dg, db := int(e.R)-r99, int(e.G)-g99, int(e.B)-b99
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist, best = d, i
		}
	}
	e := palette[best]
	cell.BG = cellgrid.RGB{R: scale99to255(e.R), G: scale99to255(e.G), B: scale99to255(e.B)}
	fb.Cells[idx] = cell
}

func scale255to99(v uint8) int {
	n := (int(v)*99 + 127) / 255
	if n > 99 {
		n = 99
	}
	return n
}

func scale99to255(v uint8) uint8 {
	n := (int(v)*255 + 49) / 99
	if n > 255 {
		n = 255
	}
	return uint8(n)
}

func (e *Emitter) moveCursor(out *outbuf.Buffer, y, x int) error {
	row, col := y+1, x+1
	if !e.haveCursor {
		if err := escseq.WriteCUP(out, row, col); err != nil {
			return err
		}
	} else if row == e.cursorY {
		if err := escseq.WriteCHA(out, col); err != nil {
			return err
		}
	} else {
		if err := escseq.WriteCUP(out, row, col); err != nil {
			return err
		}
	}
	e.haveCursor = true
	e.cursorY, e.cursorX = row, col
	return nil
}

func (e *Emitter) emitGlyph(fb *cellgrid.FrameBuffer, out *outbuf.Buffer, y, x int) error {
	idx := fb.CellIndex(y, x)
	cell := fb.Cells[idx]
	if !e.haveCursor || e.cursorY != y+1 || e.cursorX != x+1 {
		if err := e.moveCursor(out, y, x); err != nil {
			return err
		}
	}
	if e.haveStyle {
		if _, err := escseq.WriteSGRDelta(out, e.lastStyle, cell); err != nil {
			return err
		}
	} else {
		if _, err := escseq.WriteSGRDelta(out, cellgrid.Cell{}, cell); err != nil {
			return err
		}
	}
	e.haveStyle = true
	e.lastStyle = cell

	text := glyphText(cell, e.pool)
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}
	w := int(fb.Widths[idx])
	if w < 1 {
		w = 1
	}
	e.cursorX += w
	return nil
}

func glyphText(c cellgrid.Cell, pool *egc.Pool) string {
	if !c.IsEGC() {
		return string(rune(c.Ord))
	}
	if pool == nil {
		return fmt.Sprintf("%c", rune(' '))
	}
	return pool.Lookup(c.Ord)
}
