package compositor

import (
	"math"

	"github.com/mattn/go-runewidth"

	"termcore/cellgrid"
)

// RenderTextField places single-cell text particles at their fractional
// positions, clipping any particle whose wide glyph would cross the
// region's boundary.
func RenderTextField(fb *cellgrid.FrameBuffer, t TextField) error {
	rect, ok := t.Region.BoundingRect()
	if !ok {
		return nil
	}
	if err := checkBounds(fb, t.AbsY+rect.Y, t.AbsX+rect.X, rect.H, rect.W); err != nil {
		return err
	}
	alpha := clampAlpha(t.Alpha)
	if t.Transparent && alpha == 0 {
		return nil
	}

	n := len(t.Positions)
	if len(t.Particles) < n {
		n = len(t.Particles)
	}
	for i := 0; i < n; i++ {
		localY := int(math.Floor(t.Positions[i].Y))
		localX := int(math.Floor(t.Positions[i].X))
		if !t.Region.Contains(localY, localX) {
			continue
		}
		particle := t.Particles[i]
		w := particleWidth(particle)
		if w == 2 && !t.Region.Contains(localY, localX+1) {
			continue
		}
		y, x := t.AbsY+localY, t.AbsX+localX
		if !fb.InBounds(y, x) {
			continue
		}
		idx := fb.CellIndex(y, x)

		if !t.Transparent {
			fb.Cells[idx] = particle
			fb.Kind[idx] = cellgrid.Glyph
			clearCellPixels(fb, y, x)
			continue
		}

		if isWhitespaceCell(particle) {
			kind := fb.Kind[idx]
			if kind != cellgrid.Sixel {
				cell := fb.Cells[idx]
				cell.FG = cell.FG.Lerp(particle.BG, alpha)
				cell.BG = cell.BG.Lerp(particle.BG, alpha)
				fb.Cells[idx] = cell
			}
			if kind != cellgrid.Glyph {
				blendCellPixels(fb, y, x, particle.BG, alpha)
			}
			continue
		}

		cell := fb.Cells[idx]
		cell.Ord = particle.Ord
		cell.Style = particle.Style
		cell.FG = particle.FG
		cell.BG = cell.BG.Lerp(particle.BG, alpha)
		fb.Cells[idx] = cell
		fb.Kind[idx] = cellgrid.Glyph
	}
	return nil
}

// particleWidth reports the column width of a text-field particle. EGC
// particles are assumed single-width: the combining-mark and emoji clusters
// this pool exists for are overwhelmingly narrow, and the field element has
// no pool reference to resolve the cluster for an exact lookup.
func particleWidth(c cellgrid.Cell) int {
	if c.IsEGC() {
		return 1
	}
	return runewidth.RuneWidth(rune(c.Ord))
}

type brailleAccum struct {
	bits             uint32
	sumR, sumG, sumB int
	n                int
}

// RenderGraphicsField places RGBA particles at their fractional positions.
// Full-blit and sixel/half-blit fields place one particle per cell directly;
// braille-blit fields accumulate every particle landing in a cell's 4×2 dot
// grid (by the fractional part of its position) before committing one glyph
// per touched cell.
func RenderGraphicsField(fb *cellgrid.FrameBuffer, gf GraphicsField) error {
	rect, ok := gf.Region.BoundingRect()
	if !ok {
		return nil
	}
	if err := checkBounds(fb, gf.AbsY+rect.Y, gf.AbsX+rect.X, rect.H, rect.W); err != nil {
		return err
	}
	alpha := clampAlpha(gf.Alpha)
	if gf.Transparent && alpha == 0 {
		return nil
	}

	n := len(gf.Positions)
	if len(gf.Particles) < n {
		n = len(gf.Particles)
	}

	if gf.Blit != Braille {
		for i := 0; i < n; i++ {
			localY := int(math.Floor(gf.Positions[i].Y))
			localX := int(math.Floor(gf.Positions[i].X))
			if !gf.Region.Contains(localY, localX) {
				continue
			}
			y, x := gf.AbsY+localY, gf.AbsX+localX
			if !fb.InBounds(y, x) {
				continue
			}
			texel := gf.Particles[i]
			idx := fb.CellIndex(y, x)
			if !gf.Transparent {
				fb.Cells[idx] = cellgrid.Cell{Ord: ' ', BG: cellgrid.RGB{R: texel.R, G: texel.G, B: texel.B}}
				fb.Kind[idx] = cellgrid.Glyph
				clearCellPixels(fb, y, x)
				continue
			}
			cell := fb.Cells[idx]
			blended := cellgrid.BlendOver(texel, cell.BG)
			cell.FG = cell.FG.Lerp(blended, alpha)
			cell.BG = cell.BG.Lerp(blended, alpha)
			fb.Cells[idx] = cell
		}
		return nil
	}

	accum := make(map[[2]int]*brailleAccum)
	for i := 0; i < n; i++ {
		py, px := gf.Positions[i].Y, gf.Positions[i].X
		localY := int(math.Floor(py))
		localX := int(math.Floor(px))
		if !gf.Region.Contains(localY, localX) {
			continue
		}
		p := gf.Particles[i]
		if p.A == 0 {
			continue
		}
		fracY := py - math.Floor(py)
		fracX := px - math.Floor(px)
		subY := int(fracY * 4)
		if subY > 3 {
			subY = 3
		}
		subX := int(fracX * 2)
		if subX > 1 {
			subX = 1
		}
		key := [2]int{localY, localX}
		a := accum[key]
		if a == nil {
			a = &brailleAccum{}
			accum[key] = a
		}
		a.bits |= brailleBitOrder[subY*2+subX]
		a.sumR += int(p.R)
		a.sumG += int(p.G)
		a.sumB += int(p.B)
		a.n++
	}

	for key, a := range accum {
		y, x := gf.AbsY+key[0], gf.AbsX+key[1]
		if !fb.InBounds(y, x) {
			continue
		}
		var fg cellgrid.RGB
		if a.n > 0 {
			fg = cellgrid.RGB{R: uint8(a.sumR / a.n), G: uint8(a.sumG / a.n), B: uint8(a.sumB / a.n)}
		}
		idx := fb.CellIndex(y, x)
		if !gf.Transparent {
			fb.Cells[idx] = cellgrid.Cell{Ord: 0x2800 | a.bits, FG: fg}
			fb.Kind[idx] = cellgrid.Glyph
			clearCellPixels(fb, y, x)
			continue
		}
		cell := fb.Cells[idx]
		cell.Ord = 0x2800 | a.bits
		cell.FG = cell.FG.Lerp(fg, alpha)
		fb.Cells[idx] = cell
	}
	return nil
}
