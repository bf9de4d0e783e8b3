package compositor

import "termcore/cellgrid"

// cellPixelBase returns the flat index of the first overlay pixel in row py
// of the pixel sub-rect backing cell (y, x).
func cellPixelBase(fb *cellgrid.FrameBuffer, y, x, py int) int {
	g := fb.Geometry
	row := y*g.CellPixelH + py
	return fb.PixelIndex(row, x*g.CellPixelW)
}

// averageOpaquePixels returns the mean color of every fully-opaque sub-pixel
// in cell (y, x)'s overlay rect, or the zero color if none are opaque.
func averageOpaquePixels(fb *cellgrid.FrameBuffer, y, x int) cellgrid.RGB {
	avg, _ := averageOpaquePixelsFrac(fb, y, x)
	return avg
}

// averageOpaquePixelsFrac is averageOpaquePixels plus the fraction of
// sub-pixels in the cell that were fully opaque.
func averageOpaquePixelsFrac(fb *cellgrid.FrameBuffer, y, x int) (cellgrid.RGB, float64) {
	g := fb.Geometry
	var sumR, sumG, sumB, n, total int
	for py := 0; py < g.CellPixelH; py++ {
		base := cellPixelBase(fb, y, x, py)
		for px := 0; px < g.CellPixelW; px++ {
			total++
			p := fb.Pixels[base+px]
			if !p.Opaque() {
				continue
			}
			sumR += int(p.R)
			sumG += int(p.G)
			sumB += int(p.B)
			n++
		}
	}
	if n == 0 {
		return cellgrid.RGB{}, 0
	}
	return cellgrid.RGB{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}, float64(n) / float64(total)
}

// isWhitespaceCell reports whether c is the blank glyph or a blank braille
// cell, the two "see-through" glyphs a canvas treats as background-only.
func isWhitespaceCell(c cellgrid.Cell) bool {
	return c.Ord == ' ' || c.Ord == 0x2800
}
