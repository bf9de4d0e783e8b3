package compositor

import "termcore/cellgrid"

// RenderPane fills p.Region with p.BG. Opaque panes reset every cell to a
// blank glyph over bg; transparent panes blend bg into whatever is already
// there, treating glyph cells and overlay pixels separately so a pane can sit
// under or over a sixel layer without destroying it.
func RenderPane(fb *cellgrid.FrameBuffer, p Pane) error {
	rect, ok := p.Region.BoundingRect()
	if !ok {
		return nil
	}
	if err := checkBounds(fb, p.AbsY+rect.Y, p.AbsX+rect.X, rect.H, rect.W); err != nil {
		return err
	}

	if !p.Transparent {
		for _, r := range p.Region.Rects() {
			for dy := 0; dy < r.H; dy++ {
				y := p.AbsY + r.Y + dy
				for dx := 0; dx < r.W; dx++ {
					x := p.AbsX + r.X + dx
					idx := fb.CellIndex(y, x)
					fb.Cells[idx] = cellgrid.Cell{Ord: ' ', BG: p.BG}
					fb.Kind[idx] = cellgrid.Glyph
					clearCellPixels(fb, y, x)
				}
			}
		}
		return nil
	}

	alpha := clampAlpha(p.Alpha)
	if alpha == 0 {
		return nil
	}
	for _, r := range p.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			y := p.AbsY + r.Y + dy
			for dx := 0; dx < r.W; dx++ {
				x := p.AbsX + r.X + dx
				idx := fb.CellIndex(y, x)
				kind := fb.Kind[idx]
				if kind != cellgrid.Sixel {
					c := fb.Cells[idx]
					c.FG = c.FG.Lerp(p.BG, alpha)
					c.BG = c.BG.Lerp(p.BG, alpha)
					fb.Cells[idx] = c
				}
				if kind != cellgrid.Glyph {
					blendCellPixels(fb, y, x, p.BG, alpha)
				}
			}
		}
	}
	return nil
}

func clearCellPixels(fb *cellgrid.FrameBuffer, y, x int) {
	g := fb.Geometry
	for py := 0; py < g.CellPixelH; py++ {
		row := y*g.CellPixelH + py
		base := fb.PixelIndex(row, x*g.CellPixelW)
		for px := 0; px < g.CellPixelW; px++ {
			fb.Pixels[base+px] = cellgrid.RGBA{}
		}
	}
}

func blendCellPixels(fb *cellgrid.FrameBuffer, y, x int, bg cellgrid.RGB, alpha float64) {
	g := fb.Geometry
	for py := 0; py < g.CellPixelH; py++ {
		row := y*g.CellPixelH + py
		base := fb.PixelIndex(row, x*g.CellPixelW)
		for px := 0; px < g.CellPixelW; px++ {
			p := fb.Pixels[base+px]
			if !p.Opaque() {
				continue
			}
			rgb := cellgrid.RGB{R: p.R, G: p.G, B: p.B}.Lerp(bg, alpha)
			fb.Pixels[base+px] = cellgrid.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: p.A}
		}
	}
}
