package compositor

import "termcore/cellgrid"

// RenderCanvas composites a positioned source cell grid into the frame
// buffer. Opaque canvases copy the source cell verbatim; transparent
// canvases treat whitespace source cells as a pane-like background blend and
// non-whitespace source cells as a glyph replacement that reconciles
// whatever graphics were previously under the cell into its new background.
func RenderCanvas(fb *cellgrid.FrameBuffer, c Canvas) error {
	rect, ok := c.Region.BoundingRect()
	if !ok {
		return nil
	}
	if err := checkBounds(fb, c.AbsY+rect.Y, c.AbsX+rect.X, rect.H, rect.W); err != nil {
		return err
	}

	alpha := clampAlpha(c.Alpha)
	if c.Transparent && alpha == 0 {
		return nil
	}

	for _, r := range c.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			srcY := r.Y + dy
			y := c.AbsY + srcY
			for dx := 0; dx < r.W; dx++ {
				srcX := r.X + dx
				x := c.AbsX + srcX
				srcIdx := srcY*c.SrcW + srcX
				if srcIdx < 0 || srcIdx >= len(c.Source) {
					continue
				}
				src := c.Source[srcIdx]
				idx := fb.CellIndex(y, x)

				if !c.Transparent {
					fb.Cells[idx] = src
					fb.Kind[idx] = cellgrid.Glyph
					clearCellPixels(fb, y, x)
					continue
				}

				if isWhitespaceCell(src) {
					kind := fb.Kind[idx]
					if kind != cellgrid.Sixel {
						cell := fb.Cells[idx]
						cell.FG = cell.FG.Lerp(src.BG, alpha)
						cell.BG = cell.BG.Lerp(src.BG, alpha)
						fb.Cells[idx] = cell
					}
					if kind != cellgrid.Glyph {
						blendCellPixels(fb, y, x, src.BG, alpha)
					}
					continue
				}

				kind := fb.Kind[idx]
				cell := fb.Cells[idx]
				var baseBG cellgrid.RGB
				switch kind {
				case cellgrid.Sixel:
					baseBG = averageOpaquePixels(fb, y, x)
				case cellgrid.Mixed:
					avg, frac := averageOpaquePixelsFrac(fb, y, x)
					baseBG = cell.BG.Lerp(avg, frac)
				default:
					baseBG = cell.BG
				}
				fb.Cells[idx] = cellgrid.Cell{
					Ord:   src.Ord,
					Style: src.Style,
					FG:    src.FG,
					BG:    baseBG.Lerp(src.BG, alpha),
				}
				fb.Kind[idx] = cellgrid.Glyph
			}
		}
	}
	return nil
}
