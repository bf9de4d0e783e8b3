package compositor

import "termcore/cellgrid"

// varianceThreshold is the per-channel variance below which a transparent
// sixel sub-rect is treated as flat enough to see through to a reconciled
// background color instead of being composited pixel-for-pixel.
const varianceThreshold = 100.0

// brailleBitOrder maps a 4-row×2-column sub-pixel index (row-major, column
// fastest) to its braille dot bit.
var brailleBitOrder = [8]uint32{1, 8, 2, 16, 4, 32, 64, 128}

// RenderGraphics composites an RGBA texture into the frame buffer through
// one of the four blitters.
func RenderGraphics(fb *cellgrid.FrameBuffer, g Graphics) error {
	rect, ok := g.Region.BoundingRect()
	if !ok {
		return nil
	}
	if err := checkBounds(fb, g.AbsY+rect.Y, g.AbsX+rect.X, rect.H, rect.W); err != nil {
		return err
	}
	alpha := clampAlpha(g.Alpha)
	if g.Transparent && alpha == 0 {
		return nil
	}
	if len(g.Texture) == 0 {
		return nil
	}

	switch g.Blit {
	case Full:
		return renderFullBlit(fb, g, alpha)
	case Half:
		return renderHalfBlit(fb, g, alpha)
	case Braille:
		return renderBrailleBlit(fb, g, alpha)
	case SixelBlitter:
		return renderSixelBlit(fb, g, alpha)
	}
	return nil
}

func renderFullBlit(fb *cellgrid.FrameBuffer, g Graphics, alpha float64) error {
	for _, r := range g.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			srcY := r.Y + dy
			y := g.AbsY + srcY
			for dx := 0; dx < r.W; dx++ {
				srcX := r.X + dx
				x := g.AbsX + srcX
				texIdx := srcY*g.TexW + srcX
				if texIdx < 0 || texIdx >= len(g.Texture) {
					continue
				}
				texel := g.Texture[texIdx]
				idx := fb.CellIndex(y, x)
				if !g.Transparent {
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
		}
	}
	return nil
}

func renderHalfBlit(fb *cellgrid.FrameBuffer, g Graphics, alpha float64) error {
	for _, r := range g.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			srcY := r.Y + dy
			y := g.AbsY + srcY
			for dx := 0; dx < r.W; dx++ {
				srcX := r.X + dx
				x := g.AbsX + srcX
				upperIdx := (srcY*2+0)*g.TexW + srcX
				lowerIdx := (srcY*2+1)*g.TexW + srcX
				if upperIdx < 0 || lowerIdx >= len(g.Texture) {
					continue
				}
				upper := g.Texture[upperIdx]
				lower := g.Texture[lowerIdx]
				idx := fb.CellIndex(y, x)

				if !g.Transparent {
					fb.Kind[idx] = cellgrid.Glyph
					clearCellPixels(fb, y, x)
					if upper == lower {
						fb.Cells[idx] = cellgrid.Cell{Ord: ' ', BG: cellgrid.RGB{R: upper.R, G: upper.G, B: upper.B}}
					} else {
						fb.Cells[idx] = cellgrid.Cell{
							Ord: 0x2580,
							FG:  cellgrid.RGB{R: upper.R, G: upper.G, B: upper.B},
							BG:  cellgrid.RGB{R: lower.R, G: lower.G, B: lower.B},
						}
					}
					continue
				}

				cell := fb.Cells[idx]
				upperBlend := cellgrid.BlendOver(upper, cell.FG)
				lowerBlend := cellgrid.BlendOver(lower, cell.BG)
				if upperBlend == lowerBlend {
					cell.Ord = ' '
				} else {
					cell.Ord = 0x2580
				}
				cell.FG = cell.FG.Lerp(upperBlend, alpha)
				cell.BG = cell.BG.Lerp(lowerBlend, alpha)
				fb.Cells[idx] = cell
			}
		}
	}
	return nil
}

func renderBrailleBlit(fb *cellgrid.FrameBuffer, g Graphics, alpha float64) error {
	for _, r := range g.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			srcY := r.Y + dy
			y := g.AbsY + srcY
			for dx := 0; dx < r.W; dx++ {
				srcX := r.X + dx
				x := g.AbsX + srcX

				var bits uint32
				var sumR, sumG, sumB, n int
				ok := true
				for py := 0; py < 4 && ok; py++ {
					for px := 0; px < 2; px++ {
						texRow := srcY*4 + py
						texCol := srcX*2 + px
						texIdx := texRow*g.TexW + texCol
						if texIdx < 0 || texIdx >= len(g.Texture) {
							ok = false
							break
						}
						p := g.Texture[texIdx]
						if p.A != 0 {
							bits |= brailleBitOrder[py*2+px]
							sumR += int(p.R)
							sumG += int(p.G)
							sumB += int(p.B)
							n++
						}
					}
				}
				if !ok {
					continue
				}

				var fg cellgrid.RGB
				if n > 0 {
					fg = cellgrid.RGB{R: uint8(sumR / n), G: uint8(sumG / n), B: uint8(sumB / n)}
				}
				idx := fb.CellIndex(y, x)

				if !g.Transparent {
					fb.Cells[idx] = cellgrid.Cell{Ord: 0x2800 | bits, FG: fg}
					fb.Kind[idx] = cellgrid.Glyph
					clearCellPixels(fb, y, x)
					continue
				}

				cell := fb.Cells[idx]
				cell.Ord = 0x2800 | bits
				cell.FG = cell.FG.Lerp(fg, alpha)
				fb.Cells[idx] = cell
			}
		}
	}
	return nil
}

func renderSixelBlit(fb *cellgrid.FrameBuffer, g Graphics, alpha float64) error {
	cw, ch := fb.Geometry.CellPixelW, fb.Geometry.CellPixelH
	for _, r := range g.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			srcY := r.Y + dy
			y := g.AbsY + srcY
			for dx := 0; dx < r.W; dx++ {
				srcX := r.X + dx
				x := g.AbsX + srcX
				idx := fb.CellIndex(y, x)

				if !g.Transparent {
					copyCellTexels(fb, g, y, x, srcY, srcX, cw, ch)
					fb.Kind[idx] = cellgrid.Sixel
					continue
				}

				renderTransparentSixelCell(fb, g, y, x, srcY, srcX, cw, ch, alpha)
			}
		}
	}
	return nil
}

func copyCellTexels(fb *cellgrid.FrameBuffer, g Graphics, y, x, srcY, srcX, cw, ch int) {
	for py := 0; py < ch; py++ {
		texRow := srcY*ch + py
		base := cellPixelBase(fb, y, x, py)
		texBase := texRow*g.TexW + srcX*cw
		for px := 0; px < cw; px++ {
			texIdx := texBase + px
			if texIdx < 0 || texIdx >= len(g.Texture) {
				continue
			}
			fb.Pixels[base+px] = g.Texture[texIdx]
		}
	}
}

// renderTransparentSixelCell implements the transparent-sixel compositing
// decision: a block glyph already occupying the cell gets recolored via its
// foreground predicate; otherwise a low-variance sub-rect is reconciled as
// SEE_THROUGH_SIXEL, and a high-variance one is composited pixel-for-pixel.
func renderTransparentSixelCell(fb *cellgrid.FrameBuffer, g Graphics, y, x, srcY, srcX, cw, ch int, alpha float64) {
	idx := fb.CellIndex(y, x)
	cell := fb.Cells[idx]

	if pred, ok := blockPredicates[rune(cell.Ord)]; ok {
		var fgR, fgG, fgB, fgN, bgR, bgG, bgB, bgN int
		for py := 0; py < ch; py++ {
			texRow := srcY*ch + py
			texBase := texRow*g.TexW + srcX*cw
			for px := 0; px < cw; px++ {
				texIdx := texBase + px
				if texIdx < 0 || texIdx >= len(g.Texture) {
					continue
				}
				p := g.Texture[texIdx]
				if p.A == 0 {
					continue
				}
				if pred(px, py, cw, ch) {
					fgR += int(p.R)
					fgG += int(p.G)
					fgB += int(p.B)
					fgN++
				} else {
					bgR += int(p.R)
					bgG += int(p.G)
					bgB += int(p.B)
					bgN++
				}
			}
		}
		if fgN > 0 {
			cell.FG = cell.FG.Lerp(cellgrid.RGB{R: uint8(fgR / fgN), G: uint8(fgG / fgN), B: uint8(fgB / fgN)}, alpha)
		}
		if bgN > 0 {
			cell.BG = cell.BG.Lerp(cellgrid.RGB{R: uint8(bgR / bgN), G: uint8(bgG / bgN), B: uint8(bgB / bgN)}, alpha)
		}
		fb.Cells[idx] = cell
		return
	}

	samples := make([]cellgrid.RGBA, 0, cw*ch)
	for py := 0; py < ch; py++ {
		texRow := srcY*ch + py
		texBase := texRow*g.TexW + srcX*cw
		for px := 0; px < cw; px++ {
			texIdx := texBase + px
			if texIdx < 0 || texIdx >= len(g.Texture) {
				continue
			}
			samples = append(samples, g.Texture[texIdx])
		}
	}
	if len(samples) == 0 {
		return
	}
	mean, varR, varG, varB := rgbaVariance(samples)
	var sumA, varA float64
	for _, s := range samples {
		sumA += float64(s.A)
	}
	meanA := sumA / float64(len(samples))
	for _, s := range samples {
		varA += (float64(s.A) - meanA) * (float64(s.A) - meanA)
	}
	varA /= float64(len(samples))
	if varR < varianceThreshold && varG < varianceThreshold && varB < varianceThreshold && varA < varianceThreshold {
		cell.BG = cell.BG.Lerp(mean, alpha)
		fb.Cells[idx] = cell
		fb.Kind[idx] = cellgrid.SeeThroughSixel
		return
	}

	for py := 0; py < ch; py++ {
		texRow := srcY*ch + py
		base := cellPixelBase(fb, y, x, py)
		texBase := texRow*g.TexW + srcX*cw
		for px := 0; px < cw; px++ {
			texIdx := texBase + px
			if texIdx < 0 || texIdx >= len(g.Texture) {
				continue
			}
			existing := fb.Pixels[base+px]
			texel := g.Texture[texIdx]
			scaled := texel
			scaled.A = uint8(float64(scaled.A) * alpha)
			fb.Pixels[base+px] = blendRGBA(scaled, existing)
		}
	}
	fb.Kind[idx] = cellgrid.Mixed
}

func rgbaVariance(samples []cellgrid.RGBA) (mean cellgrid.RGB, varR, varG, varB float64) {
	var sumR, sumG, sumB float64
	n := float64(len(samples))
	for _, s := range samples {
		sumR += float64(s.R)
		sumG += float64(s.G)
		sumB += float64(s.B)
	}
	meanR, meanG, meanB := sumR/n, sumG/n, sumB/n
	for _, s := range samples {
		varR += (float64(s.R) - meanR) * (float64(s.R) - meanR)
		varG += (float64(s.G) - meanG) * (float64(s.G) - meanG)
		varB += (float64(s.B) - meanB) * (float64(s.B) - meanB)
	}
	varR /= n
	varG /= n
	varB /= n
	mean = cellgrid.RGB{R: uint8(meanR), G: uint8(meanG), B: uint8(meanB)}
	return
}

func blendRGBA(top, bottom cellgrid.RGBA) cellgrid.RGBA {
	if top.A == 0 {
		return bottom
	}
	if top.A == 255 {
		return top
	}
	a := float64(top.A) / 255
	inv := 1 - a
	return cellgrid.RGBA{
		R: uint8(float64(top.R)*a + float64(bottom.R)*inv),
		G: uint8(float64(top.G)*a + float64(bottom.G)*inv),
		B: uint8(float64(top.B)*a + float64(bottom.B)*inv),
		A: uint8(float64(top.A) + float64(bottom.A)*inv),
	}
}
