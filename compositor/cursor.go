package compositor

import "termcore/cellgrid"

// RenderCursor applies the final style-mask overlay: clear bits in Off, set
// bits in On, and optionally override fg/bg, over every cell in the region.
func RenderCursor(fb *cellgrid.FrameBuffer, c Cursor) error {
	rect, ok := c.Region.BoundingRect()
	if !ok {
		return nil
	}
	if !fb.InBounds(rect.Y, rect.X) || !fb.InBounds(rect.Y+rect.H-1, rect.X+rect.W-1) {
		return ErrGeometryMismatch
	}
	for _, r := range c.Region.Rects() {
		for dy := 0; dy < r.H; dy++ {
			y := r.Y + dy
			for dx := 0; dx < r.W; dx++ {
				x := r.X + dx
				idx := fb.CellIndex(y, x)
				cell := fb.Cells[idx]
				cell.Style = (cell.Style &^ c.Off) | c.On
				if c.FG != nil {
					cell.FG = *c.FG
				}
				if c.BG != nil {
					cell.BG = *c.BG
				}
				fb.Cells[idx] = cell
			}
		}
	}
	return nil
}
