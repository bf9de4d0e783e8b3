package compositor

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"termcore/cellgrid"
	"termcore/egc"
)

// NormalizeWidths recomputes fb.Widths from fb.Cells and replaces any wide
// cell that would overflow its row with a space. The cells a wide cell
// covers are given width 0 whatever they hold; no collision with another
// glyph is detected, and zero-width cells are counted as width 1 without
// being changed to spaces. It must run after every element has composited
// and before the differential emitter diffs the frame.
func NormalizeWidths(fb *cellgrid.FrameBuffer, pool *egc.Pool) {
	cols := fb.Geometry.Cols
	for y := 0; y < fb.Geometry.Rows; y++ {
		x := 0
		for x < cols {
			idx := fb.CellIndex(y, x)
			w := cellWidth(fb.Cells[idx], pool)
			if w < 1 {
				w = 1
			}
			if x+w > cols {
				collapseToSpace(fb, idx)
				w = 1
			}
			fb.Widths[idx] = int32(w)
			for c := 1; c < w; c++ {
				contIdx := fb.CellIndex(y, x+c)
				fb.Widths[contIdx] = 0
			}
			x += w
		}
	}
}

func collapseToSpace(fb *cellgrid.FrameBuffer, idx int) {
	cell := fb.Cells[idx]
	cell.Ord = ' '
	fb.Cells[idx] = cell
}

func cellWidth(c cellgrid.Cell, pool *egc.Pool) int {
	if !c.IsEGC() {
		return runewidth.RuneWidth(rune(c.Ord))
	}
	if pool == nil {
		return 1
	}
	cluster := pool.Lookup(c.Ord)
	if cluster == "" {
		return 1
	}
	return uniseg.StringWidth(cluster)
}
