package cellgrid

// Geometry describes how cells map onto the pixel overlay and the aspect
// ratio the terminal reports for each pixel (forwarded untouched to the
// sixel encoder).
type Geometry struct {
	Cols, Rows         int
	CellPixelW, CellPixelH int
	AspectW, AspectH   int
}

// PixelCols and PixelRows are the overlay's dimensions in pixels.
func (g Geometry) PixelCols() int { return g.Cols * g.CellPixelW }
func (g Geometry) PixelRows() int { return g.Rows * g.CellPixelH }

// FrameBuffer owns the current and previous cell/kind/pixel/width grids for
// one terminal session. It is exclusively owned by the compositor; callers
// never retain a reference to a sub-slice across a Resize.
type FrameBuffer struct {
	Geometry Geometry

	Cells, PrevCells []Cell
	Kind, PrevKind   []Kind
	Pixels, PrevPixels []RGBA
	Widths           []int32
}

// New allocates a zero-filled FrameBuffer for the given geometry.
func New(g Geometry) *FrameBuffer {
	fb := &FrameBuffer{Geometry: g}
	fb.alloc()
	return fb
}

func (fb *FrameBuffer) alloc() {
	g := fb.Geometry
	ncells := g.Cols * g.Rows
	npix := g.PixelCols() * g.PixelRows()
	fb.Cells = make([]Cell, ncells)
	fb.PrevCells = make([]Cell, ncells)
	fb.Kind = make([]Kind, ncells)
	fb.PrevKind = make([]Kind, ncells)
	fb.Pixels = make([]RGBA, npix)
	fb.PrevPixels = make([]RGBA, npix)
	fb.Widths = make([]int32, ncells)
}

// Resize replaces every buffer in place with a zero-filled allocation sized
// to the new geometry, and reports true (forcing a full repaint) whenever
// the new geometry differs from the old.
func (fb *FrameBuffer) Resize(g Geometry) (resized bool) {
	resized = g != fb.Geometry
	fb.Geometry = g
	fb.alloc()
	return resized
}

// CellIndex returns the flat index of cell (y, x).
func (fb *FrameBuffer) CellIndex(y, x int) int { return y*fb.Geometry.Cols + x }

// PixelIndex returns the flat index of overlay pixel (py, px).
func (fb *FrameBuffer) PixelIndex(py, px int) int { return py*fb.Geometry.PixelCols() + px }

// InBounds reports whether (y, x) is a valid cell position.
func (fb *FrameBuffer) InBounds(y, x int) bool {
	return y >= 0 && y < fb.Geometry.Rows && x >= 0 && x < fb.Geometry.Cols
}

// Swap promotes Cells/Kind/Pixels to Prev* after a frame has been fully
// emitted, so the next frame diffs against what was just shown.
func (fb *FrameBuffer) Swap() {
	fb.PrevCells, fb.Cells = fb.Cells, fb.PrevCells
	fb.PrevKind, fb.Kind = fb.Kind, fb.PrevKind
	fb.PrevPixels, fb.Pixels = fb.Pixels, fb.PrevPixels
	copy(fb.Cells, fb.PrevCells)
	copy(fb.Kind, fb.PrevKind)
	copy(fb.Pixels, fb.PrevPixels)
}
