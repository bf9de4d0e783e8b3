package compositor

import (
	"testing"

	"termcore/cellgrid"
	"termcore/region"
)

func testBuffer(rows, cols int) *cellgrid.FrameBuffer {
	return cellgrid.New(cellgrid.Geometry{
		Cols: cols, Rows: rows,
		CellPixelW: 2, CellPixelH: 4,
		AspectW: 1, AspectH: 1,
	})
}

func TestOpaqueFullGraphicsUniformFill(t *testing.T) {
	fb := testBuffer(4, 4)
	tex := make([]cellgrid.RGBA, 2*2)
	for i := range tex {
		tex[i] = cellgrid.RGBA{R: 10, G: 20, B: 30, A: 255}
	}
	g := Graphics{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 2, W: 2})},
		Texture: tex, TexW: 2, Blit: Full,
	}
	if err := RenderGraphics(fb, g); err != nil {
		t.Fatalf("RenderGraphics: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := fb.Cells[fb.CellIndex(y, x)]
			if c.Ord != ' ' || c.Style != 0 || c.BG != (cellgrid.RGB{R: 10, G: 20, B: 30}) {
				t.Fatalf("cell (%d,%d) = %+v", y, x, c)
			}
		}
	}
	untouched := fb.Cells[fb.CellIndex(3, 3)]
	if untouched != (cellgrid.Cell{}) {
		t.Fatalf("expected untouched cell to remain zero, got %+v", untouched)
	}
}

func TestOpaqueHalfGraphicsEqualTexelsYieldsSpace(t *testing.T) {
	fb := testBuffer(2, 2)
	tex := []cellgrid.RGBA{
		{R: 1, G: 2, B: 3, A: 255},
		{R: 1, G: 2, B: 3, A: 255},
	}
	g := Graphics{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 1, W: 1})},
		Texture: tex, TexW: 1, Blit: Half,
	}
	if err := RenderGraphics(fb, g); err != nil {
		t.Fatalf("RenderGraphics: %v", err)
	}
	c := fb.Cells[fb.CellIndex(0, 0)]
	if c.Ord != ' ' {
		t.Fatalf("expected space for equal upper/lower texels, got ord %x", c.Ord)
	}
}

func TestOpaqueHalfGraphicsDistinctTexels(t *testing.T) {
	fb := testBuffer(2, 2)
	tex := []cellgrid.RGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
	}
	g := Graphics{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 1, W: 1})},
		Texture: tex, TexW: 1, Blit: Half,
	}
	if err := RenderGraphics(fb, g); err != nil {
		t.Fatalf("RenderGraphics: %v", err)
	}
	c := fb.Cells[fb.CellIndex(0, 0)]
	if c.Ord != 0x2580 || c.FG != (cellgrid.RGB{R: 255, G: 0, B: 0}) || c.BG != (cellgrid.RGB{R: 0, G: 0, B: 255}) {
		t.Fatalf("unexpected half-block cell: %+v", c)
	}
}

func TestBrailleAllOpaqueProducesFullGlyph(t *testing.T) {
	fb := testBuffer(2, 2)
	tex := make([]cellgrid.RGBA, 4*2)
	for i := range tex {
		tex[i] = cellgrid.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	g := Graphics{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 1, W: 1})},
		Texture: tex, TexW: 2, Blit: Braille,
	}
	if err := RenderGraphics(fb, g); err != nil {
		t.Fatalf("RenderGraphics: %v", err)
	}
	c := fb.Cells[fb.CellIndex(0, 0)]
	if c.Ord != 0x28FF {
		t.Fatalf("expected U+28FF, got %x", c.Ord)
	}
}

func TestBrailleSpecExamplePattern(t *testing.T) {
	fb := testBuffer(1, 1)
	alphas := []uint8{255, 0, 0, 255, 255, 0, 0, 255}
	tex := make([]cellgrid.RGBA, 8)
	for i, a := range alphas {
		tex[i] = cellgrid.RGBA{A: a}
	}
	g := Graphics{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 1, W: 1})},
		Texture: tex, TexW: 2, Blit: Braille,
	}
	if err := RenderGraphics(fb, g); err != nil {
		t.Fatalf("RenderGraphics: %v", err)
	}
	c := fb.Cells[fb.CellIndex(0, 0)]
	if c.Ord != 0x2895 {
		t.Fatalf("expected ord 0x2895, got %x", c.Ord)
	}
}

func TestTransparentPaneZeroAlphaIsNoop(t *testing.T) {
	fb := testBuffer(2, 2)
	before := make([]cellgrid.Cell, len(fb.Cells))
	copy(before, fb.Cells)
	p := Pane{
		Header: Header{
			Region:      region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 2, W: 2}),
			Transparent: true,
			Alpha:       0,
		},
		BG: cellgrid.RGB{R: 9, G: 9, B: 9},
	}
	if err := RenderPane(fb, p); err != nil {
		t.Fatalf("RenderPane: %v", err)
	}
	for i := range fb.Cells {
		if fb.Cells[i] != before[i] {
			t.Fatalf("cell %d changed under zero-alpha transparent pane", i)
		}
	}
}

func TestOpaquePaneIdempotent(t *testing.T) {
	fb := testBuffer(4, 4)
	p := Pane{
		Header: Header{Region: region.FromRect(region.Point{Y: 1, X: 1}, region.Size{H: 2, W: 2})},
		BG:     cellgrid.RGB{R: 5, G: 6, B: 7},
	}
	if err := RenderPane(fb, p); err != nil {
		t.Fatalf("RenderPane: %v", err)
	}
	snapshot := make([]cellgrid.Cell, len(fb.Cells))
	copy(snapshot, fb.Cells)
	if err := RenderPane(fb, p); err != nil {
		t.Fatalf("RenderPane second pass: %v", err)
	}
	for i := range fb.Cells {
		if fb.Cells[i] != snapshot[i] {
			t.Fatalf("idempotence violated at cell %d", i)
		}
	}
}

func TestPaneFillOverZeroedGrid(t *testing.T) {
	fb := testBuffer(10, 10)
	p := Pane{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 2, W: 2})},
		BG:     cellgrid.RGB{R: 255, G: 0, B: 0},
	}
	if err := RenderPane(fb, p); err != nil {
		t.Fatalf("RenderPane: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := fb.Cells[fb.CellIndex(y, x)]
			if c.Ord != 0x20 || c.BG != (cellgrid.RGB{R: 255, G: 0, B: 0}) {
				t.Fatalf("target cell (%d,%d) = %+v", y, x, c)
			}
		}
	}
	other := fb.Cells[fb.CellIndex(5, 5)]
	if other.Ord != 0 {
		t.Fatalf("expected untouched cell ord 0, got %x", other.Ord)
	}
}

func TestGeometryMismatchReturnsError(t *testing.T) {
	fb := testBuffer(2, 2)
	p := Pane{
		Header: Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 5, W: 5})},
	}
	if err := RenderPane(fb, p); err != ErrGeometryMismatch {
		t.Fatalf("expected ErrGeometryMismatch, got %v", err)
	}
}

func TestCursorOverlaySetsAndClearsStyleBits(t *testing.T) {
	fb := testBuffer(2, 2)
	fb.Cells[fb.CellIndex(0, 0)].Style = cellgrid.Bold
	cur := Cursor{
		Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: 1, W: 1}),
		On:     cellgrid.Reverse,
		Off:    cellgrid.Bold,
	}
	if err := RenderCursor(fb, cur); err != nil {
		t.Fatalf("RenderCursor: %v", err)
	}
	c := fb.Cells[fb.CellIndex(0, 0)]
	if c.Style&cellgrid.Bold != 0 {
		t.Fatalf("expected Bold cleared")
	}
	if c.Style&cellgrid.Reverse == 0 {
		t.Fatalf("expected Reverse set")
	}
}
