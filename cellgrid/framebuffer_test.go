package cellgrid

import "testing"

func TestNewZeroFilled(t *testing.T) {
	fb := New(Geometry{Cols: 4, Rows: 3, CellPixelW: 2, CellPixelH: 4})
	for i, c := range fb.Cells {
		if c.Ord != 0 {
			t.Fatalf("cell %d not zero: %+v", i, c)
		}
	}
	if len(fb.Pixels) != 4*2*3*4 {
		t.Fatalf("pixel grid size mismatch: got %d", len(fb.Pixels))
	}
}

func TestResizeReportsChange(t *testing.T) {
	fb := New(Geometry{Cols: 4, Rows: 3, CellPixelW: 2, CellPixelH: 4})
	if resized := fb.Resize(Geometry{Cols: 4, Rows: 3, CellPixelW: 2, CellPixelH: 4}); resized {
		t.Fatalf("expected no resize for identical geometry")
	}
	if resized := fb.Resize(Geometry{Cols: 5, Rows: 3, CellPixelW: 2, CellPixelH: 4}); !resized {
		t.Fatalf("expected resize to be reported")
	}
	if len(fb.Cells) != 15 {
		t.Fatalf("expected reallocated cell grid, got len %d", len(fb.Cells))
	}
}

func TestCellIndexRowMajor(t *testing.T) {
	fb := New(Geometry{Cols: 10, Rows: 5, CellPixelW: 1, CellPixelH: 1})
	if idx := fb.CellIndex(2, 3); idx != 23 {
		t.Fatalf("CellIndex(2,3) = %d, want 23", idx)
	}
}

func TestSwapPreservesCurrentAsPrevious(t *testing.T) {
	fb := New(Geometry{Cols: 2, Rows: 1, CellPixelW: 1, CellPixelH: 1})
	fb.Cells[0] = Cell{Ord: 'x'}
	fb.Swap()
	if fb.PrevCells[0].Ord != 'x' {
		t.Fatalf("expected previous cell to carry forward")
	}
	if fb.Cells[0].Ord != 'x' {
		t.Fatalf("expected current cell to start as a copy of previous")
	}
}
