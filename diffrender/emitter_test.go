package diffrender

import (
	"bytes"
	"strings"
	"testing"

	"termcore/cellgrid"
	"termcore/egc"
	"termcore/outbuf"
)

func testFB(rows, cols int) *cellgrid.FrameBuffer {
	return cellgrid.New(cellgrid.Geometry{
		Cols: cols, Rows: rows,
		CellPixelW: 2, CellPixelH: 6,
		AspectW: 1, AspectH: 1,
	})
}

func TestIdenticalBuffersProduceNoOutput(t *testing.T) {
	fb := testFB(3, 3)
	for i := range fb.Cells {
		fb.Cells[i] = cellgrid.Cell{Ord: ' '}
	}
	copy(fb.PrevCells, fb.Cells)

	e := New(egc.New())
	out := outbuf.New()
	if err := e.Emit(fb, out, false); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for identical buffers, got %q", out.Bytes())
	}
}

func TestSingleGlyphChangeEmitsOneMoveAndOneCodepoint(t *testing.T) {
	fb := testFB(3, 3)
	for i := range fb.Cells {
		fb.Cells[i] = cellgrid.Cell{Ord: ' '}
	}
	copy(fb.PrevCells, fb.Cells)
	fb.Cells[fb.CellIndex(1, 1)] = cellgrid.Cell{Ord: 'Z'}

	e := New(egc.New())
	out := outbuf.New()
	if err := e.Emit(fb, out, false); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	s := string(out.Bytes())
	if strings.Count(s, "\x1b[2;2H") != 1 {
		t.Fatalf("expected exactly one cursor move to row 2 col 2, got %q", s)
	}
	if strings.Count(s, "Z") != 1 {
		t.Fatalf("expected exactly one Z codepoint, got %q", s)
	}
}

func TestResizeForcesSixelPath(t *testing.T) {
	fb := testFB(3, 3)
	idx := fb.CellIndex(0, 0)
	fb.Kind[idx] = cellgrid.Sixel
	fb.Pixels[0] = cellgrid.RGBA{R: 1, G: 2, B: 3, A: 255}
	copy(fb.PrevKind, fb.Kind)
	copy(fb.PrevCells, fb.Cells)
	copy(fb.PrevPixels, fb.Pixels)

	e := New(egc.New())
	out := outbuf.New()
	if err := e.Emit(fb, out, true); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("\x1bP")) {
		t.Fatalf("expected a sixel DCS block on forced resize, got %q", out.Bytes())
	}
}

func TestNonGlyphBoundsIgnoresAllGlyphGrid(t *testing.T) {
	fb := testFB(2, 2)
	_, ok := nonGlyphBounds(fb)
	if ok {
		t.Fatalf("expected no graphics bounds on an all-glyph grid")
	}
}
