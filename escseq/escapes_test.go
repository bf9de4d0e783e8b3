package escseq

import (
	"bytes"
	"testing"

	"termcore/cellgrid"
)

func TestWriteCUPAbsolute(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCUP(&buf, 3, 7); err != nil {
		t.Fatalf("WriteCUP: %v", err)
	}
	if got, want := buf.String(), "\x1b[3;7H"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteCHASameRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCHA(&buf, 12); err != nil {
		t.Fatalf("WriteCHA: %v", err)
	}
	if got, want := buf.String(), "\x1b[12G"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDECRQMFormatsMode(t *testing.T) {
	if got, want := DECRQM(1049), "\x1b[1049$p"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteSGRDeltaNoChangeEmitsNothing(t *testing.T) {
	c := cellgrid.Cell{Ord: 'x', Style: cellgrid.Bold, FG: cellgrid.RGB{R: 1, G: 2, B: 3}}
	var buf bytes.Buffer
	wrote, err := WriteSGRDelta(&buf, c, c)
	if err != nil {
		t.Fatalf("WriteSGRDelta: %v", err)
	}
	if wrote || buf.Len() != 0 {
		t.Fatalf("expected no-op for identical cells, got wrote=%v buf=%q", wrote, buf.String())
	}
}

func TestWriteSGRDeltaStyleToggle(t *testing.T) {
	prev := cellgrid.Cell{}
	cur := cellgrid.Cell{Style: cellgrid.Bold | cellgrid.Underline}
	var buf bytes.Buffer
	wrote, err := WriteSGRDelta(&buf, prev, cur)
	if err != nil {
		t.Fatalf("WriteSGRDelta: %v", err)
	}
	if !wrote {
		t.Fatalf("expected a write")
	}
	if got, want := buf.String(), "\x1b[1;4m"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteSGRDeltaStyleOff(t *testing.T) {
	prev := cellgrid.Cell{Style: cellgrid.Bold | cellgrid.Reverse}
	cur := cellgrid.Cell{}
	var buf bytes.Buffer
	if _, err := WriteSGRDelta(&buf, prev, cur); err != nil {
		t.Fatalf("WriteSGRDelta: %v", err)
	}
	if got, want := buf.String(), "\x1b[22;27m"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteSGRDeltaTruecolor(t *testing.T) {
	prev := cellgrid.Cell{FG: cellgrid.RGB{R: 1, G: 1, B: 1}, BG: cellgrid.RGB{R: 2, G: 2, B: 2}}
	cur := cellgrid.Cell{FG: cellgrid.RGB{R: 10, G: 20, B: 30}, BG: cellgrid.RGB{R: 2, G: 2, B: 2}}
	var buf bytes.Buffer
	if _, err := WriteSGRDelta(&buf, prev, cur); err != nil {
		t.Fatalf("WriteSGRDelta: %v", err)
	}
	if got, want := buf.String(), "\x1b[38;2;10;20;30m"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestModeConstantsMatchGrammar(t *testing.T) {
	cases := map[string]string{
		SaveCursor:          "\x1b7",
		RestoreCursor:       "\x1b8",
		AltScreenEnter:      "\x1b[?1049h",
		CursorShow:          "\x1b[?25h",
		BracketedPasteEnter: "\x1b[?2004h",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
