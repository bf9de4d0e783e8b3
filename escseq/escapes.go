// Package escseq implements the output escape-sequence grammar the
// differential emitter speaks: cursor positioning, SGR attribute deltas,
// screen/mode toggles, and the DSR request forms a consumer may need to
// probe terminal capabilities.
package escseq

import (
	"fmt"
	"io"

	"termcore/cellgrid"
)

// Mode toggle / static sequences.
const (
	SaveCursor    = "\x1b7"
	RestoreCursor = "\x1b8"

	AltScreenEnter = "\x1b[?1049h"
	AltScreenExit  = "\x1b[?1049l"

	MouseEnter         = "\x1b[?1000h\x1b[?1003h\x1b[?1006h"
	MouseExit          = "\x1b[?1000l\x1b[?1003l\x1b[?1006l"
	MouseSGRPixelsOn   = "\x1b[?1016h"
	MouseSGRPixelsOff  = "\x1b[?1016l"

	BracketedPasteEnter = "\x1b[?2004h"
	BracketedPasteExit  = "\x1b[?2004l"
	PasteStart          = "\x1b[200~"
	PasteEnd            = "\x1b[201~"

	FocusReportEnter = "\x1b[?1004h"
	FocusReportExit  = "\x1b[?1004l"
	FocusIn          = "\x1b[I"
	FocusOut         = "\x1b[O"

	CursorShow = "\x1b[?25h"
	CursorHide = "\x1b[?25l"

	DSRCursorPosition = "\x1b[6n"
	DSRForegroundColor = "\x1b]10;?\x1b\\"
	DSRBackgroundColor = "\x1b]11;?\x1b\\"
	DSRDeviceAttrs     = "\x1b[c"
	DSRWindowPixels    = "\x1b[14t"
	DSRCellPixels      = "\x1b[16t"
)

// DECRQM returns the feature-probe request for a DEC private mode.
func DECRQM(mode int) string {
	return fmt.Sprintf("\x1b[%d$p", mode)
}

// WriteCUP writes an absolute cursor position move (1-based).
func WriteCUP(w io.Writer, row, col int) error {
	_, err := fmt.Fprintf(w, "\x1b[%d;%dH", row, col)
	return err
}

// WriteCHA writes a same-row cursor column move (1-based).
func WriteCHA(w io.Writer, col int) error {
	_, err := fmt.Fprintf(w, "\x1b[%dG", col)
	return err
}

type styleCode struct {
	bit    cellgrid.Style
	on, off int
}

var styleCodes = [...]styleCode{
	{cellgrid.Bold, 1, 22},
	{cellgrid.Italic, 3, 23},
	{cellgrid.Underline, 4, 24},
	{cellgrid.Strikethrough, 9, 29},
	{cellgrid.Overline, 53, 55},
	{cellgrid.Reverse, 7, 27},
}

// WriteSGRDelta emits the minimal SGR sequence moving the terminal's
// rendering attributes from prev to cur: one on/off code per differing
// style bit, and a truecolor escape for fg/bg whenever they changed. It
// writes nothing and returns false if prev and cur already match.
func WriteSGRDelta(w io.Writer, prev, cur cellgrid.Cell) (bool, error) {
	var params []string
	for _, sc := range styleCodes {
		was := prev.Style&sc.bit != 0
		is := cur.Style&sc.bit != 0
		if was == is {
			continue
		}
		if is {
			params = append(params, fmt.Sprintf("%d", sc.on))
		} else {
			params = append(params, fmt.Sprintf("%d", sc.off))
		}
	}
	if cur.FG != prev.FG {
		params = append(params, fmt.Sprintf("38;2;%d;%d;%d", cur.FG.R, cur.FG.G, cur.FG.B))
	}
	if cur.BG != prev.BG {
		params = append(params, fmt.Sprintf("48;2;%d;%d;%d", cur.BG.R, cur.BG.G, cur.BG.B))
	}
	if len(params) == 0 {
		return false, nil
	}
	out := "\x1b["
	for i, p := range params {
		if i > 0 {
			out += ";"
		}
		out += p
	}
	out += "m"
	_, err := io.WriteString(w, out)
	return true, err
}
