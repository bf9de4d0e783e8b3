// Package vtsource adapts a PTY-backed shell session into a cell grid the
// compositor can composite as a Canvas element: it owns the child process,
// parses its ANSI/VT100 output stream into cellgrid.Cells, and exposes a
// snapshot safe to hand to compositor.RenderCanvas between frames. Input
// parsing of escape sequences from a real terminal (as opposed to from the
// child shell) and any widget/event-loop concerns stay outside this package.
package vtsource

import (
	"os"
	"os/exec"
	"sync"
	"unicode/utf8"

	"github.com/creack/pty"

	"termcore/cellgrid"
	"termcore/egc"
)

type ansiState int

const (
	stateNormal ansiState = iota
	stateEscape
	stateCSI
	stateOSC
)

// Source is a PTY-backed ANSI terminal emulator producing a cellgrid.Cell
// grid other compositor elements can read as a Canvas source.
type Source struct {
	mu sync.Mutex

	ptyFile *os.File
	cmd     *exec.Cmd
	pool    *egc.Pool

	cells      []cellgrid.Cell
	rows, cols int
	curRow     int
	curCol     int
	scrollTop  int
	scrollBot  int

	state  ansiState
	csiBuf []byte
	oscBuf []byte

	curStyle cellgrid.Style
	curFG    cellgrid.RGB
	curBG    cellgrid.RGB

	savedRow, savedCol int
	savedStyle         cellgrid.Style
	savedFG, savedBG   cellgrid.RGB

	altActive bool
	mainCells []cellgrid.Cell
	altCells  []cellgrid.Cell

	onOutput func()
}

// defaultFG/defaultBG are the colors a reset (SGR 0 / 39 / 49) falls back to.
var (
	defaultFG = cellgrid.RGB{R: 229, G: 229, B: 229}
	defaultBG = cellgrid.RGB{}
)

// Start spawns shell under a PTY sized rows×cols and begins reading its
// output in the background. onOutput, if non-nil, is called (on the PTY
// reader goroutine, after the source's lock is released) after each chunk
// of output is parsed, so a caller can schedule a re-render.
func Start(pool *egc.Pool, shell string, rows, cols int, onOutput func()) (*Source, error) {
	s := &Source{
		pool: pool, rows: rows, cols: cols,
		scrollBot: rows - 1,
		curFG:     defaultFG,
		onOutput:  onOutput,
	}
	s.initCells()

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, err
	}
	s.cmd = cmd
	s.ptyFile = ptmx

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			s.mu.Lock()
			s.processOutput(data)
			s.mu.Unlock()
			if s.onOutput != nil {
				s.onOutput()
			}
		}
	}()

	return s, nil
}

func (s *Source) initCells() {
	s.cells = make([]cellgrid.Cell, s.rows*s.cols)
	for i := range s.cells {
		s.cells[i] = cellgrid.Cell{Ord: ' ', FG: defaultFG}
	}
}

// Write sends keyboard/paste bytes to the child process's stdin.
func (s *Source) Write(p []byte) (int, error) {
	return s.ptyFile.Write(p)
}

// Close terminates the child process and releases the PTY.
func (s *Source) Close() error {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.ptyFile.Close()
}

// Resize copies the overlapping top-left block of the cell grid into a grid
// of the new geometry (lines are cropped or padded, not re-wrapped) and
// informs the PTY.
func (s *Source) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows == s.rows && cols == s.cols {
		return
	}
	resized := make([]cellgrid.Cell, rows*cols)
	for i := range resized {
		resized[i] = cellgrid.Cell{Ord: ' ', FG: defaultFG}
	}
	copyRows := rows
	if s.rows < copyRows {
		copyRows = s.rows
	}
	copyCols := cols
	if s.cols < copyCols {
		copyCols = s.cols
	}
	for y := 0; y < copyRows; y++ {
		copy(resized[y*cols:y*cols+copyCols], s.cells[y*s.cols:y*s.cols+copyCols])
	}
	s.cells = resized
	s.rows, s.cols = rows, cols
	s.scrollBot = rows - 1
	if s.curRow >= rows {
		s.curRow = rows - 1
	}
	if s.curCol >= cols {
		s.curCol = cols - 1
	}
	pty.Setsize(s.ptyFile, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Snapshot returns a copy of the current cell grid plus its row stride,
// ready to back a compositor.Canvas{Source, SrcW}.
func (s *Source) Snapshot() ([]cellgrid.Cell, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cellgrid.Cell, len(s.cells))
	copy(out, s.cells)
	return out, s.cols
}

func (s *Source) processOutput(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		switch s.state {
		case stateNormal:
			switch b {
			case 0x1b:
				s.state = stateEscape
			case '\r':
				s.curCol = 0
			case '\n':
				s.lineFeed()
			case '\b':
				if s.curCol > 0 {
					s.curCol--
				}
			case '\t':
				next := ((s.curCol / 8) + 1) * 8
				if next >= s.cols {
					next = s.cols - 1
				}
				s.curCol = next
			case 0x07, 0x00, 0x0e, 0x0f:
			default:
				if b >= 0x20 || b == 0x0d {
					r, size := utf8.DecodeRune(data[i:])
					if r != utf8.RuneError && r >= 0x20 {
						s.putChar(r)
						i += size - 1
					}
				}
			}
		case stateEscape:
			switch b {
			case '[':
				s.state = stateCSI
				s.csiBuf = s.csiBuf[:0]
			case ']':
				s.state = stateOSC
				s.oscBuf = s.oscBuf[:0]
			case '(':
				i++
				s.state = stateNormal
			case 'M':
				s.reverseIndex()
				s.state = stateNormal
			case '7':
				s.savedRow, s.savedCol = s.curRow, s.curCol
				s.savedStyle, s.savedFG, s.savedBG = s.curStyle, s.curFG, s.curBG
				s.state = stateNormal
			case '8':
				s.curRow, s.curCol = s.savedRow, s.savedCol
				s.curStyle, s.curFG, s.curBG = s.savedStyle, s.savedFG, s.savedBG
				s.clampCursor()
				s.state = stateNormal
			default:
				s.state = stateNormal
			}
		case stateCSI:
			if b >= 0x40 && b <= 0x7e {
				s.csiBuf = append(s.csiBuf, b)
				s.processCSI()
				s.state = stateNormal
			} else {
				s.csiBuf = append(s.csiBuf, b)
			}
		case stateOSC:
			if b == 0x07 || b == 0x1b {
				if b == 0x1b && i+1 < len(data) && data[i+1] == '\\' {
					i++
				}
				s.state = stateNormal
			} else {
				s.oscBuf = append(s.oscBuf, b)
			}
		}
		i++
	}
}

func (s *Source) clampCursor() {
	if s.curRow < 0 {
		s.curRow = 0
	}
	if s.curRow >= s.rows {
		s.curRow = s.rows - 1
	}
	if s.curCol < 0 {
		s.curCol = 0
	}
	if s.curCol >= s.cols {
		s.curCol = s.cols - 1
	}
}

func (s *Source) putChar(ch rune) {
	if s.curRow < 0 || s.curRow >= s.rows || s.curCol < 0 {
		return
	}
	if s.curCol >= s.cols {
		s.curCol = 0
		s.lineFeed()
	}
	ord := s.pool.Encode(string(ch))
	s.cells[s.curRow*s.cols+s.curCol] = cellgrid.Cell{Ord: ord, Style: s.curStyle, FG: s.curFG, BG: s.curBG}
	s.curCol++
}

func (s *Source) lineFeed() {
	if s.curRow == s.scrollBot {
		s.scrollUp()
	} else if s.curRow < s.rows-1 {
		s.curRow++
	}
}

func (s *Source) reverseIndex() {
	if s.curRow == s.scrollTop {
		s.scrollDown()
	} else if s.curRow > 0 {
		s.curRow--
	}
}

func (s *Source) scrollUp() {
	for i := s.scrollTop; i < s.scrollBot; i++ {
		copy(s.cells[i*s.cols:(i+1)*s.cols], s.cells[(i+1)*s.cols:(i+2)*s.cols])
	}
	blankRow(s.cells[s.scrollBot*s.cols : (s.scrollBot+1)*s.cols])
}

func (s *Source) scrollDown() {
	for i := s.scrollBot; i > s.scrollTop; i-- {
		copy(s.cells[i*s.cols:(i+1)*s.cols], s.cells[(i-1)*s.cols:i*s.cols])
	}
	blankRow(s.cells[s.scrollTop*s.cols : (s.scrollTop+1)*s.cols])
}

func blankRow(row []cellgrid.Cell) {
	for j := range row {
		row[j] = cellgrid.Cell{Ord: ' ', FG: defaultFG}
	}
}
