package vtsource

import (
	"strconv"
	"strings"

	"termcore/cellgrid"
)

func (s *Source) processCSI() {
	if len(s.csiBuf) == 0 {
		return
	}
	final := s.csiBuf[len(s.csiBuf)-1]
	params := string(s.csiBuf[:len(s.csiBuf)-1])
	params = strings.TrimPrefix(params, "?")

	switch final {
	case 'm':
		s.processSGR(params)
	case 'A':
		s.curRow -= parseParam(params, 1)
	case 'B':
		s.curRow += parseParam(params, 1)
	case 'C':
		s.curCol += parseParam(params, 1)
	case 'D':
		s.curCol -= parseParam(params, 1)
	case 'H', 'f':
		row, col := parseParamPair(params, 1, 1)
		s.curRow, s.curCol = row-1, col-1
	case 'G':
		s.curCol = parseParam(params, 1) - 1
	case 'd':
		s.curRow = parseParam(params, 1) - 1
	case 'J':
		s.eraseDisplay(parseParam(params, 0))
	case 'K':
		s.eraseLine(parseParam(params, 0))
	case 'r':
		top, bot := parseParamPair(params, 1, s.rows)
		s.scrollTop, s.scrollBot = top-1, bot-1
	case 'h', 'l':
		s.processMode(params, final == 'h')
	}
	s.clampCursor()
}

func (s *Source) eraseDisplay(mode int) {
	switch mode {
	case 0:
		blankRow(s.cells[s.curRow*s.cols+s.curCol : (s.curRow+1)*s.cols])
		for y := s.curRow + 1; y < s.rows; y++ {
			blankRow(s.cells[y*s.cols : (y+1)*s.cols])
		}
	case 1:
		for y := 0; y < s.curRow; y++ {
			blankRow(s.cells[y*s.cols : (y+1)*s.cols])
		}
		blankRow(s.cells[s.curRow*s.cols : s.curRow*s.cols+s.curCol+1])
	case 2, 3:
		blankRow(s.cells)
	}
}

func (s *Source) eraseLine(mode int) {
	row := s.cells[s.curRow*s.cols : (s.curRow+1)*s.cols]
	switch mode {
	case 0:
		blankRow(row[s.curCol:])
	case 1:
		blankRow(row[:s.curCol+1])
	case 2:
		blankRow(row)
	}
}

func (s *Source) processMode(params string, set bool) {
	switch params {
	case "1049":
		if set && !s.altActive {
			s.mainCells = make([]cellgrid.Cell, len(s.cells))
			copy(s.mainCells, s.cells)
			if s.altCells == nil {
				s.altCells = make([]cellgrid.Cell, len(s.cells))
				blankRow(s.altCells)
			}
			s.cells = s.altCells
			s.altActive = true
			s.curRow, s.curCol = 0, 0
		} else if !set && s.altActive {
			s.altCells = s.cells
			s.cells = s.mainCells
			s.altActive = false
		}
	}
}

func (s *Source) processSGR(params string) {
	if params == "" || params == "0" {
		s.curStyle = 0
		s.curFG, s.curBG = defaultFG, defaultBG
		return
	}
	codes := splitParams(params)
	i := 0
	for i < len(codes) {
		c := codes[i]
		switch {
		case c == 0:
			s.curStyle = 0
			s.curFG, s.curBG = defaultFG, defaultBG
		case c == 1:
			s.curStyle |= cellgrid.Bold
		case c == 3:
			s.curStyle |= cellgrid.Italic
		case c == 4:
			s.curStyle |= cellgrid.Underline
		case c == 7:
			s.curStyle |= cellgrid.Reverse
		case c == 9:
			s.curStyle |= cellgrid.Strikethrough
		case c == 22:
			s.curStyle &^= cellgrid.Bold
		case c == 23:
			s.curStyle &^= cellgrid.Italic
		case c == 24:
			s.curStyle &^= cellgrid.Underline
		case c == 27:
			s.curStyle &^= cellgrid.Reverse
		case c == 29:
			s.curStyle &^= cellgrid.Strikethrough
		case c >= 30 && c <= 37:
			s.curFG = ansiColor(c - 30)
		case c == 38:
			if n, adv := s.parseExtendedColor(codes, i); adv > 0 {
				s.curFG = n
				i += adv
			}
		case c == 39:
			s.curFG = defaultFG
		case c >= 40 && c <= 47:
			s.curBG = ansiColor(c - 40)
		case c == 48:
			if n, adv := s.parseExtendedColor(codes, i); adv > 0 {
				s.curBG = n
				i += adv
			}
		case c == 49:
			s.curBG = defaultBG
		case c >= 90 && c <= 97:
			s.curFG = ansiBrightColor(c - 90)
		case c >= 100 && c <= 107:
			s.curBG = ansiBrightColor(c - 100)
		}
		i++
	}
}

// parseExtendedColor parses the 38/48 "5;n" (256-color) or "2;r;g;b"
// (truecolor) forms starting at codes[i+1], returning the resolved color and
// how many extra codes it consumed.
func (s *Source) parseExtendedColor(codes []int, i int) (cellgrid.RGB, int) {
	if i+1 >= len(codes) {
		return cellgrid.RGB{}, 0
	}
	switch codes[i+1] {
	case 5:
		if i+2 < len(codes) {
			return xterm256Color(codes[i+2]), 2
		}
	case 2:
		if i+4 < len(codes) {
			return cellgrid.RGB{R: clampByte(codes[i+2]), G: clampByte(codes[i+3]), B: clampByte(codes[i+4])}, 4
		}
	}
	return cellgrid.RGB{}, 0
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func parseParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseParamPair(s string, def1, def2 int) (int, int) {
	parts := splitString(s, ';')
	a, b := def1, def2
	if len(parts) > 0 && parts[0] != "" {
		a = parseParam(parts[0], def1)
	}
	if len(parts) > 1 && parts[1] != "" {
		b = parseParam(parts[1], def2)
	}
	return a, b
}

func splitParams(s string) []int {
	parts := splitString(s, ';')
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			out = append(out, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

func splitString(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
