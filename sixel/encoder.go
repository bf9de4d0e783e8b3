// Package sixel implements the single-pass band-and-active-color sixel
// encoder: given a quantized palette and per-pixel indices it emits a
// DCS-wrapped sixel bitstream with run-length encoding.
package sixel

import (
	"fmt"
	"io"

	"termcore/palette"
)

// Image is the quantized input to Encode: a palette plus one palette index
// per pixel, row-major over a Width x Height rect. HasTransparent marks
// whether any source pixel was fully transparent (sets DCS P2=1).
type Image struct {
	Width, Height  int
	Index          []uint8
	Palette        []palette.Entry
	HasTransparent bool
}

// Encode writes the DCS sixel stream for img to w, using aspectH:aspectW as
// the reported pixel aspect ratio (forwarded from the terminal, untouched).
func Encode(w io.Writer, img Image, aspectH, aspectW int) error {
	if img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	p2 := 0
	if img.HasTransparent {
		p2 = 1
	}
	if _, err := fmt.Fprintf(w, "\x1bP;%d;q\"%d;%d;%d;%d", p2, aspectH, aspectW, img.Width, img.Height); err != nil {
		return err
	}
	for i, e := range img.Palette {
		if _, err := fmt.Fprintf(w, "#%d;2;%d;%d;%d", i, e.R, e.G, e.B); err != nil {
			return err
		}
	}

	nc := len(img.Palette)
	bands := (img.Height + 5) / 6
	colBuf := make([]byte, img.Width*nc)
	used := make([]bool, nc)
	var present []int

	for band := 0; band < bands; band++ {
		if band > 0 {
			if _, err := io.WriteString(w, "-"); err != nil {
				return err
			}
		}
		present = present[:0]
		for p := 0; p < 6; p++ {
			y := band*6 + p
			if y >= img.Height {
				break
			}
			for x := 0; x < img.Width; x++ {
				c := int(img.Index[y*img.Width+x])
				if c >= nc {
					continue
				}
				if colBuf[x*nc+c] == 0 && !used[c] {
					used[c] = true
					present = append(present, c)
				}
				colBuf[x*nc+c] |= 1 << uint(p)
			}
		}
		for i, c := range present {
			if i > 0 {
				if _, err := io.WriteString(w, "$"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "#%d", c); err != nil {
				return err
			}
			if err := writeRuns(w, colBuf, c, nc, img.Width); err != nil {
				return err
			}
		}
		for _, c := range present {
			for x := 0; x < img.Width; x++ {
				colBuf[x*nc+c] = 0
			}
			used[c] = false
		}
	}

	_, err := io.WriteString(w, "\x1b\\")
	return err
}

// writeRuns emits color c's sixel bitmask bytes for every column of the
// current band, run-length encoding any run of length >= 3 as "!N<char>".
func writeRuns(w io.Writer, colBuf []byte, c, nc, width int) error {
	var prev byte = 0xff
	run := 0
	flush := func() error {
		if run == 0 {
			return nil
		}
		return writeRun(w, prev, run)
	}
	for x := 0; x < width; x++ {
		v := colBuf[x*nc+c]
		if x == 0 {
			prev, run = v, 1
			continue
		}
		if v == prev {
			run++
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		prev, run = v, 1
	}
	return flush()
}

func writeRun(w io.Writer, mask byte, n int) error {
	ch := byte(63 + mask)
	if n >= 3 {
		_, err := fmt.Fprintf(w, "!%d%c", n, ch)
		return err
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ch
	}
	_, err := w.Write(buf)
	return err
}
