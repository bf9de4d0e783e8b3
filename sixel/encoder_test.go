package sixel

import (
	"bytes"
	"strings"
	"testing"

	"termcore/palette"
)

func TestEncodeEnvelope(t *testing.T) {
	img := Image{
		Width:  3,
		Height: 6,
		Index:  []uint8{0, 0, 0, 1, 1, 1, 0, 0, 0, 1, 1, 1, 0, 0, 0, 1, 1, 1},
		Palette: []palette.Entry{
			{R: 99, G: 0, B: 0},
			{R: 0, G: 99, B: 0},
		},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, 1, 1); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1bP") {
		t.Fatalf("expected stream to start with ESC P, got %q", out[:minInt(10, len(out))])
	}
	if !strings.HasSuffix(out, "\x1b\\") {
		t.Fatalf("expected stream to end with ESC \\, got %q", out[len(out)-4:])
	}
}

func TestEncodeSingleBandSeparators(t *testing.T) {
	// One 6-row band, 3 distinct colors present across its columns.
	img := Image{
		Width:  3,
		Height: 6,
		Index:  make([]uint8, 18),
		Palette: []palette.Entry{
			{R: 10}, {R: 20}, {R: 30},
		},
	}
	for row := 0; row < 6; row++ {
		img.Index[row*3+0] = 0
		img.Index[row*3+1] = 1
		img.Index[row*3+2] = 2
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, 1, 1); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(buf.String(), "\x1bP;0;q\"1;1;3;6"), "\x1b\\")
	// strip palette registrations (no '$' or '-' there, so simple count works
	// on the whole body).
	if got := strings.Count(body, "$"); got != 2 {
		t.Fatalf("expected 2 '$' separators for 3 colors in one band, got %d in %q", got, body)
	}
	if strings.Contains(body, "-") {
		t.Fatalf("single-band stream should not contain a '-' band separator: %q", body)
	}
}

func TestEncodeTwoBandsSeparatedByDash(t *testing.T) {
	img := Image{
		Width:   1,
		Height:  7,
		Index:   []uint8{0, 0, 0, 0, 0, 0, 0},
		Palette: []palette.Entry{{R: 50}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, 1, 1); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := strings.Count(buf.String(), "-"); got != 1 {
		t.Fatalf("expected exactly one band separator for 2 bands, got %d", got)
	}
}

func TestEncodeRunLengthThreshold(t *testing.T) {
	idx := make([]uint8, 10)
	img := Image{Width: 10, Height: 1, Index: idx, Palette: []palette.Entry{{R: 1}}}
	var buf bytes.Buffer
	Encode(&buf, img, 1, 1)
	if !strings.Contains(buf.String(), "!10") {
		t.Fatalf("expected a run-length encoded run of 10, got %q", buf.String())
	}

	idx2 := []uint8{0, 0, 1}
	img2 := Image{Width: 3, Height: 1, Index: idx2, Palette: []palette.Entry{{R: 1}, {R: 2}}}
	var buf2 bytes.Buffer
	Encode(&buf2, img2, 1, 1)
	if strings.Contains(buf2.String(), "!") {
		t.Fatalf("run of length 2 should not be RLE-encoded, got %q", buf2.String())
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
