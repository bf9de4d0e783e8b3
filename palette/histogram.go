// Package palette implements Wu's greedy orthogonal-bipartition color
// quantizer: it reduces an RGBA overlay to at most 256 palette entries
// scaled to the 0-99 range sixel requires, plus a per-pixel index into
// that palette. It also provides Qstate, a two-level coarse/fine
// streaming quantizer for callers that want incremental insert-then-
// finalize quantization instead of a one-shot batch pass over a pixel
// slice.
package palette

import "termcore/cellgrid"

// histSize is the lattice resolution: each 8-bit channel is bucketed into
// 32 bins (c>>3), plus one padding row/col/plane so inclusion-exclusion
// box sums never need bounds checks.
const histSize = 33

// histogram accumulates, over a 33³ lattice, per-cell pixel counts and
// first/second color moments, then turns them into cumulative sums so any
// axis-aligned box total is an O(1) 8-point query.
type histogram struct {
	weight             [histSize * histSize * histSize]int64
	momentR, momentG, momentB [histSize * histSize * histSize]int64
	momentSq           [histSize * histSize * histSize]float64
}

func bin(c uint8) int { return int(c>>3) + 1 }

func idx(r, g, b int) int { return (r*histSize+g)*histSize + b }

// build scans every opaque pixel and accumulates raw (non-cumulative)
// counts at its lattice cell, then integrates the three axes in place.
func build(pixels []cellgrid.RGBA) *histogram {
	h := &histogram{}
	for _, p := range pixels {
		if p.A == 0 {
			continue
		}
		r, g, b := bin(p.R), bin(p.G), bin(p.B)
		i := idx(r, g, b)
		h.weight[i]++
		h.momentR[i] += int64(p.R)
		h.momentG[i] += int64(p.G)
		h.momentB[i] += int64(p.B)
		h.momentSq[i] += float64(p.R)*float64(p.R) + float64(p.G)*float64(p.G) + float64(p.B)*float64(p.B)
	}
	h.integrate()
	return h
}

// integrate turns the raw per-cell accumulations into cumulative moments,
// so every cell holds the sum over the box [0,r]x[0,g]x[0,b]. Pass one
// integrates R and B together: a running line total over b combined with
// the already-resolved r-1 predecessor (same g, b) covers both axes in
// one sweep. Pass two then integrates G in place over that result: since
// g-1 (same r, b) was already made fully cumulative by this same pass, a
// plain running sum along g needs no separate line accumulator of its
// own — adding one on top of the g-1 predecessor would double-count it.
func (h *histogram) integrate() {
	// Pass 1: cumulative over R and B together. For fixed r, g, running
	// wLine accumulates raw weight over b' <= b; adding the already-
	// resolved predecessor at r-1 (same g, b) extends that to r' <= r.
	for r := 1; r < histSize; r++ {
		for g := 1; g < histSize; g++ {
			var wLine, rLine, gLine, bLine int64
			var sqLine float64
			for b := 1; b < histSize; b++ {
				i := idx(r, g, b)
				wLine += h.weight[i]
				rLine += h.momentR[i]
				gLine += h.momentG[i]
				bLine += h.momentB[i]
				sqLine += h.momentSq[i]

				prev := idx(r-1, g, b)
				h.weight[i] = h.weight[prev] + wLine
				h.momentR[i] = h.momentR[prev] + rLine
				h.momentG[i] = h.momentG[prev] + gLine
				h.momentB[i] = h.momentB[prev] + bLine
				h.momentSq[i] = h.momentSq[prev] + sqLine
			}
		}
	}
	// Pass 2: cumulative over G, in place. h[r,g-1,b] was already made
	// fully cumulative over R, B, and G' < g by this same pass, so a
	// plain running in-place sum along g is the whole answer: no
	// separate line accumulator, or the g-1 predecessor's own sum would
	// be added twice.
	for r := 1; r < histSize; r++ {
		for b := 1; b < histSize; b++ {
			for g := 1; g < histSize; g++ {
				i := idx(r, g, b)
				prev := idx(r, g-1, b)
				h.weight[i] += h.weight[prev]
				h.momentR[i] += h.momentR[prev]
				h.momentG[i] += h.momentG[prev]
				h.momentB[i] += h.momentB[prev]
				h.momentSq[i] += h.momentSq[prev]
			}
		}
	}
}

// box is a lattice range (R0,R1] x (G0,G1] x (B0,B1]: each lower bound is
// exclusive and each upper bound inclusive.
type box struct {
	R0, R1, G0, G1, B0, B1 int
}

// moments is an 8-point inclusion-exclusion query over the cumulative
// histogram, giving (weight, sumR, sumG, sumB, sumSquares) for the box.
func (h *histogram) moments(bx box) (w, r, g, b int64, sq float64) {
	sign := func(ri, gi, bi int) int64 {
		if (ri+gi+bi)%2 == 1 {
			return 1
		}
		return -1
	}
	corners := [8][3]int{
		{bx.R1, bx.G1, bx.B1}, {bx.R1, bx.G1, bx.B0}, {bx.R1, bx.G0, bx.B1}, {bx.R1, bx.G0, bx.B0},
		{bx.R0, bx.G1, bx.B1}, {bx.R0, bx.G1, bx.B0}, {bx.R0, bx.G0, bx.B1}, {bx.R0, bx.G0, bx.B0},
	}
	parity := [8][3]int{{1, 1, 1}, {1, 1, 0}, {1, 0, 1}, {1, 0, 0}, {0, 1, 1}, {0, 1, 0}, {0, 0, 1}, {0, 0, 0}}
	for k, c := range corners {
		s := sign(parity[k][0], parity[k][1], parity[k][2])
		i := idx(c[0], c[1], c[2])
		w += s * h.weight[i]
		r += s * h.momentR[i]
		g += s * h.momentG[i]
		b += s * h.momentB[i]
		sq += float64(s) * h.momentSq[i]
	}
	return
}

// variance is the weighted variance contribution of the box: sumSquares
// minus the squared-mean term, i.e. how much tighter the box's colors
// could become if it were split.
func (h *histogram) variance(bx box) float64 {
	w, r, g, b, sq := h.moments(bx)
	if w == 0 {
		return 0
	}
	rf, gf, bf := float64(r), float64(g), float64(b)
	return sq - (rf*rf+gf*gf+bf*bf)/float64(w)
}
