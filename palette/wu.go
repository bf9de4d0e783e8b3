package palette

import "termcore/cellgrid"

// MaxColors is the largest palette Wu quantization will ever produce:
// entries are numbered 0-255, so every per-pixel index fits in a uint8.
const MaxColors = 256

// Entry is one palette color, components already scaled to sixel's 0-99
// percentage range.
type Entry struct {
	R, G, B uint8
}

// Result is a quantized palette plus a per-pixel index into it.
type Result struct {
	Entries []Entry
	Index   []uint8 // same length/order as the pixels passed to Build
}

type cube struct {
	box
	weight int64
}

// Build runs Wu's greedy orthogonal-bipartition quantizer over pixels,
// producing at most maxColors palette entries (a maxColors outside
// [1, MaxColors] means MaxColors) and a parallel index array. Fully
// transparent pixels do not contribute to the histogram and are assigned
// index 0, the same index as the first palette entry.
func Build(pixels []cellgrid.RGBA, maxColors int) Result {
	if maxColors <= 0 || maxColors > MaxColors {
		maxColors = MaxColors
	}
	h := build(pixels)
	whole := box{R0: 0, R1: histSize - 1, G0: 0, G1: histSize - 1, B0: 0, B1: histSize - 1}
	cubes := []cube{{box: whole, weight: totalWeight(h)}}

	for len(cubes) < maxColors {
		splitIdx, axis, cut, gain := bestSplit(h, cubes)
		if splitIdx < 0 || gain <= 0 {
			break
		}
		a, b := splitCube(cubes[splitIdx].box, axis, cut)
		wa, _, _, _, _ := h.moments(a)
		wb, _, _, _, _ := h.moments(b)
		cubes[splitIdx] = cube{box: a, weight: wa}
		cubes = append(cubes, cube{box: b, weight: wb})
	}

	entries := make([]Entry, 0, len(cubes))
	tag := make([]uint8, histSize*histSize*histSize)
	for ci, c := range cubes {
		w, r, g, b, _ := h.moments(c.box)
		var entry Entry
		if w > 0 {
			entry = Entry{
				R: scale99(r, w),
				G: scale99(g, w),
				B: scale99(b, w),
			}
		}
		entries = append(entries, entry)
		markTag(tag, c.box, uint8(ci))
	}

	index := make([]uint8, len(pixels))
	for i, p := range pixels {
		if p.A == 0 {
			continue
		}
		index[i] = tag[idx(bin(p.R), bin(p.G), bin(p.B))]
	}
	return Result{Entries: entries, Index: index}
}

func totalWeight(h *histogram) int64 {
	w, _, _, _, _ := h.moments(box{R0: 0, R1: histSize - 1, G0: 0, G1: histSize - 1, B0: 0, B1: histSize - 1})
	return w
}

func scale99(sum int64, w int64) uint8 {
	mean := (sum*2 + w) / (2 * w) // round to nearest
	v := (mean*99 + 127) / 255
	if v > 99 {
		v = 99
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}

func markTag(tag []uint8, bx box, label uint8) {
	for r := bx.R0 + 1; r <= bx.R1; r++ {
		for g := bx.G0 + 1; g <= bx.G1; g++ {
			base := (r*histSize + g) * histSize
			for b := bx.B0 + 1; b <= bx.B1; b++ {
				tag[base+b] = label
			}
		}
	}
}

// bestSplit picks the cube of greatest weighted variance, then searches
// every axis/position within that one cube for the split maximizing the
// sum of the two children's squared color means weighted by their counts
// (Wu's variance-reduction objective).
func bestSplit(h *histogram, cubes []cube) (cubeIdx int, axis int, cut int, gain float64) {
	cubeIdx = -1
	bestVariance := -1.0
	for ci, c := range cubes {
		if c.weight < 2 {
			continue
		}
		v := h.variance(c.box)
		if v > bestVariance {
			bestVariance = v
			cubeIdx = ci
		}
	}
	if cubeIdx < 0 {
		return -1, 0, 0, 0
	}

	c := cubes[cubeIdx]
	wholeW, wholeR, wholeG, wholeB, _ := h.moments(c.box)
	if wholeW == 0 {
		return -1, 0, 0, 0
	}
	wholeScore := sq(wholeR, wholeG, wholeB) / float64(wholeW)

	for ax := 0; ax < 3; ax++ {
		lo, hi := axisRange(c.box, ax)
		if hi-lo < 2 {
			continue
		}
		for cut1 := lo; cut1 < hi; cut1++ {
			a := upperBoundAt(c.box, ax, cut1)
			wa, ra, ga, ba, _ := h.moments(a)
			if wa == 0 || wa == wholeW {
				continue
			}
			wb := wholeW - wa
			rb, gb, bb := wholeR-ra, wholeG-ga, wholeB-ba
			score := sq(ra, ga, ba)/float64(wa) + sq(rb, gb, bb)/float64(wb)
			if gainHere := score - wholeScore; gainHere > gain {
				gain = gainHere
				axis = ax
				cut = cut1
			}
		}
	}
	if gain <= 0 {
		return -1, 0, 0, 0
	}
	return cubeIdx, axis, cut, gain
}

func sq(r, g, b int64) float64 {
	rf, gf, bf := float64(r), float64(g), float64(b)
	return rf*rf + gf*gf + bf*bf
}

func axisRange(bx box, axis int) (lo, hi int) {
	switch axis {
	case 0:
		return bx.R0, bx.R1
	case 1:
		return bx.G0, bx.G1
	default:
		return bx.B0, bx.B1
	}
}

// upperBoundAt returns bx with its upper bound on `axis` clamped to cut,
// i.e. the (R0,cut] sub-box candidate used when scoring a split.
func upperBoundAt(bx box, axis, cut int) box {
	out := bx
	switch axis {
	case 0:
		out.R1 = cut
	case 1:
		out.G1 = cut
	default:
		out.B1 = cut
	}
	return out
}

// splitCube partitions bx along axis at cut into (lo,cut] and (cut,hi].
func splitCube(bx box, axis, cut int) (box, box) {
	a, b := bx, bx
	switch axis {
	case 0:
		a.R1 = cut
		b.R0 = cut
	case 1:
		a.G1 = cut
		b.G0 = cut
	default:
		a.B1 = cut
		b.B0 = cut
	}
	return a, b
}
