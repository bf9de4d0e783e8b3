package compositor

// blockPredicate reports, for a sub-pixel at (px, py) within a w×h cell
// rect, whether that sub-pixel belongs to the glyph's "foreground" ink
// rather than its background field.
type blockPredicate func(px, py, w, h int) bool

// blockPredicates covers the half-blocks, the full block, the three shade
// densities, and the ten quadrant glyphs: the upper half block the
// compositor's own half blitter writes, plus the glyphs a text canvas is
// likely to have drawn underneath a transparent sixel layer. The remaining eighth-bar glyphs in that range are
// not produced by this package and are treated as ordinary (non-block)
// glyphs by the variance path instead.
var blockPredicates = map[rune]blockPredicate{
	0x2580: func(px, py, w, h int) bool { return py < h/2 },  // upper half block
	0x2584: func(px, py, w, h int) bool { return py >= h/2 }, // lower half block
	0x258C: func(px, py, w, h int) bool { return px < w/2 },  // left half block
	0x2590: func(px, py, w, h int) bool { return px >= w/2 }, // right half block
	0x2588: func(px, py, w, h int) bool { return true },      // full block

	0x2591: shadePredicate(1, 4), // light shade
	0x2592: shadePredicate(1, 2), // medium shade
	0x2593: shadePredicate(3, 4), // dark shade
}

// shadePredicate approximates a shade glyph's ink density with an ordered
// dither over the sub-pixel's position so roughly num/den of the cell reads
// as foreground.
func shadePredicate(num, den int) blockPredicate {
	return func(px, py, w, h int) bool {
		idx := py*w + px
		return idx%den < num
	}
}

const (
	quadTL = 1 << iota
	quadTR
	quadBL
	quadBR
)

var quadrantMasks = map[rune]uint8{
	0x2596: quadBL,
	0x2597: quadBR,
	0x2598: quadTL,
	0x2599: quadTL | quadBL | quadBR,
	0x259A: quadTL | quadBR,
	0x259B: quadTL | quadTR | quadBL,
	0x259C: quadTL | quadTR | quadBR,
	0x259D: quadTR,
	0x259E: quadTR | quadBL,
	0x259F: quadTR | quadBL | quadBR,
}

func init() {
	for ord, mask := range quadrantMasks {
		mask := mask
		blockPredicates[ord] = func(px, py, w, h int) bool {
			var q uint8
			switch {
			case px < w/2 && py < h/2:
				q = quadTL
			case px >= w/2 && py < h/2:
				q = quadTR
			case px < w/2 && py >= h/2:
				q = quadBL
			default:
				q = quadBR
			}
			return mask&q != 0
		}
	}
}

// isBlockGlyph reports whether ord has a known foreground predicate.
func isBlockGlyph(ord uint32) bool {
	_, ok := blockPredicates[rune(ord)]
	return ok
}
