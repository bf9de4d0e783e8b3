// Package region implements the area algebra used by the compositor: a
// Region is an ordered list of horizontal Bands, each a y-range plus a
// sorted list of x "walls" marking where the band is inside/outside.
package region

import "sort"

// Point is a (y, x) cell coordinate.
type Point struct {
	Y, X int
}

// Size is a (h, w) extent in cells.
type Size struct {
	H, W int
}

// Rect is a single axis-aligned rectangle, [X, X+W) x [Y, Y+H).
type Rect struct {
	Y, X, H, W int
}

// Band is a horizontal strip [Y1, Y2) with a strictly increasing,
// even-length list of x walls. Pairs (Walls[2k], Walls[2k+1]) are the
// inside intervals [x_left, x_right) of the strip.
type Band struct {
	Y1, Y2 int
	Walls  []int
}

// Region is a canonical, immutable set of Bands: y-sorted, non-overlapping,
// no empty bands, and no two adjacent bands share identical walls across a
// touching y-range.
type Region struct {
	Bands []Band
}

// Empty is the region containing no cells.
var Empty = Region{}

// FromRect builds the region covering exactly the given rectangle.
func FromRect(pos Point, size Size) Region {
	if size.W <= 0 || size.H <= 0 {
		return Empty
	}
	return Region{Bands: []Band{{
		Y1:    pos.Y,
		Y2:    pos.Y + size.H,
		Walls: []int{pos.X, pos.X + size.W},
	}}}
}

// Contains reports whether (y, x) lies inside the region.
func (r Region) Contains(y, x int) bool {
	b, ok := bandAt(r.Bands, y)
	if !ok {
		return false
	}
	idx := sort.SearchInts(b.Walls, x+1)
	return idx%2 == 1
}

// bandAt binary-searches for the band covering row y.
func bandAt(bands []Band, y int) (Band, bool) {
	i := sort.Search(len(bands), func(i int) bool { return bands[i].Y2 > y })
	if i >= len(bands) || bands[i].Y1 > y {
		return Band{}, false
	}
	return bands[i], true
}

// wallsAt returns the walls of the band covering row y, or nil if none.
func wallsAt(bands []Band, y int) []int {
	b, ok := bandAt(bands, y)
	if !ok {
		return nil
	}
	return b.Walls
}

// Rects decomposes the region into its constituent rectangles, in band then
// left-to-right order.
func (r Region) Rects() []Rect {
	var out []Rect
	for _, b := range r.Bands {
		for k := 0; k+1 < len(b.Walls); k += 2 {
			out = append(out, Rect{Y: b.Y1, X: b.Walls[k], H: b.Y2 - b.Y1, W: b.Walls[k+1] - b.Walls[k]})
		}
	}
	return out
}

// BoundingRect returns the smallest rectangle containing every cell of the
// region, and false if the region is empty.
func (r Region) BoundingRect() (Rect, bool) {
	if len(r.Bands) == 0 {
		return Rect{}, false
	}
	minY := r.Bands[0].Y1
	maxY := r.Bands[len(r.Bands)-1].Y2
	minX, maxX := r.Bands[0].Walls[0], r.Bands[0].Walls[0]
	for _, b := range r.Bands {
		if len(b.Walls) == 0 {
			continue
		}
		if b.Walls[0] < minX {
			minX = b.Walls[0]
		}
		if last := b.Walls[len(b.Walls)-1]; last > maxX {
			maxX = last
		}
	}
	return Rect{Y: minY, X: minX, H: maxY - minY, W: maxX - minX}, true
}

// IsEmpty reports whether the region contains no cells.
func (r Region) IsEmpty() bool {
	return len(r.Bands) == 0
}

// boundaries returns the sorted, deduplicated union of every band's y1/y2
// across both regions.
func boundaries(a, b Region) []int {
	seen := make(map[int]struct{}, len(a.Bands)*2+len(b.Bands)*2)
	for _, bd := range a.Bands {
		seen[bd.Y1] = struct{}{}
		seen[bd.Y2] = struct{}{}
	}
	for _, bd := range b.Bands {
		seen[bd.Y1] = struct{}{}
		seen[bd.Y2] = struct{}{}
	}
	ys := make([]int, 0, len(seen))
	for y := range seen {
		ys = append(ys, y)
	}
	sort.Ints(ys)
	return ys
}

// mergeWalls performs the zipper walk described in the core design: it
// advances through both wall lists in x order, toggling insideA/insideB at
// each wall, and emits a wall whenever op(insideA, insideB) changes.
func mergeWalls(wa, wb []int, op func(a, b bool) bool) []int {
	var out []int
	i, j := 0, 0
	insideA, insideB := false, false
	prev := op(false, false)
	for i < len(wa) || j < len(wb) {
		var x int
		switch {
		case j >= len(wb) || (i < len(wa) && wa[i] <= wb[j]):
			x = wa[i]
			insideA = !insideA
			i++
			if j < len(wb) && wb[j] == x {
				insideB = !insideB
				j++
			}
		default:
			x = wb[j]
			insideB = !insideB
			j++
		}
		cur := op(insideA, insideB)
		if cur != prev {
			out = append(out, x)
			prev = cur
		}
	}
	return out
}

// combine applies a binary set operator over a and b and returns the
// canonical result.
func combine(a, b Region, op func(a, b bool) bool) Region {
	ys := boundaries(a, b)
	var bands []Band
	for k := 0; k+1 < len(ys); k++ {
		y0, y1 := ys[k], ys[k+1]
		if y0 >= y1 {
			continue
		}
		wa := wallsAt(a.Bands, y0)
		wb := wallsAt(b.Bands, y0)
		walls := mergeWalls(wa, wb, op)
		if len(walls) > 0 {
			bands = append(bands, Band{Y1: y0, Y2: y1, Walls: walls})
		}
	}
	return coalesce(Region{Bands: bands})
}

// coalesce merges adjacent bands whose wall lists are identical and whose
// y-ranges touch, and drops any band left with empty walls.
func coalesce(r Region) Region {
	var out []Band
	for _, b := range r.Bands {
		if len(b.Walls) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Y2 == b.Y1 && sameWalls(out[n-1].Walls, b.Walls) {
			out[n-1].Y2 = b.Y2
			continue
		}
		walls := make([]int, len(b.Walls))
		copy(walls, b.Walls)
		out = append(out, Band{Y1: b.Y1, Y2: b.Y2, Walls: walls})
	}
	return Region{Bands: out}
}

func sameWalls(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Union returns a ∪ b.
func Union(a, b Region) Region { return combine(a, b, func(x, y bool) bool { return x || y }) }

// Intersect returns a ∩ b.
func Intersect(a, b Region) Region { return combine(a, b, func(x, y bool) bool { return x && y }) }

// Subtract returns a \ b (a & !b).
func Subtract(a, b Region) Region { return combine(a, b, func(x, y bool) bool { return x && !y }) }

// SymmetricDifference returns a △ b.
func SymmetricDifference(a, b Region) Region {
	return combine(a, b, func(x, y bool) bool { return x != y })
}
