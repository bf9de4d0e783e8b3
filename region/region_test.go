package region

import "testing"

func rectsEqual(t *testing.T, got []Rect, want []Rect) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("rect count: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("rect %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFromRectMembership(t *testing.T) {
	r := FromRect(Point{Y: 2, X: 3}, Size{H: 4, W: 5})
	cases := []struct {
		y, x int
		want bool
	}{
		{2, 3, true},
		{5, 7, true},
		{1, 3, false},
		{6, 3, false},
		{2, 8, false},
		{2, 7, true},
	}
	for _, c := range cases {
		if got := r.Contains(c.y, c.x); got != c.want {
			t.Fatalf("Contains(%d,%d) = %v, want %v", c.y, c.x, got, c.want)
		}
	}
}

func TestUnionExampleFromSpec(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 2, W: 3})
	b := FromRect(Point{1, 2}, Size{H: 2, W: 3})
	got := Union(a, b).Rects()
	want := []Rect{
		{Y: 0, X: 0, H: 1, W: 3},
		{Y: 1, X: 0, H: 1, W: 5},
		{Y: 2, X: 2, H: 1, W: 3},
	}
	rectsEqual(t, got, want)
}

func TestSubtractExampleFromSpec(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 10, W: 10})
	b := FromRect(Point{2, 2}, Size{H: 6, W: 6})
	r := Subtract(a, b)
	if !r.Contains(0, 0) {
		t.Fatalf("expected (0,0) inside a\\b")
	}
	if !r.Contains(9, 9) {
		t.Fatalf("expected (9,9) inside a\\b")
	}
	if r.Contains(5, 5) {
		t.Fatalf("expected (5,5) outside a\\b")
	}
}

func TestUnionCommutative(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 3, W: 4})
	b := FromRect(Point{1, 2}, Size{H: 5, W: 1})
	if ra, rb := Union(a, b), Union(b, a); !sameRegion(ra, rb) {
		t.Fatalf("union not commutative: %+v vs %+v", ra, rb)
	}
}

func TestIntersectCommutative(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 3, W: 4})
	b := FromRect(Point{1, 2}, Size{H: 5, W: 1})
	if ra, rb := Intersect(a, b), Intersect(b, a); !sameRegion(ra, rb) {
		t.Fatalf("intersect not commutative: %+v vs %+v", ra, rb)
	}
}

func TestSymmetricDifferenceDefinition(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 4, W: 4})
	b := FromRect(Point{2, 2}, Size{H: 4, W: 4})
	lhs := SymmetricDifference(a, b)
	rhs := Subtract(Union(a, b), Intersect(a, b))
	if !sameRegion(lhs, rhs) {
		t.Fatalf("a△b != (a∪b)\\(a∩b): %+v vs %+v", lhs, rhs)
	}
}

func TestSelfSubtractIsEmpty(t *testing.T) {
	a := FromRect(Point{1, 1}, Size{H: 3, W: 3})
	if r := Subtract(a, a); !r.IsEmpty() {
		t.Fatalf("a\\a should be empty, got %+v", r)
	}
}

func TestUnionWithEmptyIsIdentity(t *testing.T) {
	a := FromRect(Point{1, 1}, Size{H: 3, W: 3})
	if r := Union(a, Empty); !sameRegion(r, a) {
		t.Fatalf("a∪∅ != a: %+v vs %+v", r, a)
	}
}

func TestIntersectWithEmptyIsEmpty(t *testing.T) {
	a := FromRect(Point{1, 1}, Size{H: 3, W: 3})
	if r := Intersect(a, Empty); !r.IsEmpty() {
		t.Fatalf("a∩∅ should be empty, got %+v", r)
	}
}

func TestResultIsCanonical(t *testing.T) {
	a := FromRect(Point{0, 0}, Size{H: 5, W: 5})
	b := FromRect(Point{1, 1}, Size{H: 2, W: 2})
	r := Union(a, Subtract(FromRect(Point{0, 0}, Size{H: 5, W: 10}), b))
	for i, band := range r.Bands {
		if len(band.Walls)%2 != 0 {
			t.Fatalf("band %d has odd wall count: %v", i, band.Walls)
		}
		for k := 1; k < len(band.Walls); k++ {
			if band.Walls[k] <= band.Walls[k-1] {
				t.Fatalf("band %d walls not strictly increasing: %v", i, band.Walls)
			}
		}
		if i > 0 {
			prev := r.Bands[i-1]
			if prev.Y2 == band.Y1 && sameWalls(prev.Walls, band.Walls) {
				t.Fatalf("adjacent bands %d,%d should have been coalesced", i-1, i)
			}
		}
	}
}

func sameRegion(a, b Region) bool {
	if len(a.Bands) != len(b.Bands) {
		return false
	}
	for i := range a.Bands {
		if a.Bands[i].Y1 != b.Bands[i].Y1 || a.Bands[i].Y2 != b.Bands[i].Y2 {
			return false
		}
		if !sameWalls(a.Bands[i].Walls, b.Bands[i].Walls) {
			return false
		}
	}
	return true
}
