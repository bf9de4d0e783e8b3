package palette

import "sort"

// Qstate is the two-level streaming quantizer: a coarse table of 1000
// buckets keyed by the decimal decade of each 0-99 (sixel-scale) channel,
// each optionally holding an octree of 8 fine buckets keyed by which half
// of that decade the channel falls in. The differential emitter does not
// use it (it calls Build). Reset drops every octree and the active list;
// the coarse table is a fixed array inside the struct.
type Qstate struct {
	coarse [1000]*[8]fineNode
	active []*fineNode
}

type fineNode struct {
	count              int64
	sumR, sumG, sumB   int64 // accumulated in 0-99 (sixel) scale
	chosenIdx          int
}

// NewQstate returns an empty quantizer state.
func NewQstate() *Qstate {
	return &Qstate{}
}

// Reset clears population counts so the state can be reused for the next
// frame without reallocating the coarse table.
func (q *Qstate) Reset() {
	for i := range q.coarse {
		q.coarse[i] = nil
	}
	q.active = q.active[:0]
}

// to99 scales an 8-bit channel to sixel's 0-99 range.
func to99(v uint8) int {
	x := (int(v)*99 + 127) / 255
	if x > 99 {
		x = 99
	}
	return x
}

func decadeIndex(r99, g99, b99 int) (coarse, fine int) {
	dR, dG, dB := r99/10, g99/10, b99/10
	coarse = (dR*10+dG)*10 + dB
	bit := func(v int) int {
		if v%10 >= 5 {
			return 1
		}
		return 0
	}
	fine = bit(r99)<<2 | bit(g99)<<1 | bit(b99)
	return
}

// Insert adds one RGB sample (full 0-255 range) to the population.
func (q *Qstate) Insert(r, g, b uint8) {
	r99, g99, b99 := to99(r), to99(g), to99(b)
	coarseIdx, fineIdx := decadeIndex(r99, g99, b99)
	oct := q.coarse[coarseIdx]
	if oct == nil {
		oct = &[8]fineNode{}
		q.coarse[coarseIdx] = oct
	}
	fn := &oct[fineIdx]
	if fn.count == 0 {
		q.active = append(q.active, fn)
	}
	fn.count++
	fn.sumR += int64(r99)
	fn.sumG += int64(g99)
	fn.sumB += int64(b99)
}

func (n *fineNode) mean() Entry {
	if n.count == 0 {
		return Entry{}
	}
	return Entry{
		R: uint8((n.sumR + n.count/2) / n.count),
		G: uint8((n.sumG + n.count/2) / n.count),
		B: uint8((n.sumB + n.count/2) / n.count),
	}
}

// Finalize materializes a compact palette of at most maxColors entries:
// the maxColors most populated fine nodes become palette entries verbatim
// ("chosen"); every other node is merged into its nearest chosen node by
// RGB distance, and its samples folded into that entry's running mean.
// Subsequent Index calls resolve through this merge mapping.
func (q *Qstate) Finalize(maxColors int) []Entry {
	if maxColors <= 0 || maxColors > MaxColors {
		maxColors = MaxColors
	}
	if len(q.active) == 0 {
		return nil
	}
	nodes := append([]*fineNode(nil), q.active...)
	sortByCountDesc(nodes)

	nChosen := len(nodes)
	if nChosen > maxColors {
		nChosen = maxColors
	}
	chosen := nodes[:nChosen]
	entries := make([]Entry, nChosen)
	sums := make([][3]int64, nChosen)
	counts := make([]int64, nChosen)
	for i, n := range chosen {
		n.chosenIdx = i
		sums[i] = [3]int64{n.sumR, n.sumG, n.sumB}
		counts[i] = n.count
	}

	for _, n := range nodes[nChosen:] {
		best, bestDist := 0, int64(-1)
		mean := n.mean()
		for i, c := range chosen {
			cm := c.mean()
			dr := int64(mean.R) - int64(cm.R)
			dg := int64(mean.G) - int64(cm.G)
			db := int64(mean.B) - int64(cm.B)
			dist := dr*dr + dg*dg + db*db
			if bestDist < 0 || dist < bestDist {
				bestDist, best = dist, i
			}
		}
		n.chosenIdx = best
		sums[best][0] += n.sumR
		sums[best][1] += n.sumG
		sums[best][2] += n.sumB
		counts[best] += n.count
	}

	for i := range entries {
		c := counts[i]
		if c == 0 {
			continue
		}
		entries[i] = Entry{
			R: uint8((sums[i][0] + c/2) / c),
			G: uint8((sums[i][1] + c/2) / c),
			B: uint8((sums[i][2] + c/2) / c),
		}
	}
	return entries
}

// Index resolves an RGB sample to its palette entry index after Finalize.
// Colors never Inserted fall back to a brute-force search for the nearest
// Inserted node (chosen or merged) and resolve to that node's entry.
func (q *Qstate) Index(r, g, b uint8) int {
	r99, g99, b99 := to99(r), to99(g), to99(b)
	coarseIdx, fineIdx := decadeIndex(r99, g99, b99)
	if oct := q.coarse[coarseIdx]; oct != nil {
		if fn := &oct[fineIdx]; fn.count > 0 {
			return fn.chosenIdx
		}
	}
	best, bestDist := 0, int64(-1)
	for _, n := range q.active {
		if n.chosenIdx < 0 {
			continue
		}
		cm := n.mean()
		dr := int64(r99) - int64(cm.R)
		dg := int64(g99) - int64(cm.G)
		db := int64(b99) - int64(cm.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist, best = dist, n.chosenIdx
		}
	}
	return best
}

func sortByCountDesc(nodes []*fineNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].count > nodes[j].count })
}
