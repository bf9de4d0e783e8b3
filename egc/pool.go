// Package egc implements the extended-grapheme-cluster pool: a per-session
// interner that lets a Cell.Ord reference a multi-codepoint cluster (emoji
// ZWJ sequences, combining accents) via a single 32-bit index instead of
// requiring cells to carry variable-length text.
package egc

import (
	"github.com/rivo/uniseg"

	"termcore/cellgrid"
)

// Pool interns grapheme clusters for one compositor instance. It replaces
// the process-global string table of the original design: ownership is
// explicit and the pool lives exactly as long as its FrameBuffer.
type Pool struct {
	strs  []string
	index map[string]uint32
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{index: make(map[string]uint32)}
}

// Encode returns the Ord value for a single grapheme cluster: the bare
// rune if the cluster is one codepoint, or an interned EGCBase-tagged index
// otherwise.
func (p *Pool) Encode(cluster string) uint32 {
	rs := []rune(cluster)
	if len(rs) == 1 {
		return uint32(rs[0])
	}
	if idx, ok := p.index[cluster]; ok {
		return cellgrid.EGCBase | idx
	}
	idx := uint32(len(p.strs))
	p.strs = append(p.strs, cluster)
	p.index[cluster] = idx
	return cellgrid.EGCBase | idx
}

// Lookup returns the text an Ord value refers to: the decoded rune for a
// plain codepoint, or the interned cluster string for an EGCBase-tagged
// index.
func (p *Pool) Lookup(ord uint32) string {
	if ord&cellgrid.EGCBase == 0 {
		return string(rune(ord))
	}
	idx := ord &^ cellgrid.EGCBase
	if int(idx) < len(p.strs) {
		return p.strs[idx]
	}
	return ""
}

// Segments splits text into grapheme clusters (so multi-rune emoji and
// combining sequences become one cell each) and encodes every cluster,
// returning one Ord per cluster.
func (p *Pool) Segments(text string) []uint32 {
	var out []uint32
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, p.Encode(g.Str()))
	}
	return out
}

// Len reports how many distinct multi-rune clusters are interned.
func (p *Pool) Len() int { return len(p.strs) }
