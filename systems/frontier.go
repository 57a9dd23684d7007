package systems

import (
	"sort"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/morphology"
)

// Candidate is a barren frontier voxel with its growth score.
type Candidate struct {
	Coord components.Coord
	Index int
	Score float64
}

// Frontier collects growth candidates around a colony. It keeps scratch
// buffers between calls; one Frontier serves all colonies in a tick.
type Frontier struct {
	seen map[int]struct{}
	buf  []Candidate
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[int]struct{})}
}

// Collect returns the deduplicated barren six-neighbours of cells, scored
// against the form's template relative to origin. Candidates outside the
// template (score <= 0) are dropped. The returned slice is reused by the
// next call.
func (f *Frontier) Collect(g *Grid, lib *morphology.Library, form components.GrowthForm, origin components.Coord, cells []components.Coord) []Candidate {
	clear(f.seen)
	f.buf = f.buf[:0]

	for _, c := range cells {
		for _, nb := range g.Neighbors6(c) {
			idx := g.Index(nb)
			if _, dup := f.seen[idx]; dup {
				continue
			}
			f.seen[idx] = struct{}{}
			if g.AtIndex(idx) != Barren {
				continue
			}
			score := lib.PriorityOf(form, g.Delta(origin, nb))
			if score <= 0 {
				continue
			}
			f.buf = append(f.buf, Candidate{Coord: nb, Index: idx, Score: score})
		}
	}
	return f.buf
}

// SelectTop keeps all candidates when they fit the budget, otherwise the
// budget highest-scoring ones. Ties break on flat index so selection is
// deterministic. The input slice is reordered.
func SelectTop(cands []Candidate, budget int) []Candidate {
	if budget <= 0 {
		return cands[:0]
	}
	if len(cands) <= budget {
		return cands
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Index < cands[j].Index
	})
	return cands[:budget]
}
