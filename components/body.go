package components

import "math"

// Tissue is the set of voxels a colony owns.
// Cells keeps claim order; Index is the membership set keyed by flat grid index.
type Tissue struct {
	Cells []Coord
	Index map[int]struct{}

	// LayerArea[h] is the number of owned cells h layers above the origin.
	LayerArea []int
	// Footprint counts owned cells per (x, z) column, the top-down projection.
	Footprint map[[2]int]int

	// Base layer occupancy: cells per row (keyed by z) and per column (keyed by x).
	baseRows map[int]int
	baseCols map[int]int
	MaxRow   int
	MaxCol   int

	originY int
}

// NewTissue creates an empty tissue rooted at the given origin layer.
func NewTissue(originY int) Tissue {
	return Tissue{
		Index:     make(map[int]struct{}),
		Footprint: make(map[[2]int]int),
		baseRows:  make(map[int]int),
		baseCols:  make(map[int]int),
		originY:   originY,
	}
}

// Len returns the number of owned cells.
func (t *Tissue) Len() int {
	return len(t.Cells)
}

// Has reports whether the flat index is owned.
func (t *Tissue) Has(idx int) bool {
	_, ok := t.Index[idx]
	return ok
}

// Add claims a cell. Returns false if it was already owned.
func (t *Tissue) Add(c Coord, idx int) bool {
	if t.Has(idx) {
		return false
	}
	t.Index[idx] = struct{}{}
	t.Cells = append(t.Cells, c)

	h := c.Y - t.originY
	for len(t.LayerArea) <= h {
		t.LayerArea = append(t.LayerArea, 0)
	}
	t.LayerArea[h]++
	t.Footprint[[2]int{c.X, c.Z}]++

	if h == 0 {
		t.baseRows[c.Z]++
		if n := t.baseRows[c.Z]; n > t.MaxRow {
			t.MaxRow = n
		}
		t.baseCols[c.X]++
		if n := t.baseCols[c.X]; n > t.MaxCol {
			t.MaxCol = n
		}
	}
	return true
}

// PlanArea returns the number of (x, z) columns the tissue covers seen from above.
func (t *Tissue) PlanArea() int {
	return len(t.Footprint)
}

// Height returns the number of layers the tissue spans above its origin.
func (t *Tissue) Height() int {
	return len(t.LayerArea)
}

// ShapeFactor returns the colony shape factor: the height-weighted
// cross-sectional area integral over the basal footprint spread.
// A flat disc scores about 1. An empty tissue scores 0.
func (t *Tissue) ShapeFactor() float64 {
	if len(t.Cells) == 0 || t.MaxRow == 0 || t.MaxCol == 0 {
		return 0
	}
	var integral float64
	for h, area := range t.LayerArea {
		integral += float64(h+1) * float64(area)
	}
	spread := math.Pi / 4 * float64(t.MaxRow) * float64(t.MaxCol)
	return integral / spread
}
