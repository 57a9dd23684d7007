// Package systems holds the voxel world, the light solver, and the growth
// frontier used by the reef engine.
package systems

import (
	"github.com/pthm-cable/reef/components"
)

// Cell tags. Positive tags are living colony ids.
const (
	Barren  int32 = 0
	DeadTag int32 = -1
)

// Grid is a cubic voxel world of side N, stored flat as (y*N+z)*N+x.
// The horizontal axes (X, Z) wrap around; the vertical axis (Y) clamps.
type Grid struct {
	N     int
	cells []int32
}

// NewGrid allocates an all-barren grid of side n.
func NewGrid(n int) *Grid {
	if n <= 0 {
		n = 1
	}
	return &Grid{N: n, cells: make([]int32, n*n*n)}
}

// Cells exposes the backing slice. Callers outside the engine must treat it as read-only.
func (g *Grid) Cells() []int32 { return g.cells }

// Len returns the number of voxels.
func (g *Grid) Len() int { return len(g.cells) }

// Index returns the flat index of an in-range coordinate.
func (g *Grid) Index(c components.Coord) int {
	return (c.Y*g.N+c.Z)*g.N + c.X
}

// CoordOf is the inverse of Index.
func (g *Grid) CoordOf(idx int) components.Coord {
	x := idx % g.N
	rest := idx / g.N
	return components.Coord{X: x, Y: rest / g.N, Z: rest % g.N}
}

// At returns the tag at c. c must be in range.
func (g *Grid) At(c components.Coord) int32 {
	return g.cells[g.Index(c)]
}

// Set writes the tag at c. c must be in range.
func (g *Grid) Set(c components.Coord, tag int32) {
	g.cells[g.Index(c)] = tag
}

// AtIndex returns the tag at a flat index.
func (g *Grid) AtIndex(idx int) int32 { return g.cells[idx] }

// SetIndex writes the tag at a flat index.
func (g *Grid) SetIndex(idx int, tag int32) { g.cells[idx] = tag }

// wrap maps v onto [0, n).
func wrap(v, n int) int {
	return (v%n + n) % n
}

// clamp limits v to [0, n-1].
func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Normalize wraps the horizontal axes and clamps the vertical one.
func (g *Grid) Normalize(c components.Coord) components.Coord {
	return components.Coord{X: wrap(c.X, g.N), Y: clamp(c.Y, g.N), Z: wrap(c.Z, g.N)}
}

// Neighbors6 returns the six axis neighbours of c. A vertical neighbour past
// the floor or ceiling clamps back onto c itself.
func (g *Grid) Neighbors6(c components.Coord) [6]components.Coord {
	n := g.N
	return [6]components.Coord{
		{X: c.X, Y: clamp(c.Y+1, n), Z: c.Z},
		{X: c.X, Y: clamp(c.Y-1, n), Z: c.Z},
		{X: wrap(c.X-1, n), Y: c.Y, Z: c.Z},
		{X: wrap(c.X+1, n), Y: c.Y, Z: c.Z},
		{X: c.X, Y: c.Y, Z: wrap(c.Z-1, n)},
		{X: c.X, Y: c.Y, Z: wrap(c.Z+1, n)},
	}
}

// Delta returns the offset of c from origin, taking the shortest way around
// the horizontal axes so that dx, dz fall in [-N/2, N/2).
func (g *Grid) Delta(origin, c components.Coord) components.Offset {
	return components.Offset{
		DX: shortest(c.X-origin.X, g.N),
		DY: c.Y - origin.Y,
		DZ: shortest(c.Z-origin.Z, g.N),
	}
}

func shortest(d, n int) int {
	d = wrap(d, n)
	if d >= n-n/2 {
		d -= n
	}
	return d
}

// Count returns how many voxels carry tag.
func (g *Grid) Count(tag int32) int {
	count := 0
	for _, v := range g.cells {
		if v == tag {
			count++
		}
	}
	return count
}
