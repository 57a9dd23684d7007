package systems

import (
	"testing"

	"github.com/pthm-cable/reef/components"
)

func TestIndexRoundtrip(t *testing.T) {
	g := NewGrid(7)
	for idx := 0; idx < g.Len(); idx++ {
		if got := g.Index(g.CoordOf(idx)); got != idx {
			t.Fatalf("Index(CoordOf(%d)) = %d", idx, got)
		}
	}
}

func TestNeighborsWrapHorizontallyClampVertically(t *testing.T) {
	g := NewGrid(10)

	nb := g.Neighbors6(components.Coord{X: 0, Y: 0, Z: 9})
	want := [6]components.Coord{
		{X: 0, Y: 1, Z: 9}, // up
		{X: 0, Y: 0, Z: 9}, // down clamps onto itself
		{X: 9, Y: 0, Z: 9}, // x-1 wraps
		{X: 1, Y: 0, Z: 9},
		{X: 0, Y: 0, Z: 8},
		{X: 0, Y: 0, Z: 0}, // z+1 wraps
	}
	if nb != want {
		t.Errorf("Neighbors6 = %v, want %v", nb, want)
	}

	top := g.Neighbors6(components.Coord{X: 4, Y: 9, Z: 4})
	if top[0] != (components.Coord{X: 4, Y: 9, Z: 4}) {
		t.Errorf("expected ceiling clamp, got %v", top[0])
	}
}

func TestDeltaShortestWay(t *testing.T) {
	g := NewGrid(10)
	tests := []struct {
		origin, c components.Coord
		want      components.Offset
	}{
		{components.Coord{X: 5, Z: 5}, components.Coord{X: 6, Y: 2, Z: 4}, components.Offset{DX: 1, DY: 2, DZ: -1}},
		{components.Coord{X: 0, Z: 0}, components.Coord{X: 9, Z: 1}, components.Offset{DX: -1, DZ: 1}},
		{components.Coord{X: 9, Z: 9}, components.Coord{X: 0, Z: 0}, components.Offset{DX: 1, DZ: 1}},
		{components.Coord{X: 0, Z: 0}, components.Coord{X: 5, Z: 0}, components.Offset{DX: -5}},
	}
	for _, tt := range tests {
		if got := g.Delta(tt.origin, tt.c); got != tt.want {
			t.Errorf("Delta(%v, %v) = %v, want %v", tt.origin, tt.c, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	g := NewGrid(10)
	got := g.Normalize(components.Coord{X: -1, Y: 12, Z: 10})
	want := components.Coord{X: 9, Y: 9, Z: 0}
	if got != want {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}
