package systems

import (
	"testing"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/morphology"
)

func TestFrontierEncrusting(t *testing.T) {
	g := NewGrid(10)
	lib, err := morphology.Build(g.N, morphology.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	origin := components.Coord{X: 5, Y: 0, Z: 5}
	g.Set(origin, 1)

	f := NewFrontier()
	cands := f.Collect(g, lib, components.Encrusting, origin, []components.Coord{origin})
	if len(cands) != 4 {
		t.Fatalf("expected 4 horizontal candidates, got %d", len(cands))
	}
	for _, c := range cands {
		if c.Coord.Y != 0 {
			t.Errorf("encrusting candidate off the floor: %v", c.Coord)
		}
		if c.Score <= 0 {
			t.Errorf("candidate %v has non-positive score", c.Coord)
		}
	}
}

func TestFrontierSkipsOccupied(t *testing.T) {
	g := NewGrid(10)
	lib, err := morphology.Build(g.N, morphology.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	origin := components.Coord{X: 5, Y: 0, Z: 5}
	g.Set(origin, 1)
	g.Set(components.Coord{X: 6, Y: 0, Z: 5}, 2)
	g.Set(components.Coord{X: 4, Y: 0, Z: 5}, DeadTag)

	f := NewFrontier()
	cands := f.Collect(g, lib, components.Hemispherical, origin, []components.Coord{origin})
	// up, z-1, z+1 remain
	if len(cands) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(cands))
	}
}

func TestSelectTop(t *testing.T) {
	cands := []Candidate{
		{Index: 4, Score: 1},
		{Index: 2, Score: 5},
		{Index: 3, Score: 5},
		{Index: 1, Score: 3},
	}

	got := SelectTop(append([]Candidate(nil), cands...), 2)
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 3 {
		t.Errorf("SelectTop = %+v", got)
	}

	all := SelectTop(append([]Candidate(nil), cands...), 10)
	if len(all) != 4 {
		t.Errorf("expected all candidates within budget, got %d", len(all))
	}

	if len(SelectTop(cands, 0)) != 0 {
		t.Error("zero budget should select nothing")
	}
}
