package viewer

import (
	"testing"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/game"
)

// block fills an x*y*z box at the origin.
func block(w, h, d int) game.Tick {
	var t game.Tick
	for y := range h {
		for z := range d {
			for x := range w {
				t.Added = append(t.Added, game.VoxelAdd{X: x, Y: y, Z: z, Form: components.Hemispherical})
			}
		}
	}
	return t
}

func TestExposedHidesInterior(t *testing.T) {
	sc := game.NewScene()
	sc.Apply(block(3, 3, 3))

	got := Exposed(sc, 20)
	// The core and the bottom centre (floored) are hidden.
	if len(got) != 25 {
		t.Fatalf("exposed %d voxels of a 3x3x3 block, want 25", len(got))
	}
	for _, sv := range got {
		if sv.X == 1 && sv.Z == 1 && sv.Y < 2 {
			t.Errorf("hidden voxel %+v reported exposed", sv)
		}
	}
}

func TestExposedFloorIsClosed(t *testing.T) {
	sc := game.NewScene()
	// A two-layer slab spanning a 4-wide world: wrapping closes every side,
	// so only the top layer is open.
	sc.Apply(block(4, 2, 4))

	got := Exposed(sc, 4)
	for _, sv := range got {
		if sv.Y == 0 {
			t.Fatalf("bottom layer voxel %+v exposed under a full layer", sv)
		}
	}
	if len(got) != 16 {
		t.Errorf("exposed = %d, want the 16 top voxels", len(got))
	}
}

func TestExposedAfterReclaim(t *testing.T) {
	sc := game.NewScene()
	sc.Apply(block(3, 3, 3))
	sc.Apply(game.Tick{Tick: 1, Reclaimed: []game.Voxel{{X: 1, Y: 2, Z: 1}}})

	found := false
	for _, sv := range Exposed(sc, 20) {
		if sv.X == 1 && sv.Y == 1 && sv.Z == 1 {
			found = true
		}
	}
	if !found {
		t.Error("core voxel not exposed after the voxel above was reclaimed")
	}
}
