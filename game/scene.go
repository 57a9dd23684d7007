package game

import (
	"sort"

	"github.com/pthm-cable/reef/components"
)

// SceneVoxel is one visible voxel of a mirrored scene.
type SceneVoxel struct {
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
	Z    int                   `json:"z"`
	Form components.GrowthForm `json:"form"`
	Dead bool                  `json:"dead"`
}

// Scene mirrors the reef's non-barren voxels from tick diffs alone.
// Renderers keep one instead of reading the simulator.
type Scene struct {
	Tick   int
	voxels map[Voxel]SceneVoxel
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{voxels: make(map[Voxel]SceneVoxel)}
}

// Apply folds one tick's diff into the scene.
func (sc *Scene) Apply(t Tick) {
	for _, a := range t.Added {
		sc.voxels[a.Voxel()] = SceneVoxel{X: a.X, Y: a.Y, Z: a.Z, Form: a.Form}
	}
	for _, v := range t.Died {
		sv, ok := sc.voxels[v]
		if !ok {
			sv = SceneVoxel{X: v.X, Y: v.Y, Z: v.Z}
		}
		sv.Dead = true
		sc.voxels[v] = sv
	}
	for _, v := range t.Reclaimed {
		delete(sc.voxels, v)
	}
	sc.Tick = t.Tick
}

// Len returns the number of visible voxels.
func (sc *Scene) Len() int {
	return len(sc.voxels)
}

// At returns the voxel at v, if it is occupied.
func (sc *Scene) At(v Voxel) (SceneVoxel, bool) {
	sv, ok := sc.voxels[v]
	return sv, ok
}

// Voxels returns the visible voxels ordered by y, z, x.
func (sc *Scene) Voxels() []SceneVoxel {
	out := make([]SceneVoxel, 0, len(sc.voxels))
	for _, sv := range sc.voxels {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out
}

// Each calls fn for every visible voxel in no particular order.
func (sc *Scene) Each(fn func(SceneVoxel)) {
	for _, sv := range sc.voxels {
		fn(sv)
	}
}
