package game

import (
	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/telemetry"
)

// Voxel is a world coordinate in a tick diff.
type Voxel struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// VoxelAdd is a voxel newly claimed by a colony of the given form.
type VoxelAdd struct {
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
	Z    int                   `json:"z"`
	Form components.GrowthForm `json:"form"`
}

// Voxel returns the coordinate without the form.
func (a VoxelAdd) Voxel() Voxel {
	return Voxel{X: a.X, Y: a.Y, Z: a.Z}
}

// Tick is everything that changed in one Step. Applying Added, then Died,
// then Reclaimed to the previous scene yields the current one.
type Tick struct {
	Tick        int               `json:"tick"`
	Added       []VoxelAdd        `json:"added"`
	Died        []Voxel           `json:"died"`
	Reclaimed   []Voxel           `json:"reclaimed"`
	Events      []telemetry.Event `json:"-"`
	Log         []string          `json:"log"`
	Metrics     telemetry.Metrics `json:"metrics"`
	LightPasses int               `json:"light_passes"`
	Residual    float64           `json:"light_residual"`
}

func voxelOf(c components.Coord) Voxel {
	return Voxel{X: c.X, Y: c.Y, Z: c.Z}
}

func (t *Tick) add(c components.Coord, form components.GrowthForm) {
	t.Added = append(t.Added, VoxelAdd{X: c.X, Y: c.Y, Z: c.Z, Form: form})
}

func (t *Tick) die(c components.Coord) {
	t.Died = append(t.Died, voxelOf(c))
}

func (t *Tick) reclaim(c components.Coord) {
	t.Reclaimed = append(t.Reclaimed, voxelOf(c))
}
