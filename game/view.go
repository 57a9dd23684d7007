package game

import (
	"sort"

	"github.com/pthm-cable/reef/components"
)

// View is a read-only window onto the simulator's world.
type View struct {
	s *Simulator
}

// View returns a read-only view of the current world.
func (s *Simulator) View() View {
	return View{s: s}
}

// Size returns the world side length.
func (v View) Size() int { return v.s.grid.N }

// Tags returns the flat cell array indexed (y*N+z)*N+x. Callers must not modify it.
func (v View) Tags() []int32 { return v.s.grid.Cells() }

// At returns the tag of a voxel: 0 barren, -1 dead, otherwise the owning colony id.
func (v View) At(c components.Coord) int32 { return v.s.grid.At(c) }

// Light returns the light level at a voxel.
func (v View) Light(c components.Coord) float64 {
	return v.s.light.At(v.s.grid, c)
}

// Uptake returns the light absorbed at a voxel, zero unless it is living tissue.
func (v View) Uptake(c components.Coord) float64 {
	return v.s.light.Uptake[v.s.grid.Index(v.s.grid.Normalize(c))]
}

// FormOf returns the form of a live colony.
func (v View) FormOf(id int32) (components.GrowthForm, bool) {
	if id <= 0 {
		return 0, false
	}
	e, ok := v.s.live[uint32(id)]
	if !ok {
		return 0, false
	}
	col, _, _, _, _ := v.s.colonyMapper.Get(e)
	return col.Form, true
}

// ColonyCounts returns the number of live and dead standing colonies.
func (v View) ColonyCounts() (live, dead int) {
	return len(v.s.liveIDs), len(v.s.dead)
}

// ColonyView is a read-only snapshot of one colony.
type ColonyView struct {
	ID          uint32                `json:"id"`
	Form        components.GrowthForm `json:"form"`
	Origin      components.Coord      `json:"origin"`
	Cells       int                   `json:"cells"`
	Footprint   int                   `json:"footprint"` // plan-view columns covered
	Height      int                   `json:"height"`
	ShapeFactor float64               `json:"shape_factor"`
	Resources   float64               `json:"resources"`
	Cap         float64               `json:"cap"`
	Age         int                   `json:"age"`
	BornTick    int                   `json:"born"`
	State       components.LifeState  `json:"state"`
	Cause       components.DeathCause `json:"cause"`
	DiedTick    int                   `json:"died"`
}

// Colonies returns snapshots of every colony still in the world, live and
// dead standing, ordered by id.
func (s *Simulator) Colonies() []ColonyView {
	var out []ColonyView
	query := s.colonyFilter.Query()
	for query.Next() {
		col, res, tissue, fate, _ := query.Get()
		out = append(out, snapshot(col, res, tissue, fate))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func snapshot(col *components.Colony, res *components.Reserve, tissue *components.Tissue, fate *components.Fate) ColonyView {
	return ColonyView{
		ID:          col.ID,
		Form:        col.Form,
		Origin:      col.Origin,
		Cells:       tissue.Len(),
		Footprint:   tissue.PlanArea(),
		Height:      tissue.Height(),
		ShapeFactor: tissue.ShapeFactor(),
		Resources:   res.Resources,
		Cap:         res.Cap,
		Age:         col.Age,
		BornTick:    col.BornTick,
		State:       fate.State,
		Cause:       fate.Cause,
		DiedTick:    fate.DiedTick,
	}
}

// Colony returns the snapshot of one colony still in the world.
func (s *Simulator) Colony(id uint32) (ColonyView, bool) {
	for _, c := range s.Colonies() {
		if c.ID == id {
			return c, true
		}
	}
	return ColonyView{}, false
}
