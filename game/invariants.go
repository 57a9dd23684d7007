package game

import (
	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/systems"
)

// CheckInvariants verifies that grid tags and colony tissue agree in both
// directions, that reserves are within bounds, and that dead colonies own
// only dead cells. It scans the whole world.
func (s *Simulator) CheckInvariants() error {
	owned := 0
	for _, id := range s.liveIDs {
		col, res, tissue, fate, _ := s.colonyMapper.Get(s.live[id])
		if !fate.Alive() {
			return s.fault("colony %d indexed live in state %s", id, fate.State)
		}
		if res.Resources < 0 || res.Resources > res.Cap {
			return s.fault("colony %d resources %v outside [0, %v]", id, res.Resources, res.Cap)
		}
		if len(tissue.Index) != tissue.Len() {
			return s.fault("colony %d index holds %d of %d cells", id, len(tissue.Index), tissue.Len())
		}
		if !tissue.Has(s.grid.Index(col.Origin)) {
			return s.fault("colony %d lost its origin %v", id, col.Origin)
		}
		for _, c := range tissue.Cells {
			if tag := s.grid.At(c); tag != int32(id) {
				return s.fault("colony %d owns %v tagged %d", id, c, tag)
			}
		}
		owned += tissue.Len()
	}

	for _, e := range s.dead {
		col, _, tissue, fate, _ := s.colonyMapper.Get(e)
		if fate.State != components.StateDead {
			return s.fault("colony %d on dead list in state %s", col.ID, fate.State)
		}
		for _, c := range tissue.Cells {
			if tag := s.grid.At(c); tag != systems.DeadTag {
				return s.fault("dead colony %d cell %v tagged %d", col.ID, c, tag)
			}
		}
	}

	tagged := 0
	for idx, tag := range s.grid.Cells() {
		if tag <= 0 {
			continue
		}
		tagged++
		e, ok := s.live[uint32(tag)]
		if !ok {
			return s.fault("cell %v tagged by unknown colony %d", s.grid.CoordOf(idx), tag)
		}
		_, _, tissue, _, _ := s.colonyMapper.Get(e)
		if !tissue.Has(idx) {
			return s.fault("cell %v tagged %d but not in its tissue", s.grid.CoordOf(idx), tag)
		}
	}
	if tagged != owned {
		return s.fault("%d tagged cells, %d owned", tagged, owned)
	}
	return nil
}
