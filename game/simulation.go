package game

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
)

// Step advances the reef by one tick and returns what changed.
// The error is non-nil only for invariant violations with checks enabled;
// the world should not be stepped further after one.
func (s *Simulator) Step() (Tick, error) {
	s.perf.StartTick()
	s.pend.Tick = s.tick

	s.perf.StartPhase(telemetry.PhaseLight)
	s.pend.LightPasses, s.pend.Residual = s.light.Update(s.grid)

	s.perf.StartPhase(telemetry.PhaseResources)
	starving := s.accrueResources()

	s.perf.StartPhase(telemetry.PhaseDeath)
	for _, e := range starving {
		s.kill(e, components.CauseStarvation)
	}

	s.perf.StartPhase(telemetry.PhaseGrowth)
	if err := s.grow(); err != nil {
		s.perf.EndTick()
		return Tick{}, err
	}

	s.perf.StartPhase(telemetry.PhaseRecruitment)
	if s.cfg.Recruitment.Schedule().Fires(s.tick) {
		s.recruit(s.cfg.Recruitment.Count, s.drawForm)
	}

	s.perf.StartPhase(telemetry.PhaseMortality)
	if s.tick > 0 && s.tick%s.cfg.Run.TicksPerYear == 0 {
		s.backgroundMortality()
	}

	s.perf.StartPhase(telemetry.PhaseDisturbance)
	s.disturb("low", s.cfg.Disturbance.Low)
	s.disturb("high", s.cfg.Disturbance.High)

	s.perf.StartPhase(telemetry.PhaseSedimentation)
	if s.cfg.Sedimentation.Schedule().Fires(s.tick) {
		s.sediment()
	}

	s.perf.StartPhase(telemetry.PhaseMetrics)
	s.lastMetrics = telemetry.Aggregate(s.tick, s.View())
	s.pend.Metrics = s.lastMetrics
	if s.cfg.Debug.CheckInvariants {
		if err := s.CheckInvariants(); err != nil {
			s.perf.EndTick()
			return Tick{}, err
		}
	}
	s.perf.EndTick()

	out := s.pend
	s.pend = Tick{}
	s.tick++
	s.recordTelemetry(out)
	return out, nil
}

// accrueResources credits each live colony with its light uptake less
// maintenance and returns the colonies whose every cell is below maintenance.
func (s *Simulator) accrueResources() []ecs.Entity {
	maint := s.cfg.Energy.Maintenance
	var starving []ecs.Entity

	for _, id := range s.liveIDs {
		e := s.live[id]
		_, res, tissue, _, _ := s.colonyMapper.Get(e)

		var uptake float64
		fed := false
		for _, c := range tissue.Cells {
			u := s.light.Uptake[s.grid.Index(c)]
			uptake += u
			if u >= maint {
				fed = true
			}
		}
		res.Add(uptake - maint*float64(tissue.Len()))
		s.lifetimes.RecordUptake(id, uptake, res.Resources)

		if !fed {
			starving = append(starving, e)
		}
	}
	return starving
}

// grow lets every live colony, in random order, claim frontier voxels up to
// its whole-unit resource budget.
func (s *Simulator) grow() error {
	ids := slices.Clone(s.liveIDs)
	for _, i := range s.rng.Perm(len(ids)) {
		e := s.live[ids[i]]
		col, res, tissue, _, _ := s.colonyMapper.Get(e)

		budget := res.Budget()
		if budget < 1 {
			continue
		}
		// Every growth attempt ages the colony, even one that finds no room.
		col.Age++
		cands := s.frontier.Collect(s.grid, s.lib, col.Form, col.Origin, tissue.Cells)
		picked := systems.SelectTop(cands, budget)
		if len(picked) == 0 {
			continue
		}
		if len(picked) > budget {
			return s.fault("colony %d picked %d cells on budget %d", col.ID, len(picked), budget)
		}

		for _, c := range picked {
			if tag := s.grid.AtIndex(c.Index); tag != systems.Barren {
				return s.fault("colony %d claiming cell %v tagged %d", col.ID, c.Coord, tag)
			}
			if !tissue.Add(c.Coord, c.Index) {
				return s.fault("colony %d claiming its own cell %v", col.ID, c.Coord)
			}
			s.grid.SetIndex(c.Index, int32(col.ID))
			s.pend.add(c.Coord, col.Form)
		}
		res.Resources -= float64(len(picked))
	}
	return nil
}
