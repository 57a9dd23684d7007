package game

import (
	"slices"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
)

// seedOrder is the form rotation of the initial seeding.
var seedOrder = [components.NumForms]components.GrowthForm{
	components.Branching,
	components.Corymbose,
	components.Encrusting,
	components.Hemispherical,
	components.Tabular,
}

// seedInitial settles the starting colonies, cycling through seedOrder.
func (s *Simulator) seedInitial() {
	i := 0
	s.recruit(s.cfg.Recruitment.Initial, func() components.GrowthForm {
		f := seedOrder[i%len(seedOrder)]
		i++
		return f
	})
}

// recruit makes attempts settlement tries at random base voxels. Tries that
// land on occupied ground are lost. Returns the number of colonies settled.
func (s *Simulator) recruit(attempts int, form func() components.GrowthForm) int {
	n := s.grid.N
	settled := 0
	for a := 0; a < attempts; a++ {
		c := components.Coord{X: s.rng.Intn(n), Y: 0, Z: s.rng.Intn(n)}
		f := form() // drawn on every try, hit or miss
		if s.grid.At(c) != systems.Barren {
			continue
		}
		s.spawnColony(c, f)
		settled++
	}
	if settled > 0 {
		s.light.MarkDirty()
		s.emit(telemetry.NewRecruitEvent(s.tick, settled))
	}
	return settled
}

// drawForm picks a recruit's form: uniform, or weighted by the live cells
// of each form when recruitment.random_forms is off.
func (s *Simulator) drawForm() components.GrowthForm {
	forms := components.AllForms()
	if s.cfg.Recruitment.RandomForms {
		return forms[s.rng.Intn(len(forms))]
	}

	var weights [components.NumForms]float64
	for _, id := range s.liveIDs {
		col, _, tissue, _, _ := s.colonyMapper.Get(s.live[id])
		weights[col.Form] += float64(tissue.Len())
	}
	total := floats.Sum(weights[:])
	if total == 0 {
		return forms[s.rng.Intn(len(forms))]
	}

	var cum [components.NumForms]float64
	floats.CumSum(cum[:], weights[:])
	u := s.rng.Float64() * total
	k := sort.Search(len(cum), func(i int) bool { return cum[i] > u })
	return forms[min(k, len(forms)-1)]
}

// spawnColony creates a colony owning the single voxel c.
func (s *Simulator) spawnColony(c components.Coord, form components.GrowthForm) ecs.Entity {
	fc := s.cfg.Forms.For(form)

	id := s.nextID
	s.nextID++

	col := components.Colony{ID: id, Form: form, Origin: c, BornTick: s.tick}
	res := components.Reserve{Cap: fc.ResourceCap}
	res.Add(s.cfg.Recruitment.StartResources)
	tissue := components.NewTissue(c.Y)
	idx := s.grid.Index(c)
	tissue.Add(c, idx)
	fate := components.Fate{State: components.StateGrowing, DiedTick: -1}
	mort := components.Mortality{Rate: fc.Mortality}

	e := s.colonyMapper.NewEntity(&col, &res, &tissue, &fate, &mort)
	s.grid.SetIndex(idx, int32(id))
	s.live[id] = e
	s.liveIDs = append(s.liveIDs, id)
	s.lifetimes.Register(id, form, s.tick)
	s.pend.add(c, form)
	return e
}

// kill marks a live colony dead: its cells become dead standing tissue.
func (s *Simulator) kill(e ecs.Entity, cause components.DeathCause) {
	col, _, tissue, fate, _ := s.colonyMapper.Get(e)
	if !fate.Alive() {
		return
	}

	for _, c := range tissue.Cells {
		s.grid.Set(c, systems.DeadTag)
		s.pend.die(c)
	}
	fate.State = components.StateDead
	fate.Cause = cause
	fate.DiedTick = s.tick

	delete(s.live, col.ID)
	if i, ok := slices.BinarySearch(s.liveIDs, col.ID); ok {
		s.liveIDs = slices.Delete(s.liveIDs, i, i+1)
	}
	s.dead = append(s.dead, e)
	s.deaths[cause]++
	s.light.MarkDirty()

	s.emit(telemetry.NewDeathEvent(s.tick, col.ID, col.Form, cause, tissue.Len()))
	if rec, ok := s.lifetimes.Finish(col.ID, s.tick, cause, tissue.Len(), col.Age); ok {
		if err := s.output.WriteLifetime(rec); err != nil {
			s.logger.Error("failed to write lifetime", "error", err)
		}
	}
}

// reclaim returns a dead colony's cells to barren ground and removes it.
// It returns the colony's final snapshot.
func (s *Simulator) reclaim(e ecs.Entity) ColonyView {
	col, res, tissue, fate, _ := s.colonyMapper.Get(e)
	for _, c := range tissue.Cells {
		s.grid.Set(c, systems.Barren)
		s.pend.reclaim(c)
	}
	fate.State = components.StateReclaimed
	last := snapshot(col, res, tissue, fate)
	s.world.RemoveEntity(e)
	return last
}

// backgroundMortality kills each live colony with its yearly probability.
func (s *Simulator) backgroundMortality() {
	var doomed []ecs.Entity
	for _, id := range s.liveIDs {
		e := s.live[id]
		_, _, _, _, mort := s.colonyMapper.Get(e)
		if s.rng.Float64() < mort.Rate {
			doomed = append(doomed, e)
		}
	}
	for _, e := range doomed {
		s.kill(e, components.CauseMortality)
	}
}

// disturb applies one disturbance regime if it is scheduled this tick.
// The drawn magnitude is a dislodgement threshold: colonies whose shape
// factor exceeds it die unless their survival roll succeeds.
func (s *Simulator) disturb(severity string, sc config.SeverityConfig) {
	if !sc.Schedule().Fires(s.tick) {
		return
	}
	magnitude := sc.Min + s.rng.Float64()*(sc.Max-sc.Min)
	kills := s.DisturbWith(magnitude)
	s.emit(telemetry.NewDisturbanceEvent(s.tick, severity, magnitude, kills))
}

// DisturbWith kills every live colony whose shape factor is strictly above
// magnitude and fails the survival roll. Returns the number killed.
func (s *Simulator) DisturbWith(magnitude float64) int {
	survival := s.cfg.Disturbance.SurvivalChance
	var doomed []ecs.Entity
	for _, id := range s.liveIDs {
		e := s.live[id]
		_, _, tissue, _, _ := s.colonyMapper.Get(e)
		if tissue.ShapeFactor() <= magnitude {
			continue
		}
		if survival > 0 && s.rng.Float64() < survival {
			continue
		}
		doomed = append(doomed, e)
	}
	for _, e := range doomed {
		s.kill(e, components.CauseDisturbance)
	}
	return len(doomed)
}

// sediment reclaims a random non-empty subset of the dead colonies.
// With no dead colonies it does nothing, and leaves the light field alone.
func (s *Simulator) sediment() int {
	if len(s.dead) == 0 {
		return 0
	}
	k := 1 + s.rng.Intn(len(s.dead))
	s.rng.Shuffle(len(s.dead), func(i, j int) {
		s.dead[i], s.dead[j] = s.dead[j], s.dead[i]
	})
	for _, e := range s.dead[:k] {
		last := s.reclaim(e)
		s.logger.Debug("colony reclaimed", "colony", last.ID, "form", last.Form.String(), "state", last.State.String())
	}
	s.dead = slices.Delete(s.dead, 0, k)
	s.light.MarkDirty()
	s.emit(telemetry.NewSedimentationEvent(s.tick, k))
	return k
}

// emit records an event in the pending diff, the log ring, and the engine log.
func (s *Simulator) emit(e telemetry.Event) {
	line := e.String()
	s.pend.Events = append(s.pend.Events, e)
	s.pend.Log = append(s.pend.Log, line)
	s.eventLog.Add(line)
	s.collector.Record(e)
	s.logger.Info("event", "event", e)
}
