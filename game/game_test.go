package game

import (
	"errors"
	"testing"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
)

// testConfig returns a small world with invariant checks on.
func testConfig(n int) *config.Config {
	cfg := config.Default()
	cfg.World.Size = n
	cfg.World.Seed = 7
	cfg.Debug.CheckInvariants = true
	return cfg
}

// quiet turns off every stochastic process so only light, resources and
// growth run.
func quiet(cfg *config.Config) *config.Config {
	cfg.Recruitment.Initial = 0
	cfg.Recruitment.Frequency = 0
	cfg.Disturbance.Low.Frequency = 0
	cfg.Disturbance.High.Frequency = 0
	cfg.Sedimentation.Frequency = 0
	for _, f := range components.AllForms() {
		cfg.Forms.For(f).Mortality = 0
	}
	return cfg
}

func newSim(t *testing.T, cfg *config.Config) *Simulator {
	t.Helper()
	s, err := New(cfg, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func step(t *testing.T, s *Simulator) Tick {
	t.Helper()
	tick, err := s.Step()
	if err != nil {
		t.Fatalf("Step at tick %d: %v", s.CurrentTick(), err)
	}
	return tick
}

func TestEncrustingGrowsWithinTemplate(t *testing.T) {
	s := newSim(t, quiet(testConfig(10)))
	origin := components.Coord{X: 5, Y: 0, Z: 5}
	e := s.spawnColony(origin, components.Encrusting)
	_, res, _, _, _ := s.colonyMapper.Get(e)
	res.Resources = res.Cap

	step(t, s)

	cols := s.Colonies()
	if len(cols) != 1 {
		t.Fatalf("colonies = %d, want 1", len(cols))
	}
	c := cols[0]
	grown := c.Cells - 1
	if grown > int(c.Cap) {
		t.Errorf("grew %d cells on a cap of %v", grown, c.Cap)
	}
	if grown != 4 {
		t.Errorf("grew %d cells, want the 4 horizontal neighbours", grown)
	}
	if c.Resources != c.Cap-4 {
		t.Errorf("resources = %v, want %v", c.Resources, c.Cap-4)
	}

	tmpl := s.Library().Template(components.Encrusting)
	_, _, tissue, _, _ := s.colonyMapper.Get(e)
	for _, cell := range tissue.Cells {
		off := s.grid.Delta(origin, cell)
		if !tmpl.Contains(off) {
			t.Errorf("cell %v offset %v outside encrusting template", cell, off)
		}
		if cell.Y != 0 {
			t.Errorf("encrusting cell %v off the base layer", cell)
		}
	}
}

func TestNoGrowthBelowOneUnit(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Energy.Maintenance = 0
	cfg.Light.Surface = 0.5
	s := newSim(t, cfg)
	e := s.spawnColony(components.Coord{X: 2, Z: 2}, components.Hemispherical)
	_, res, _, _, _ := s.colonyMapper.Get(e)
	res.Resources = 0

	step(t, s)

	c, _ := s.Colony(1)
	if c.Cells != 1 {
		t.Errorf("colony grew to %d cells with less than one unit", c.Cells)
	}
	if c.Age != 0 {
		t.Errorf("age = %d without a growth attempt, want 0", c.Age)
	}
}

func TestBlockedColonyStillAges(t *testing.T) {
	s := newSim(t, quiet(testConfig(10)))
	origin := components.Coord{X: 5, Y: 0, Z: 5}
	e := s.spawnColony(origin, components.Encrusting)
	_, res, _, _, _ := s.colonyMapper.Get(e)
	res.Resources = 3

	// Wall the colony in with dead standing structure.
	for _, nb := range s.grid.Neighbors6(origin) {
		if nb != origin {
			s.grid.Set(nb, systems.DeadTag)
		}
	}

	for range 3 {
		step(t, s)
	}
	c, _ := s.Colony(1)
	if c.Cells != 1 || c.Footprint != 1 {
		t.Fatalf("walled colony grew to %d cells over %d columns", c.Cells, c.Footprint)
	}
	if c.Age != 3 {
		t.Errorf("age = %d after three growth attempts with no room, want 3", c.Age)
	}
}

func TestStarvation(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Recruitment.Initial = 5
	cfg.Energy.Maintenance = cfg.Light.Surface * 2
	s := newSim(t, cfg)

	seeded := len(s.liveIDs)
	if seeded == 0 {
		t.Fatal("no colonies seeded")
	}

	tick := step(t, s)

	if len(s.liveIDs) != 0 {
		t.Errorf("%d colonies survived maintenance above surface light", len(s.liveIDs))
	}
	if got := s.Deaths(components.CauseStarvation); got != seeded {
		t.Errorf("starvation deaths = %d, want %d", got, seeded)
	}
	if len(tick.Died) != seeded {
		t.Errorf("Died = %d voxels, want %d", len(tick.Died), seeded)
	}
	for _, v := range tick.Died {
		if tag := s.grid.At(components.Coord{X: v.X, Y: v.Y, Z: v.Z}); tag != systems.DeadTag {
			t.Errorf("died voxel %v tagged %d", v, tag)
		}
	}
	if tick.Metrics.LiveCells != 0 || tick.Metrics.DeadCells != seeded {
		t.Errorf("metrics live=%d dead=%d", tick.Metrics.LiveCells, tick.Metrics.DeadCells)
	}
}

func TestDisturbanceZeroMagnitudeKillsAll(t *testing.T) {
	cfg := quiet(testConfig(12))
	cfg.Recruitment.Initial = 8
	cfg.Disturbance.SurvivalChance = 0
	s := newSim(t, cfg)
	for i := 0; i < 5; i++ {
		step(t, s)
	}
	live := len(s.liveIDs)
	if live == 0 {
		t.Fatal("no live colonies before disturbance")
	}

	if killed := s.DisturbWith(0); killed != live {
		t.Errorf("killed %d of %d colonies at magnitude 0", killed, live)
	}
	if len(s.liveIDs) != 0 {
		t.Errorf("%d colonies survived", len(s.liveIDs))
	}
	if err := s.CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestDisturbanceTiesSurvive(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Disturbance.SurvivalChance = 0
	s := newSim(t, cfg)
	s.spawnColony(components.Coord{X: 3, Z: 3}, components.Encrusting)

	c, _ := s.Colony(1)
	if killed := s.DisturbWith(c.ShapeFactor); killed != 0 {
		t.Errorf("colony at exactly the threshold was killed")
	}
	if killed := s.DisturbWith(c.ShapeFactor - 1e-9); killed != 1 {
		t.Errorf("colony above the threshold survived")
	}
	if s.Deaths(components.CauseDisturbance) != 1 {
		t.Errorf("disturbance deaths = %d", s.Deaths(components.CauseDisturbance))
	}
}

func TestDisturbanceSurvivalAlwaysSaves(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Disturbance.SurvivalChance = 1
	s := newSim(t, cfg)
	s.spawnColony(components.Coord{X: 3, Z: 3}, components.Encrusting)
	if killed := s.DisturbWith(0); killed != 0 {
		t.Errorf("survival chance 1 still killed %d", killed)
	}
}

func TestSedimentationWithoutDeadIsNoop(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Recruitment.Initial = 4
	cfg.Sedimentation.Frequency = 1
	s := newSim(t, cfg)

	first := step(t, s)
	if first.LightPasses != cfg.Light.ReconvergePasses {
		t.Errorf("first step ran %d passes, want %d", first.LightPasses, cfg.Light.ReconvergePasses)
	}
	if s.light.Dirty() {
		t.Fatal("light dirty after a tick with no structural change")
	}
	if got := s.sediment(); got != 0 {
		t.Errorf("sediment reclaimed %d with no dead colonies", got)
	}
	if s.light.Dirty() {
		t.Error("empty sedimentation marked light dirty")
	}

	second := step(t, s)
	if second.LightPasses != 1 {
		t.Errorf("second step ran %d passes, want 1", second.LightPasses)
	}
	if len(second.Reclaimed) != 0 {
		t.Errorf("reclaimed %d voxels", len(second.Reclaimed))
	}
}

func TestSedimentationReclaimsDead(t *testing.T) {
	cfg := quiet(testConfig(10))
	s := newSim(t, cfg)
	a := s.spawnColony(components.Coord{X: 1, Z: 1}, components.Encrusting)
	b := s.spawnColony(components.Coord{X: 6, Z: 6}, components.Encrusting)
	s.kill(a, components.CauseMortality)
	s.kill(b, components.CauseMortality)

	k := s.sediment()
	if k < 1 || k > 2 {
		t.Fatalf("reclaimed %d colonies, want 1 or 2", k)
	}
	if len(s.dead) != 2-k {
		t.Errorf("%d dead left, want %d", len(s.dead), 2-k)
	}
	if got := len(s.Colonies()); got != 2-k {
		t.Errorf("Colonies() = %d after reclaiming %d", got, k)
	}
	if got := s.grid.Count(systems.DeadTag); got != 2-k {
		t.Errorf("%d dead cells remain, want %d", got, 2-k)
	}
	if !s.light.Dirty() {
		t.Error("reclamation did not mark light dirty")
	}
	if len(s.pend.Reclaimed) != k {
		t.Errorf("pending reclaimed = %d, want %d", len(s.pend.Reclaimed), k)
	}
}

func TestReclaimMovesFateToReclaimed(t *testing.T) {
	s := newSim(t, quiet(testConfig(10)))
	e := s.spawnColony(components.Coord{X: 3, Z: 3}, components.Branching)
	s.kill(e, components.CauseDisturbance)

	last := s.reclaim(e)
	if last.State != components.StateReclaimed {
		t.Errorf("final state = %s, want %s", last.State, components.StateReclaimed)
	}
	if last.Cause != components.CauseDisturbance || last.ID != 1 {
		t.Errorf("final snapshot = %+v", last)
	}
	if _, ok := s.Colony(1); ok {
		t.Error("reclaimed colony still in the world")
	}
}

func TestColonyIDsNeverReused(t *testing.T) {
	s := newSim(t, quiet(testConfig(10)))
	a := s.spawnColony(components.Coord{X: 1, Z: 1}, components.Tabular)
	s.kill(a, components.CauseDisturbance)
	s.sediment()

	s.spawnColony(components.Coord{X: 1, Z: 1}, components.Tabular)
	cols := s.Colonies()
	if len(cols) != 1 || cols[0].ID != 2 {
		t.Errorf("colonies after reuse of ground = %+v, want id 2", cols)
	}
}

func TestWeightedFormDraw(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Recruitment.RandomForms = false
	s := newSim(t, cfg)

	// No live cells falls back to uniform; any form is fine.
	if f := s.drawForm(); !f.Valid() {
		t.Errorf("fallback draw gave %v", f)
	}

	s.spawnColony(components.Coord{X: 4, Z: 4}, components.Branching)
	for i := 0; i < 50; i++ {
		if f := s.drawForm(); f != components.Branching {
			t.Fatalf("draw %d gave %s with only branching alive", i, f)
		}
	}
}

func TestInitialSeedingCyclesForms(t *testing.T) {
	cfg := quiet(testConfig(40))
	cfg.Recruitment.Initial = 5
	s := newSim(t, cfg)

	seen := map[components.GrowthForm]bool{}
	for _, c := range s.Colonies() {
		seen[c.Form] = true
		if c.Origin.Y != 0 {
			t.Errorf("colony %d seeded at y=%d", c.ID, c.Origin.Y)
		}
		if c.Cells != 1 {
			t.Errorf("colony %d seeded with %d cells", c.ID, c.Cells)
		}
	}
	// Duplicate positions are skipped, so at most five distinct forms.
	if len(s.liveIDs) == 5 && len(seen) != 5 {
		t.Errorf("five seeds covered %d forms", len(seen))
	}
	if len(s.liveIDs) == 5 {
		want := []components.GrowthForm{
			components.Branching, components.Corymbose, components.Encrusting,
			components.Hemispherical, components.Tabular,
		}
		for i, c := range s.Colonies() {
			if c.Form != want[i] {
				t.Errorf("seed %d form = %s, want %s", i, c.Form, want[i])
			}
		}
	}
	if got := len(s.Pending().Added); got != len(s.liveIDs) {
		t.Errorf("pending added = %d, want %d", got, len(s.liveIDs))
	}
}

// TestLongRunInvariants drives the full stochastic pipeline and checks the
// ownership, monotone growth, and resource bounds after every tick.
func TestLongRunInvariants(t *testing.T) {
	cfg := testConfig(20)
	cfg.Recruitment.Frequency = 10
	cfg.Recruitment.Offset = 0
	cfg.Disturbance.Low = config.SeverityConfig{Frequency: 30, Offset: 5, Min: 2, Max: 6}
	cfg.Disturbance.High = config.SeverityConfig{Frequency: 70, Offset: 11, Min: 0.5, Max: 2}
	cfg.Sedimentation = config.SedimentationConfig{Frequency: 13, Offset: 3}
	cfg.Run.TicksPerYear = 25
	s := newSim(t, cfg)

	sizes := map[uint32]int{}
	for i := 0; i < 300; i++ {
		tick := step(t, s)
		if tick.Tick != i {
			t.Fatalf("tick = %d, want %d", tick.Tick, i)
		}

		for _, c := range s.Colonies() {
			if c.Resources < 0 || c.Resources > c.Cap {
				t.Fatalf("colony %d resources %v outside [0, %v]", c.ID, c.Resources, c.Cap)
			}
			if c.State != components.StateGrowing {
				continue
			}
			if c.Cells < sizes[c.ID] {
				t.Fatalf("colony %d shrank from %d to %d", c.ID, sizes[c.ID], c.Cells)
			}
			sizes[c.ID] = c.Cells
		}

		m := tick.Metrics
		if m.TotalCover < 0 || m.TotalCover > 100 {
			t.Fatalf("total cover %v out of range", m.TotalCover)
		}
		if m.Simpson < 0 || m.Simpson >= 1 {
			t.Fatalf("simpson %v out of range", m.Simpson)
		}
		if m.Rugosity < 1 {
			t.Fatalf("rugosity %v below 1", m.Rugosity)
		}
	}

	if s.light.Max() > cfg.Light.Surface+1e-12 {
		t.Errorf("light %v exceeds surface", s.light.Max())
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []int {
		s := newSim(t, testConfig(16))
		var cells []int
		for i := 0; i < 120; i++ {
			cells = append(cells, step(t, s).Metrics.LiveCells)
		}
		return cells
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at tick %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestInvariantFaults(t *testing.T) {
	s := newSim(t, quiet(testConfig(10)))
	s.spawnColony(components.Coord{X: 2, Z: 2}, components.Encrusting)
	// A cell tagged with the colony id that the colony does not own
	s.grid.Set(components.Coord{X: 7, Z: 7}, 1)

	err := s.CheckInvariants()
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("CheckInvariants = %v, want ErrInvariant", err)
	}
	if _, err := s.Step(); !errors.Is(err, ErrInvariant) {
		t.Errorf("Step = %v, want ErrInvariant", err)
	}

	s.cfg.Debug.CheckInvariants = false
	defer func() {
		if recover() == nil {
			t.Error("invariant fault without checks did not panic")
		}
	}()
	s.CheckInvariants()
}

func TestNewRejectsMismatchedLibrary(t *testing.T) {
	small := newSim(t, quiet(testConfig(10)))
	if _, err := New(quiet(testConfig(12)), small.Library(), Options{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New with wrong-size library = %v, want ErrInvalid", err)
	}
}

func TestEventLog(t *testing.T) {
	cfg := quiet(testConfig(10))
	cfg.Recruitment.Initial = 3
	cfg.Telemetry.LogCapacity = 2
	cfg.Energy.Maintenance = 5
	s := newSim(t, cfg)
	step(t, s)

	lines := s.Log()
	if len(lines) != 2 {
		t.Fatalf("log holds %d lines, want capacity 2", len(lines))
	}
	for _, l := range lines {
		if l == "" {
			t.Error("empty log line")
		}
	}
}

func TestOnWindowCallback(t *testing.T) {
	cfg := testConfig(12)
	cfg.Telemetry.LogEvery = 10
	cfg.Recruitment.Initial = 3

	var windows []int
	s, err := New(cfg, nil, Options{OnWindow: func(w telemetry.WindowStats) {
		windows = append(windows, w.WindowEnd)
	}})
	if err != nil {
		t.Fatal(err)
	}
	for range 25 {
		step(t, s)
	}
	if len(windows) != 2 {
		t.Fatalf("got %d window flushes in 25 ticks at 10 per window, want 2", len(windows))
	}
	if windows[0] >= windows[1] {
		t.Errorf("window ends not increasing: %v", windows)
	}
}
