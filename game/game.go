// Package game runs the reef: colony lifecycle over the voxel world, one tick at a time.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/morphology"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
)

// ErrInvariant is wrapped by Step when a world invariant is violated and
// debug.check_invariants is enabled. Without the check such faults panic.
var ErrInvariant = errors.New("reef invariant violated")

// Options configures a Simulator beyond the YAML config.
type Options struct {
	Logger   *slog.Logger                // nil discards engine logs
	Output   *telemetry.OutputManager    // nil disables CSV output
	LogStats bool                        // log window stats every telemetry.log_every ticks
	OnWindow func(telemetry.WindowStats) // called on every stats window flush
}

// Simulator holds the complete reef state.
type Simulator struct {
	cfg    *config.Config
	rng    *rand.Rand
	logger *slog.Logger

	world *ecs.World

	colonyMapper *ecs.Map5[
		components.Colony,
		components.Reserve,
		components.Tissue,
		components.Fate,
		components.Mortality,
	]
	colonyFilter *ecs.Filter5[
		components.Colony,
		components.Reserve,
		components.Tissue,
		components.Fate,
		components.Mortality,
	]

	// Live colonies by id; liveIDs is ascending since ids only grow.
	live    map[uint32]ecs.Entity
	liveIDs []uint32
	// Dead colonies still standing, in order of death.
	dead []ecs.Entity

	grid     *systems.Grid
	light    *systems.LightField
	lib      *morphology.Library
	frontier *systems.Frontier

	// State
	tick   int
	nextID uint32
	deaths [4]int // by DeathCause
	pend   Tick   // diff accumulated for the next Step

	// Telemetry
	eventLog  *telemetry.Log
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	lifetimes *telemetry.LifetimeTracker
	output    *telemetry.OutputManager
	logStats  bool
	onWindow  func(telemetry.WindowStats)

	lastMetrics telemetry.Metrics
}

// New creates a simulator and seeds the initial colonies. lib may be nil,
// in which case templates are built from the morphology config.
func New(cfg *config.Config, lib *morphology.Library, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.World.Size

	if lib == nil {
		var err error
		lib, err = morphology.Build(n, morphology.Params{
			StemHeight: cfg.Morphology.StemHeight,
			StemRadius: cfg.Morphology.StemRadius,
		})
		if err != nil {
			return nil, fmt.Errorf("building templates: %w", err)
		}
	} else if lib.WorldSize() != n {
		return nil, fmt.Errorf("%w: template library built for size %d, world is %d", config.ErrInvalid, lib.WorldSize(), n)
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	world := ecs.NewWorld()
	s := &Simulator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
		world:  world,
		colonyMapper: ecs.NewMap5[
			components.Colony,
			components.Reserve,
			components.Tissue,
			components.Fate,
			components.Mortality,
		](world),
		colonyFilter: ecs.NewFilter5[
			components.Colony,
			components.Reserve,
			components.Tissue,
			components.Fate,
			components.Mortality,
		](world),
		live:     make(map[uint32]ecs.Entity),
		grid:     systems.NewGrid(n),
		lib:      lib,
		frontier: systems.NewFrontier(),
		nextID:   1,

		eventLog:  telemetry.NewLog(cfg.Telemetry.LogCapacity),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.LogEvery, cfg.Run.TicksPerYear),
		bookmarks: telemetry.NewBookmarkDetector(10),
		lifetimes: telemetry.NewLifetimeTracker(),
		output:    opts.Output,
		logStats:  opts.LogStats,
		onWindow:  opts.OnWindow,
	}
	s.light = systems.NewLightField(n, systems.LightParams{
		Surface:          cfg.Light.Surface,
		Transmittance:    cfg.Light.Transmittance,
		ReferenceDepth:   cfg.Light.ReferenceDepth,
		Lateral:          cfg.Light.Lateral,
		ReconvergePasses: cfg.Light.ReconvergePasses,
	})

	s.seedInitial()
	s.lastMetrics = telemetry.Aggregate(0, s.View())

	s.logger.Info("reef initialized",
		"size", n,
		"seed", seed,
		"colonies", len(s.liveIDs),
	)
	return s, nil
}

// fault reports an invariant violation: an error wrapping ErrInvariant when
// checks are enabled, a panic otherwise.
func (s *Simulator) fault(format string, args ...any) error {
	err := fmt.Errorf("%w: tick %d: %s", ErrInvariant, s.tick, fmt.Sprintf(format, args...))
	if !s.cfg.Debug.CheckInvariants {
		panic(err)
	}
	return err
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() *config.Config {
	return s.cfg
}

// CurrentTick returns the number of completed steps.
func (s *Simulator) CurrentTick() int {
	return s.tick
}

// Library returns the shape template library in use.
func (s *Simulator) Library() *morphology.Library {
	return s.lib
}

// Log returns the retained human-readable event lines, oldest first.
func (s *Simulator) Log() []string {
	return s.eventLog.Lines()
}

// Metrics returns the metrics computed at the end of the last step.
func (s *Simulator) Metrics() telemetry.Metrics {
	return s.lastMetrics
}

// Deaths returns the number of colonies that died of cause so far.
func (s *Simulator) Deaths(cause components.DeathCause) int {
	return s.deaths[cause]
}

// Perf returns timing statistics over the configured window.
func (s *Simulator) Perf() telemetry.PerfStats {
	return s.perf.Stats()
}

// Pending returns the changes made since the last Step that will be
// reported with the next one, such as initial seeding.
func (s *Simulator) Pending() Tick {
	return s.pend
}
