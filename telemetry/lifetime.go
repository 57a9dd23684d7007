package telemetry

import "github.com/pthm-cable/reef/components"

// ColonyLifetime tracks per-colony statistics over its lifetime.
type ColonyLifetime struct {
	ID       uint32 `csv:"colony"`
	Form     string `csv:"form"`
	BornTick int    `csv:"born"`
	DiedTick int    `csv:"died"`
	Cause    string `csv:"cause"`
	Cells    int    `csv:"cells"`
	Age      int    `csv:"age"` // Ticks in which the colony grew

	PeakResources float64 `csv:"peak_resources"`
	TotalUptake   float64 `csv:"total_uptake"`
}

// LifetimeTracker manages per-colony lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*ColonyLifetime
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{stats: make(map[uint32]*ColonyLifetime)}
}

// Register starts tracking a newly recruited colony.
func (lt *LifetimeTracker) Register(id uint32, form components.GrowthForm, bornTick int) {
	lt.stats[id] = &ColonyLifetime{
		ID:       id,
		Form:     form.String(),
		BornTick: bornTick,
		DiedTick: -1,
	}
}

// Get returns the lifetime stats for a colony, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *ColonyLifetime {
	return lt.stats[id]
}

// RecordUptake adds harvested light and tracks peak resources.
func (lt *LifetimeTracker) RecordUptake(id uint32, uptake, resources float64) {
	if s := lt.stats[id]; s != nil {
		s.TotalUptake += uptake
		if resources > s.PeakResources {
			s.PeakResources = resources
		}
	}
}

// Finish stops tracking a dead colony and returns its final record.
func (lt *LifetimeTracker) Finish(id uint32, tick int, cause components.DeathCause, cells, age int) (ColonyLifetime, bool) {
	s := lt.stats[id]
	if s == nil {
		return ColonyLifetime{}, false
	}
	delete(lt.stats, id)
	s.DiedTick = tick
	s.Cause = cause.String()
	s.Cells = cells
	s.Age = age
	return *s, true
}

// Count returns the number of tracked colonies.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
