// Package components defines ECS components for reef colonies.
package components

// LifeState is the lifecycle stage of a colony.
type LifeState uint8

const (
	StateGrowing   LifeState = iota // Alive, accruing and spending resources
	StateDead                       // Cells marked dead, still standing
	StateReclaimed                  // Cells returned to barren ground
)

// String returns the display name for a LifeState.
func (s LifeState) String() string {
	switch s {
	case StateGrowing:
		return "growing"
	case StateDead:
		return "dead"
	case StateReclaimed:
		return "reclaimed"
	}
	return "unknown"
}

// DeathCause records why a colony died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseMortality
	CauseDisturbance
)

// String returns the display name for a DeathCause.
func (c DeathCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseStarvation:
		return "starvation"
	case CauseMortality:
		return "mortality"
	case CauseDisturbance:
		return "disturbance"
	}
	return "unknown"
}

// Colony holds identity and placement of a colony.
type Colony struct {
	ID       uint32 // Unique, never reused
	Form     GrowthForm
	Origin   Coord // Recruitment voxel, always owned while the colony stands
	Age      int   // Ticks in which the colony grew
	BornTick int
}

// Reserve is the colony's stored resource pool, kept within [0, Cap].
type Reserve struct {
	Resources float64
	Cap       float64
}

// Add applies a net resource change and clamps to [0, Cap].
func (r *Reserve) Add(delta float64) {
	r.Resources += delta
	if r.Resources < 0 {
		r.Resources = 0
	}
	if r.Resources > r.Cap {
		r.Resources = r.Cap
	}
}

// Budget returns the number of voxels the reserve can pay for.
func (r *Reserve) Budget() int {
	return int(r.Resources)
}

// Fate tracks lifecycle state and cause of death.
type Fate struct {
	State    LifeState
	Cause    DeathCause
	DiedTick int
}

// Alive reports whether the colony is still growing.
func (f *Fate) Alive() bool {
	return f.State == StateGrowing
}

// Mortality is the yearly background death probability.
type Mortality struct {
	Rate float64
}
