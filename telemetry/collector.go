package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/reef/components"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStart int     `csv:"-"`
	WindowEnd   int     `csv:"window_end"`
	Year        float64 `csv:"year"`

	// State at window end
	LiveColonies int     `csv:"live_colonies"`
	DeadColonies int     `csv:"dead_colonies"`
	TotalCover   float64 `csv:"total_cover"`
	Rugosity     float64 `csv:"rugosity"`
	Simpson      float64 `csv:"simpson"`

	// Events during window
	Recruits          int `csv:"recruits"`
	StarvationDeaths  int `csv:"starvation_deaths"`
	MortalityDeaths   int `csv:"mortality_deaths"`
	DisturbanceDeaths int `csv:"disturbance_deaths"`
	Disturbances      int `csv:"disturbances"`
	Reclaimed         int `csv:"reclaimed"`

	// Live colony size distribution in cells
	SizeMean float64 `csv:"size_mean"`
	SizeP50  float64 `csv:"size_p50"`
	SizeP90  float64 `csv:"size_p90"`
	SizeMax  float64 `csv:"size_max"`

	FormCells [components.NumForms]int `csv:"-"`
}

// Deaths returns the total deaths in the window.
func (s WindowStats) Deaths() int {
	return s.StarvationDeaths + s.MortalityDeaths + s.DisturbanceDeaths
}

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks  int
	ticksPerYear int
	windowStart  int

	recruits          int
	starvationDeaths  int
	mortalityDeaths   int
	disturbanceDeaths int
	disturbances      int
	reclaimed         int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks, ticksPerYear int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	if ticksPerYear < 1 {
		ticksPerYear = 1
	}
	return &Collector{windowTicks: windowTicks, ticksPerYear: ticksPerYear}
}

// Record counts one event.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventRecruit:
		c.recruits += e.Count
	case EventDeath:
		switch e.Cause {
		case components.CauseStarvation:
			c.starvationDeaths++
		case components.CauseMortality:
			c.mortalityDeaths++
		case components.CauseDisturbance:
			c.disturbanceDeaths++
		}
	case EventDisturbance:
		c.disturbances++
	case EventSedimentation:
		c.reclaimed += e.Count
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(tick int) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// sizes holds the cell count of every live colony.
func (c *Collector) Flush(m Metrics, sizes []float64) WindowStats {
	s := WindowStats{
		WindowStart:  c.windowStart,
		WindowEnd:    m.Tick,
		Year:         float64(m.Tick) / float64(c.ticksPerYear),
		LiveColonies: m.LiveColonies,
		DeadColonies: m.DeadColonies,
		TotalCover:   m.TotalCover,
		Rugosity:     m.Rugosity,
		Simpson:      m.Simpson,

		Recruits:          c.recruits,
		StarvationDeaths:  c.starvationDeaths,
		MortalityDeaths:   c.mortalityDeaths,
		DisturbanceDeaths: c.disturbanceDeaths,
		Disturbances:      c.disturbances,
		Reclaimed:         c.reclaimed,
	}
	for f := range s.FormCells {
		s.FormCells[f] = m.Forms[f].Cells
	}
	s.SizeMean, s.SizeP50, s.SizeP90, s.SizeMax = SizeStats(sizes)

	*c = Collector{windowTicks: c.windowTicks, ticksPerYear: c.ticksPerYear, windowStart: m.Tick}
	return s
}

// SizeStats returns mean, median, 90th percentile, and maximum of values.
func SizeStats(values []float64) (mean, p50, p90, maxv float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, p50, p90, sorted[len(sorted)-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Float64("year", s.Year),
		slog.Int("live_colonies", s.LiveColonies),
		slog.Int("dead_colonies", s.DeadColonies),
		slog.Float64("total_cover", s.TotalCover),
		slog.Float64("rugosity", s.Rugosity),
		slog.Float64("simpson", s.Simpson),
		slog.Int("recruits", s.Recruits),
		slog.Int("starvation_deaths", s.StarvationDeaths),
		slog.Int("mortality_deaths", s.MortalityDeaths),
		slog.Int("disturbance_deaths", s.DisturbanceDeaths),
		slog.Int("disturbances", s.Disturbances),
		slog.Int("reclaimed", s.Reclaimed),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("size_p50", s.SizeP50),
		slog.Float64("size_p90", s.SizeP90),
		slog.Float64("size_max", s.SizeMax),
	)
}
