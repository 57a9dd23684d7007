package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/reef/components"
)

// WorldView is the read-only world surface needed by Aggregate.
// Tags is the flat cell array indexed (y*N+z)*N+x: 0 barren, -1 dead, >0 colony id.
type WorldView interface {
	Size() int
	Tags() []int32
	FormOf(id int32) (components.GrowthForm, bool)
	ColonyCounts() (live, dead int)
}

// FormMetrics holds the composition figures of one growth form.
type FormMetrics struct {
	Cells  int
	Cover  float64 // Percent of plan-view columns holding the form
	Volume float64 // Fraction of all voxels
}

// Metrics is one tick's reef summary.
type Metrics struct {
	Tick int `csv:"tick"`

	LiveCells    int     `csv:"live_cells"`
	DeadCells    int     `csv:"dead_cells"`
	TotalCover   float64 `csv:"total_cover"`
	LiveColonies int     `csv:"live_colonies"`
	DeadColonies int     `csv:"dead_colonies"`
	Rugosity     float64 `csv:"rugosity"`
	Simpson      float64 `csv:"simpson"`

	EncrustingCover    float64 `csv:"cover_encrusting"`
	HemisphericalCover float64 `csv:"cover_hemispherical"`
	TabularCover       float64 `csv:"cover_tabular"`
	BranchingCover     float64 `csv:"cover_branching"`
	CorymboseCover     float64 `csv:"cover_corymbose"`

	EncrustingVolume    float64 `csv:"volume_encrusting"`
	HemisphericalVolume float64 `csv:"volume_hemispherical"`
	TabularVolume       float64 `csv:"volume_tabular"`
	BranchingVolume     float64 `csv:"volume_branching"`
	CorymboseVolume     float64 `csv:"volume_corymbose"`

	Forms [components.NumForms]FormMetrics `csv:"-"`
}

// Form returns the figures for one growth form.
func (m *Metrics) Form(f components.GrowthForm) FormMetrics {
	return m.Forms[f]
}

// Aggregate computes the metrics of the world as it stands.
func Aggregate(tick int, view WorldView) Metrics {
	n := view.Size()
	tags := view.Tags()
	plane := n * n

	m := Metrics{Tick: tick}
	m.LiveColonies, m.DeadColonies = view.ColonyCounts()

	// Per column: bitmask of forms present plus any-live flag in bit NumForms.
	columns := make([]uint8, plane)
	var cells [components.NumForms]float64

	// Cache the last lookup; consecutive cells usually share a colony.
	lastID := int32(0)
	var lastForm components.GrowthForm
	lastOK := false

	for i, tag := range tags {
		switch {
		case tag == 0:
			continue
		case tag < 0:
			m.DeadCells++
			continue
		}
		if tag != lastID {
			lastID = tag
			lastForm, lastOK = view.FormOf(tag)
		}
		if !lastOK {
			continue
		}
		cells[lastForm]++
		columns[i%plane] |= 1<<lastForm | 1<<components.NumForms
	}

	var covered [components.NumForms + 1]int
	for _, mask := range columns {
		for bit := 0; bit <= components.NumForms; bit++ {
			if mask&(1<<bit) != 0 {
				covered[bit]++
			}
		}
	}

	total := float64(len(tags))
	for _, f := range components.AllForms() {
		m.Forms[f] = FormMetrics{
			Cells:  int(cells[f]),
			Cover:  float64(covered[f]) / float64(plane) * 100,
			Volume: cells[f] / total,
		}
	}
	m.LiveCells = int(floats.Sum(cells[:]))
	m.TotalCover = float64(covered[components.NumForms]) / float64(plane) * 100
	m.Simpson = Simpson(cells[:])
	m.Rugosity = Rugosity(HeightProfile(n, tags, n/2))

	m.EncrustingCover = m.Forms[components.Encrusting].Cover
	m.HemisphericalCover = m.Forms[components.Hemispherical].Cover
	m.TabularCover = m.Forms[components.Tabular].Cover
	m.BranchingCover = m.Forms[components.Branching].Cover
	m.CorymboseCover = m.Forms[components.Corymbose].Cover
	m.EncrustingVolume = m.Forms[components.Encrusting].Volume
	m.HemisphericalVolume = m.Forms[components.Hemispherical].Volume
	m.TabularVolume = m.Forms[components.Tabular].Volume
	m.BranchingVolume = m.Forms[components.Branching].Volume
	m.CorymboseVolume = m.Forms[components.Corymbose].Volume

	return m
}

// HeightProfile returns, for each x on the scan line z, the highest
// non-barren layer plus one (0 for an empty column).
func HeightProfile(n int, tags []int32, z int) []float64 {
	h := make([]float64, n)
	for x := 0; x < n; x++ {
		for y := n - 1; y >= 0; y-- {
			if tags[(y*n+z)*n+x] != 0 {
				h[x] = float64(y + 1)
				break
			}
		}
	}
	return h
}

// Rugosity is 1 plus the mean absolute height step along a profile.
// A flat profile has rugosity 1.
func Rugosity(profile []float64) float64 {
	if len(profile) < 2 {
		return 1
	}
	steps := make([]float64, len(profile)-1)
	floats.SubTo(steps, profile[1:], profile[:len(profile)-1])
	for i, s := range steps {
		if s < 0 {
			steps[i] = -s
		}
	}
	return 1 + stat.Mean(steps, nil)
}

// Simpson returns the Simpson diversity 1 - Σ pᵢ² of the given counts, 0 when empty.
func Simpson(counts []float64) float64 {
	total := floats.Sum(counts)
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	floats.ScaleTo(p, 1/total, counts)
	return 1 - floats.Dot(p, p)
}

// LogValue implements slog.LogValuer for structured logging.
func (m Metrics) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("tick", m.Tick),
		slog.Int("live_cells", m.LiveCells),
		slog.Int("dead_cells", m.DeadCells),
		slog.Float64("total_cover", m.TotalCover),
		slog.Int("live_colonies", m.LiveColonies),
		slog.Int("dead_colonies", m.DeadColonies),
		slog.Float64("rugosity", m.Rugosity),
		slog.Float64("simpson", m.Simpson),
	}
	for _, f := range components.AllForms() {
		attrs = append(attrs, slog.Float64("cover_"+f.String(), m.Forms[f].Cover))
	}
	return slog.GroupValue(attrs...)
}
