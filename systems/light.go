package systems

import (
	"math"

	"github.com/pthm-cable/reef/components"
)

// LightParams configures the light solver.
type LightParams struct {
	Surface          float64 // Light level pinned at the top layer
	Transmittance    float64 // Fraction surviving ReferenceDepth layers
	ReferenceDepth   float64 // Layers over which Transmittance applies
	Lateral          float64 // Fraction of light scattered sideways, in [0, 1]
	ReconvergePasses int     // Passes run after a structural change
}

// DefaultLightParams returns 72% transmittance per hundred layers.
func DefaultLightParams() LightParams {
	return LightParams{
		Surface:          1.0,
		Transmittance:    0.72,
		ReferenceDepth:   100,
		Lateral:          0.5,
		ReconvergePasses: 50,
	}
}

// LightField is a convection/diffusion analogue of light in the water column.
// Light enters at the top layer, attenuates with each layer down, scatters to
// the four horizontal neighbours, and is blocked by living tissue.
type LightField struct {
	n       int
	surface float64
	atten   float64
	lateral float64
	reconv  int

	Light  []float64 // Light available at each voxel
	Uptake []float64 // Light absorbed by living voxels, zero elsewhere

	passes int       // Passes to run on the next Update
	source []float64 // Scratch: transmitted light of the layer above
}

// NewLightField creates a field of side n initialised to the unoccluded
// steady state. The first Update runs a full reconvergence.
func NewLightField(n int, p LightParams) *LightField {
	lf := &LightField{
		n:       n,
		surface: p.Surface,
		atten:   math.Pow(p.Transmittance, 1/p.ReferenceDepth),
		lateral: p.Lateral,
		reconv:  p.ReconvergePasses,
		Light:   make([]float64, n*n*n),
		Uptake:  make([]float64, n*n*n),
		source:  make([]float64, n*n),
	}
	if lf.reconv < 1 {
		lf.reconv = 1
	}
	layer := n * n
	for y := 0; y < n; y++ {
		level := lf.surface * math.Pow(lf.atten, float64(n-1-y))
		row := lf.Light[y*layer : (y+1)*layer]
		for i := range row {
			row[i] = level
		}
	}
	lf.passes = lf.reconv
	return lf
}

// Surface returns the surface light level.
func (lf *LightField) Surface() float64 { return lf.surface }

// Atten returns the per-layer vertical attenuation factor.
func (lf *LightField) Atten() float64 { return lf.atten }

// MarkDirty schedules a full reconvergence on the next Update.
func (lf *LightField) MarkDirty() {
	lf.passes = lf.reconv
}

// Passes returns the number of passes the next Update will run.
func (lf *LightField) Passes() int { return lf.passes }

// Dirty reports whether a full reconvergence is pending.
func (lf *LightField) Dirty() bool { return lf.passes > 1 }

// Update propagates for the scheduled number of passes, then collapses the
// schedule to a single pass. It returns the passes run and the residual of
// the last pass.
func (lf *LightField) Update(g *Grid) (int, float64) {
	passes := lf.passes
	residual := lf.Propagate(g, passes)
	lf.passes = 1
	return passes, residual
}

// Propagate runs the given number of top-down sweeps and refreshes Uptake.
// It returns the largest absolute change made during the last sweep.
func (lf *LightField) Propagate(g *Grid, iterations int) float64 {
	var residual float64
	for i := 0; i < iterations; i++ {
		residual = lf.sweep(g)
	}
	lf.absorb(g)
	return residual
}

// sweep updates every layer from the top down, each reading the already
// updated layer above it.
func (lf *LightField) sweep(g *Grid) float64 {
	n := lf.n
	layer := n * n
	cells := g.Cells()
	var maxDelta float64

	top := (n - 1) * layer
	for i := top; i < top+layer; i++ {
		if d := math.Abs(lf.Light[i] - lf.surface); d > maxDelta {
			maxDelta = d
		}
		lf.Light[i] = lf.surface
	}

	direct := 1 - lf.lateral
	side := lf.lateral / 4
	for y := n - 2; y >= 0; y-- {
		above := (y + 1) * layer
		for i := 0; i < layer; i++ {
			if cells[above+i] > 0 {
				// Living tissue occludes
				lf.source[i] = 0
			} else {
				lf.source[i] = lf.Light[above+i] * lf.atten
			}
		}

		base := y * layer
		for z := 0; z < n; z++ {
			zm := wrap(z-1, n) * n
			zp := wrap(z+1, n) * n
			row := z * n
			for x := 0; x < n; x++ {
				xm := wrap(x-1, n)
				xp := wrap(x+1, n)
				v := direct*lf.source[row+x] +
					side*(lf.source[row+xm]+lf.source[row+xp]+lf.source[zm+x]+lf.source[zp+x])
				idx := base + row + x
				if d := math.Abs(lf.Light[idx] - v); d > maxDelta {
					maxDelta = d
				}
				lf.Light[idx] = v
			}
		}
	}
	return maxDelta
}

// absorb copies light into Uptake wherever a living colony sits.
func (lf *LightField) absorb(g *Grid) {
	for i, tag := range g.Cells() {
		if tag > 0 {
			lf.Uptake[i] = lf.Light[i]
		} else {
			lf.Uptake[i] = 0
		}
	}
}

// At returns the light level at c.
func (lf *LightField) At(g *Grid, c components.Coord) float64 {
	return lf.Light[g.Index(c)]
}

// Max returns the brightest voxel value.
func (lf *LightField) Max() float64 {
	var m float64
	for _, v := range lf.Light {
		if v > m {
			m = v
		}
	}
	return m
}
