// Package morphology builds the per-growth-form shape templates that steer
// colony growth. A template is a finite set of voxel offsets relative to the
// colony origin, each carrying its distance from the origin. Growth prefers
// frontier voxels whose offset is in the template and closest to the origin.
package morphology

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pthm-cable/reef/components"
)

// Ceiling is the score of an offset at distance zero. Scores are Ceiling minus
// distance, so any template hit scores positive for worlds up to MaxWorldSize.
const Ceiling = 999.0

// MaxWorldSize bounds the world side so that template scores stay positive.
const MaxWorldSize = 1024

// ErrTable is returned when precomputed template tables are malformed.
var ErrTable = errors.New("morphology: invalid template table")

// Params holds the geometric knobs of the templates.
type Params struct {
	StemHeight int     // Tabular stem height in voxels; the table sits at this layer
	StemRadius float64 // Tabular stem radius
}

// DefaultParams returns the stock template geometry.
func DefaultParams() Params {
	return Params{StemHeight: 10, StemRadius: 2}
}

// Entry is one template voxel.
type Entry struct {
	DX       int     `json:"dx"`
	DY       int     `json:"dy"`
	DZ       int     `json:"dz"`
	Distance float64 `json:"d"`
}

// Offset returns the entry's relative offset.
func (e Entry) Offset() components.Offset {
	return components.Offset{DX: e.DX, DY: e.DY, DZ: e.DZ}
}

// Template is the immutable valid-offset set for one growth form.
type Template struct {
	Form    components.GrowthForm
	Entries []Entry // Sorted by ascending distance
	score   map[components.Offset]float64
}

func newTemplate(form components.GrowthForm, entries []Entry) *Template {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.DY != b.DY {
			return a.DY < b.DY
		}
		if a.DZ != b.DZ {
			return a.DZ < b.DZ
		}
		return a.DX < b.DX
	})
	t := &Template{
		Form:    form,
		Entries: entries,
		score:   make(map[components.Offset]float64, len(entries)),
	}
	for _, e := range entries {
		t.score[e.Offset()] = Ceiling - e.Distance
	}
	return t
}

// Len returns the number of offsets in the template.
func (t *Template) Len() int {
	return len(t.Entries)
}

// Contains reports whether the offset is part of the template.
func (t *Template) Contains(off components.Offset) bool {
	_, ok := t.score[off]
	return ok
}

// Library holds one template per growth form for a given world size.
// It is read-only after construction and safe to share.
type Library struct {
	worldSize int
	templates [components.NumForms]*Template
}

// WorldSize returns the world side the library was built for.
func (l *Library) WorldSize() int {
	return l.worldSize
}

// Template returns the template of a form.
func (l *Library) Template(form components.GrowthForm) *Template {
	return l.templates[formIndex(form)]
}

// PriorityOf scores a relative offset for a form. Offsets outside the
// template score 0, meaning no preference; hits are always positive.
func (l *Library) PriorityOf(form components.GrowthForm, off components.Offset) float64 {
	return l.templates[formIndex(form)].score[off]
}

// formIndex maps a form to its slot, rejecting undeclared values.
func formIndex(form components.GrowthForm) int {
	switch form {
	case components.Encrusting, components.Hemispherical, components.Tabular,
		components.Branching, components.Corymbose:
		return int(form)
	}
	panic(fmt.Sprintf("morphology: invalid growth form %d", uint8(form)))
}

// candidate is one voxel of the bounding cube with its precomputed distances.
type candidate struct {
	x, y, z int
	l2, xz  float64
}

// Build enumerates the bounding cube of side n and filters it into the five
// templates. Horizontal offsets span [-n/2, n/2), vertical [0, n).
func Build(n int, p Params) (*Library, error) {
	if n < 2 || n > MaxWorldSize {
		return nil, fmt.Errorf("morphology: world size %d out of range [2, %d]", n, MaxWorldSize)
	}
	if p.StemRadius < 0 || p.StemHeight < 0 {
		return nil, fmt.Errorf("morphology: negative tabular stem geometry")
	}

	half := float64(n) / 2
	bounds := [components.NumForms]float64{
		components.Encrusting:    half,
		components.Hemispherical: half,
		components.Tabular:       half,
		components.Branching:     half,
		components.Corymbose:     half / 2,
	}

	branch := newBranchingShape(n)
	corym := newCorymboseShape()

	var sets [components.NumForms][]Entry
	lo := -n / 2
	for y := 0; y < n; y++ {
		for z := lo; z < lo+n; z++ {
			for x := lo; x < lo+n; x++ {
				c := candidate{
					x: x, y: y, z: z,
					l2: math.Sqrt(float64(x*x + y*y + z*z)),
					xz: math.Sqrt(float64(x*x + z*z)),
				}
				if c.l2 > half {
					// Beyond every truncation radius
					continue
				}
				e := Entry{DX: x, DY: y, DZ: z, Distance: c.l2}
				for _, form := range components.AllForms() {
					if c.l2 > bounds[form] {
						continue
					}
					var ok bool
					switch form {
					case components.Encrusting:
						ok = c.y == 0
					case components.Hemispherical:
						ok = c.y >= 0
					case components.Tabular:
						ok = tabular(c, p)
					case components.Branching:
						ok = branch.contains(c)
					case components.Corymbose:
						ok = corym.contains(c)
					}
					if ok {
						sets[form] = append(sets[form], e)
					}
				}
			}
		}
	}

	lib := &Library{worldSize: n}
	for _, form := range components.AllForms() {
		lib.templates[form] = newTemplate(form, sets[form])
	}
	return lib, nil
}

// tabular is a narrow stem capped by a flat table.
func tabular(c candidate, p Params) bool {
	return (c.xz <= p.StemRadius && c.y < p.StemHeight) || c.y == p.StemHeight
}

// branchingShape is a core column with four diagonal branches forking at
// regularly spaced breakpoints.
type branchingShape struct {
	breakpoints []float64
}

const (
	branchCoreRadius = 1.5
	branchRadius     = 1.5
)

func newBranchingShape(n int) branchingShape {
	half := float64(n) / 2
	step := half / 5
	var bps []float64
	for i := 1; float64(i)*step < half; i++ {
		bps = append(bps, float64(i)*step)
	}
	return branchingShape{breakpoints: bps}
}

func (b branchingShape) contains(c candidate) bool {
	if c.xz <= branchCoreRadius {
		return true
	}
	x, z := float64(c.x), float64(c.z)
	for _, bp := range b.breakpoints {
		h := float64(c.y) - bp
		if h < 0 {
			continue
		}
		for _, sx := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				if math.Hypot(x+sx*h, z+sz*h) < branchRadius {
					return true
				}
			}
		}
	}
	return false
}

// corymboseShape is a core column with three families of radial branches
// leaning outward at increasing angles from vertical.
type corymboseShape struct {
	axes []branchAxis
}

type branchAxis struct {
	sin, cos, slope float64
}

const (
	corymboseCoreRadius = 1.6
	corymboseBranchSq   = 2.0 // Squared branch radius
)

func newCorymboseShape() corymboseShape {
	families := []struct {
		count int
		phase float64 // Fraction of the angular step
		lean  float64 // Angle from vertical
	}{
		{5, 1, math.Pi / 8},
		{9, 1.0 / 3, math.Pi / 4},
		{13, 2.0 / 3, 3 * math.Pi / 8},
	}
	var axes []branchAxis
	for _, f := range families {
		step := 2 * math.Pi / float64(f.count)
		slope := math.Tan(f.lean)
		for i := 0; i < f.count; i++ {
			ang := step*f.phase + float64(i)*step
			axes = append(axes, branchAxis{sin: math.Sin(ang), cos: math.Cos(ang), slope: slope})
		}
	}
	return corymboseShape{axes: axes}
}

func (s corymboseShape) contains(c candidate) bool {
	if c.xz <= corymboseCoreRadius {
		return true
	}
	x, z := float64(c.x), float64(c.z)
	for _, a := range s.axes {
		d := float64(c.y) * a.slope
		dx := x - d*a.sin
		dz := z - d*a.cos
		if dx*dx+dz*dz < corymboseBranchSq {
			return true
		}
	}
	return false
}
