package components

import (
	"math"
	"testing"
)

func TestGrowthFormNames(t *testing.T) {
	for _, form := range AllForms() {
		parsed, err := ParseGrowthForm(form.String())
		if err != nil {
			t.Fatalf("ParseGrowthForm(%q): %v", form.String(), err)
		}
		if parsed != form {
			t.Errorf("ParseGrowthForm(%q) = %v, want %v", form.String(), parsed, form)
		}
	}
	if _, err := ParseGrowthForm("kelp"); err == nil {
		t.Error("expected error for unknown form")
	}
	if GrowthForm(NumForms).Valid() {
		t.Error("out-of-range form reported valid")
	}
}

func TestReserveClamp(t *testing.T) {
	r := Reserve{Resources: 2, Cap: 6}

	r.Add(10)
	if r.Resources != 6 {
		t.Errorf("expected clamp to cap 6, got %v", r.Resources)
	}
	r.Add(-100)
	if r.Resources != 0 {
		t.Errorf("expected clamp to 0, got %v", r.Resources)
	}
	r.Add(3.7)
	if r.Budget() != 3 {
		t.Errorf("Budget = %d, want 3", r.Budget())
	}
}

func TestTissueAdd(t *testing.T) {
	tissue := NewTissue(0)
	if !tissue.Add(Coord{X: 5, Y: 0, Z: 5}, 55) {
		t.Fatal("first add rejected")
	}
	if tissue.Add(Coord{X: 5, Y: 0, Z: 5}, 55) {
		t.Error("duplicate add accepted")
	}
	if tissue.Len() != 1 || !tissue.Has(55) {
		t.Errorf("expected single owned cell, got len=%d", tissue.Len())
	}
}

func TestTissuePlanArea(t *testing.T) {
	tissue := NewTissue(0)
	cells := []Coord{
		{X: 5, Y: 0, Z: 5},
		{X: 5, Y: 1, Z: 5}, // stacked on the same column
		{X: 6, Y: 0, Z: 5},
		{X: 6, Y: 2, Z: 6},
	}
	for i, c := range cells {
		tissue.Add(c, i)
	}
	if got := tissue.PlanArea(); got != 3 {
		t.Errorf("PlanArea() = %d, want 3 columns", got)
	}
}

func TestShapeFactor(t *testing.T) {
	tests := []struct {
		name  string
		cells []Coord
		want  float64
	}{
		{"empty", nil, 0},
		{"single", []Coord{{0, 0, 0}}, 1 / (math.Pi / 4)},
		{"plus", []Coord{{5, 0, 5}, {4, 0, 5}, {6, 0, 5}, {5, 0, 4}, {5, 0, 6}}, 5 / (math.Pi / 4 * 9)},
		{"column", []Coord{{0, 0, 0}, {0, 1, 0}, {0, 2, 0}}, 6 / (math.Pi / 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tissue := NewTissue(0)
			for i, c := range tt.cells {
				tissue.Add(c, i)
			}
			got := tissue.ShapeFactor()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ShapeFactor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShapeFactorFavoursTallColonies(t *testing.T) {
	flat := NewTissue(0)
	tall := NewTissue(0)
	idx := 0
	for x := 0; x < 3; x++ {
		for z := 0; z < 3; z++ {
			flat.Add(Coord{X: x, Z: z}, idx)
			idx++
		}
	}
	for y := 0; y < 9; y++ {
		tall.Add(Coord{Y: y}, idx)
		idx++
	}
	if tall.ShapeFactor() <= flat.ShapeFactor() {
		t.Errorf("tall CSF %.3f should exceed flat CSF %.3f", tall.ShapeFactor(), flat.ShapeFactor())
	}
}
