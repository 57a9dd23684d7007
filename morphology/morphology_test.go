package morphology

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/reef/components"
)

func buildLibrary(t *testing.T, n int) *Library {
	t.Helper()
	lib, err := Build(n, DefaultParams())
	if err != nil {
		t.Fatalf("Build(%d): %v", n, err)
	}
	return lib
}

func TestBuildRejectsWorldSize(t *testing.T) {
	for _, n := range []int{-1, 0, 1, MaxWorldSize + 1} {
		if _, err := Build(n, DefaultParams()); err == nil {
			t.Errorf("Build(%d) expected error", n)
		}
	}
}

func TestTemplatesBounded(t *testing.T) {
	const n = 20
	lib := buildLibrary(t, n)

	for _, form := range components.AllForms() {
		tpl := lib.Template(form)
		if tpl.Len() == 0 {
			t.Fatalf("%s template is empty", form)
		}
		limit := float64(n) / 2
		if form == components.Corymbose {
			limit = float64(n) / 4
		}
		prev := -1.0
		for _, e := range tpl.Entries {
			if e.Distance > limit {
				t.Errorf("%s offset (%d,%d,%d) distance %.2f exceeds %.2f", form, e.DX, e.DY, e.DZ, e.Distance, limit)
			}
			if e.DY < 0 {
				t.Errorf("%s offset (%d,%d,%d) below origin", form, e.DX, e.DY, e.DZ)
			}
			if e.Distance < prev {
				t.Fatalf("%s entries not sorted by distance", form)
			}
			prev = e.Distance
		}
	}
}

func TestEncrustingIsSingleLayer(t *testing.T) {
	lib := buildLibrary(t, 20)
	for _, e := range lib.Template(components.Encrusting).Entries {
		if e.DY != 0 {
			t.Fatalf("encrusting offset with dy=%d", e.DY)
		}
	}
	if lib.PriorityOf(components.Encrusting, components.Offset{DY: 1}) != 0 {
		t.Error("encrusting should not score vertical offsets")
	}
	if lib.PriorityOf(components.Encrusting, components.Offset{DX: 1}) <= 0 {
		t.Error("encrusting should score horizontal neighbours")
	}
}

func TestShapePredicates(t *testing.T) {
	lib := buildLibrary(t, 40)

	tests := []struct {
		name string
		form components.GrowthForm
		off  components.Offset
		want bool
	}{
		{"dome apex", components.Hemispherical, components.Offset{DY: 5}, true},
		{"dome flank", components.Hemispherical, components.Offset{DX: 3, DY: 2, DZ: -4}, true},
		{"stem", components.Tabular, components.Offset{DY: 5}, true},
		{"stem too wide", components.Tabular, components.Offset{DX: 3, DY: 5}, false},
		{"table top", components.Tabular, components.Offset{DY: 10, DZ: 8}, true},
		{"above table", components.Tabular, components.Offset{DY: 11}, false},
		{"branch core", components.Branching, components.Offset{DX: 1, DY: 5, DZ: 1}, true},
		{"branch fork", components.Branching, components.Offset{DX: 3, DY: 7, DZ: 3}, true},
		{"branch gap", components.Branching, components.Offset{DX: 5, DY: 5}, false},
		{"corymbose core", components.Corymbose, components.Offset{DY: 6}, true},
		{"corymbose off axis", components.Corymbose, components.Offset{DX: 4, DY: 1, DZ: 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lib.Template(tt.form).Contains(tt.off)
			if got != tt.want {
				t.Errorf("%s contains %+v = %v, want %v", tt.form, tt.off, got, tt.want)
			}
		})
	}
}

func TestPriorityOf(t *testing.T) {
	lib := buildLibrary(t, 20)

	off := components.Offset{DX: 3, DY: 4}
	got := lib.PriorityOf(components.Hemispherical, off)
	if math.Abs(got-(Ceiling-5)) > 1e-9 {
		t.Errorf("PriorityOf = %v, want %v", got, Ceiling-5)
	}

	// Closer offsets score higher
	near := lib.PriorityOf(components.Hemispherical, components.Offset{DX: 1})
	far := lib.PriorityOf(components.Hemispherical, components.Offset{DX: 6})
	if near <= far {
		t.Errorf("expected near offset to outrank far: near=%v far=%v", near, far)
	}

	// Misses are zero, never negative
	miss := lib.PriorityOf(components.Hemispherical, components.Offset{DX: 50})
	if miss != 0 {
		t.Errorf("miss scored %v, want 0", miss)
	}
}

func TestTablesRoundTrip(t *testing.T) {
	lib := buildLibrary(t, 16)

	var buf bytes.Buffer
	if err := lib.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	loaded, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if loaded.WorldSize() != 16 {
		t.Errorf("world size = %d, want 16", loaded.WorldSize())
	}
	for _, form := range components.AllForms() {
		if loaded.Template(form).Len() != lib.Template(form).Len() {
			t.Errorf("%s: loaded %d entries, want %d", form, loaded.Template(form).Len(), lib.Template(form).Len())
		}
		for _, e := range lib.Template(form).Entries {
			if loaded.PriorityOf(form, e.Offset()) != lib.PriorityOf(form, e.Offset()) {
				t.Fatalf("%s: priority mismatch at %+v", form, e.Offset())
			}
		}
	}
}

func TestFromTablesRejectsMissingForm(t *testing.T) {
	set := buildLibrary(t, 16).Tables()
	set.Tables = set.Tables[:4]
	if _, err := FromTables(set); !errors.Is(err, ErrTable) {
		t.Errorf("expected ErrTable, got %v", err)
	}

	set = buildLibrary(t, 16).Tables()
	set.Tables[0].Entries[0].Distance = 100
	if _, err := FromTables(set); !errors.Is(err, ErrTable) {
		t.Errorf("expected ErrTable for out-of-range distance, got %v", err)
	}
}
