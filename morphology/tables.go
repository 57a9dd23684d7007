package morphology

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pthm-cable/reef/components"
)

// Table is the persisted form of one template.
type Table struct {
	Form    components.GrowthForm `json:"form"`
	Entries []Entry               `json:"entries"`
}

// TableSet is the persisted form of a whole library.
type TableSet struct {
	WorldSize int     `json:"world_size"`
	Tables    []Table `json:"tables"`
}

// Tables exports the library as opaque per-form tables.
func (l *Library) Tables() TableSet {
	set := TableSet{WorldSize: l.worldSize}
	for _, form := range components.AllForms() {
		t := l.templates[form]
		entries := make([]Entry, len(t.Entries))
		copy(entries, t.Entries)
		set.Tables = append(set.Tables, Table{Form: form, Entries: entries})
	}
	return set
}

// FromTables rebuilds a library from precomputed tables. Every form must be
// present exactly once and distances must lie within the world half-size.
func FromTables(set TableSet) (*Library, error) {
	n := set.WorldSize
	if n < 2 || n > MaxWorldSize {
		return nil, fmt.Errorf("%w: world size %d", ErrTable, n)
	}
	half := float64(n) / 2

	lib := &Library{worldSize: n}
	for _, tbl := range set.Tables {
		if !tbl.Form.Valid() {
			return nil, fmt.Errorf("%w: form %d", ErrTable, uint8(tbl.Form))
		}
		if lib.templates[tbl.Form] != nil {
			return nil, fmt.Errorf("%w: duplicate form %s", ErrTable, tbl.Form)
		}
		entries := make([]Entry, 0, len(tbl.Entries))
		for _, e := range tbl.Entries {
			if e.Distance < 0 || e.Distance > half {
				return nil, fmt.Errorf("%w: %s offset (%d,%d,%d) distance %.3f",
					ErrTable, tbl.Form, e.DX, e.DY, e.DZ, e.Distance)
			}
			entries = append(entries, e)
		}
		lib.templates[tbl.Form] = newTemplate(tbl.Form, entries)
	}
	for _, form := range components.AllForms() {
		if lib.templates[form] == nil {
			return nil, fmt.Errorf("%w: missing form %s", ErrTable, form)
		}
	}
	return lib, nil
}

// WriteJSON encodes the library tables to w.
func (l *Library) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(l.Tables()); err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}
	return nil
}

// ReadJSON decodes tables from r and rebuilds the library.
func ReadJSON(r io.Reader) (*Library, error) {
	var set TableSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding templates: %w", err)
	}
	return FromTables(set)
}
