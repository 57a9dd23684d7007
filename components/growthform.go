package components

import (
	"fmt"
	"image/color"
	"strings"
)

// GrowthForm is the morphological class of a colony.
type GrowthForm uint8

const (
	Encrusting    GrowthForm = iota // Leather corals
	Hemispherical                   // Brain corals
	Tabular                         // Table corals
	Branching                       // Staghorn corals
	Corymbose                       // Plate corals
)

// NumForms is the number of growth forms.
const NumForms = 5

// AllForms lists every growth form in declaration order.
func AllForms() [NumForms]GrowthForm {
	return [NumForms]GrowthForm{Encrusting, Hemispherical, Tabular, Branching, Corymbose}
}

// String returns the lowercase name of the form, as used in config files.
func (f GrowthForm) String() string {
	switch f {
	case Encrusting:
		return "encrusting"
	case Hemispherical:
		return "hemispherical"
	case Tabular:
		return "tabular"
	case Branching:
		return "branching"
	case Corymbose:
		return "corymbose"
	}
	panic(fmt.Sprintf("components: invalid growth form %d", uint8(f)))
}

// Valid reports whether f is one of the five declared forms.
func (f GrowthForm) Valid() bool {
	return f < NumForms
}

// ParseGrowthForm converts a form name to a GrowthForm.
func ParseGrowthForm(name string) (GrowthForm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "encrusting":
		return Encrusting, nil
	case "hemispherical":
		return Hemispherical, nil
	case "tabular":
		return Tabular, nil
	case "branching":
		return Branching, nil
	case "corymbose":
		return Corymbose, nil
	}
	return 0, fmt.Errorf("unknown growth form %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (f GrowthForm) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid growth form %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *GrowthForm) UnmarshalText(text []byte) error {
	parsed, err := ParseGrowthForm(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Color returns the display color of the form. Hues are spaced 72 degrees apart.
func (f GrowthForm) Color() color.RGBA {
	switch f {
	case Encrusting:
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	case Hemispherical:
		return color.RGBA{R: 204, G: 255, B: 0, A: 255}
	case Tabular:
		return color.RGBA{R: 0, G: 255, B: 102, A: 255}
	case Branching:
		return color.RGBA{R: 0, G: 102, B: 255, A: 255}
	case Corymbose:
		return color.RGBA{R: 204, G: 0, B: 255, A: 255}
	}
	panic(fmt.Sprintf("components: invalid growth form %d", uint8(f)))
}

// DeadColor is the display color of dead standing structure.
var DeadColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
