// Package dispersion holds the normalized dispersion entries of a material and
// evaluates its complex refractive index at a given wavelength.
package dispersion

import "fmt"

// Kind is the tag of a dispersion entry. Its string form matches the "type"
// field of the source material records.
type Kind string

const (
	TabulatedK  Kind = "tabulated k"
	TabulatedN  Kind = "tabulated n"
	TabulatedNK Kind = "tabulated nk"
	Formula1    Kind = "formula 1" // Sellmeier
	Formula2    Kind = "formula 2" // Sellmeier-2
	Formula3    Kind = "formula 3" // Polynomial
	Formula4    Kind = "formula 4" // RefractiveIndex.INFO
	Formula5    Kind = "formula 5" // Cauchy
	Formula6    Kind = "formula 6" // Gases
	Formula7    Kind = "formula 7" // Herzberger
	Formula8    Kind = "formula 8" // Retro
	Formula9    Kind = "formula 9" // Exotic
)

// Kinds lists every supported tag.
var Kinds = []Kind{
	TabulatedK, TabulatedN, TabulatedNK,
	Formula1, Formula2, Formula3, Formula4, Formula5, Formula6, Formula7, Formula8, Formula9,
}

// ParseKind validates a type tag.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dispersion data type %q", s)
}

// IsFormula reports whether k is one of formula 1 through 9.
func (k Kind) IsFormula() bool {
	switch k {
	case Formula1, Formula2, Formula3, Formula4, Formula5, Formula6, Formula7, Formula8, Formula9:
		return true
	}
	return false
}

// Role says which part of the refractive index an entry supplies.
type Role int

const (
	Real Role = iota
	Imaginary
	Both
)

func (r Role) String() string {
	switch r {
	case Real:
		return "n"
	case Imaginary:
		return "k"
	case Both:
		return "nk"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Range is an inclusive [min, max] wavelength validity range.
type Range [2]float64

func (r Range) Min() float64 { return r[0] }
func (r Range) Max() float64 { return r[1] }

// Contains reports whether wavelength lies inside the range, bounds included.
// NaN is never contained.
func (r Range) Contains(wavelength float64) bool {
	return wavelength >= r[0] && wavelength <= r[1]
}

// Data is one normalized dispersion entry. Type selects which of the other
// fields are meaningful:
//   - TabulatedK, TabulatedN: Pairs of (wavelength, value)
//   - TabulatedNK: Triples of (wavelength, n, k)
//   - Formula1..Formula9: WavelengthRange and Coefficients
type Data struct {
	Type            Kind         `json:"type" yaml:"type"`
	Pairs           [][2]float64 `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	Triples         [][3]float64 `json:"triples,omitempty" yaml:"triples,omitempty"`
	WavelengthRange *Range       `json:"wavelength_range,omitempty" yaml:"wavelength_range,omitempty,flow"`
	Coefficients    []float64    `json:"coefficients,omitempty" yaml:"coefficients,omitempty,flow"`
}

// NewTabulated2D builds a TabulatedK or TabulatedN entry.
func NewTabulated2D(kind Kind, pairs [][2]float64) Data {
	return Data{Type: kind, Pairs: pairs}
}

// NewTabulatedNK builds a TabulatedNK entry.
func NewTabulatedNK(triples [][3]float64) Data {
	return Data{Type: TabulatedNK, Triples: triples}
}

// NewFormula builds a formula entry. kind must satisfy IsFormula.
func NewFormula(kind Kind, wavelengthRange Range, coefficients []float64) Data {
	r := wavelengthRange
	return Data{Type: kind, WavelengthRange: &r, Coefficients: coefficients}
}

// Role classifies the entry: tabulated n and every formula supply the real
// part, tabulated k the imaginary part and tabulated nk both.
func (d Data) Role() Role {
	switch d.Type {
	case TabulatedK:
		return Imaginary
	case TabulatedNK:
		return Both
	default:
		return Real
	}
}
