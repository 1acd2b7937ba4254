package dispersion

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfRange is returned when a wavelength falls outside a formula's
	// validity range.
	ErrOutOfRange = errors.New("wavelength outside the valid range")
	// ErrTabulatedUnsupported is returned for tabulated entries, which are
	// stored but not interpolated.
	ErrTabulatedUnsupported = errors.New("tabulated dispersion data are not implemented")
	// ErrCoefficientArity is returned when a formula needs more coefficients
	// than the entry holds.
	ErrCoefficientArity = errors.New("not enough coefficients for formula")
	// ErrNoRealData is returned when no entry supplies the real part.
	ErrNoRealData = errors.New("no real data found for item")
	// ErrNoImaginaryData is returned when no entry supplies the imaginary part.
	ErrNoImaginaryData = errors.New("no imaginary data found for item")
	// ErrUnknownType is returned for entries whose tag is not a known Kind.
	ErrUnknownType = errors.New("unknown dispersion data type")
)

// Index is the complex refractive index at one wavelength. K is only
// meaningful when HasK is set.
type Index struct {
	N    float64
	K    float64
	HasK bool
}

// Interpolate evaluates the entry at wavelength. None of the formulas resolve
// an imaginary part, so HasK is currently always false on success.
func (d Data) Interpolate(wavelength float64) (Index, error) {
	switch d.Type {
	case TabulatedK, TabulatedN, TabulatedNK:
		return Index{}, fmt.Errorf("%w: %s", ErrTabulatedUnsupported, d.Type)
	}
	if !d.Type.IsFormula() {
		return Index{}, fmt.Errorf("%w: %q", ErrUnknownType, d.Type)
	}

	if d.WavelengthRange == nil {
		return Index{}, fmt.Errorf("%w: %s has no wavelength range", ErrOutOfRange, d.Type)
	}
	if !d.WavelengthRange.Contains(wavelength) {
		return Index{}, fmt.Errorf("%w: %g not in [%g, %g]",
			ErrOutOfRange, wavelength, d.WavelengthRange.Min(), d.WavelengthRange.Max())
	}

	f := formulas[d.Type]
	n, err := f(d.Coefficients, wavelength)
	if err != nil {
		return Index{}, fmt.Errorf("%s: %w", d.Type, err)
	}
	return Index{N: n}, nil
}

// N returns the real refractive index from the first entry classified as
// real or both.
func N(data []Data, wavelength float64) (float64, error) {
	for _, d := range data {
		if r := d.Role(); r == Real || r == Both {
			idx, err := d.Interpolate(wavelength)
			if err != nil {
				return 0, err
			}
			return idx.N, nil
		}
	}
	return 0, ErrNoRealData
}

// K returns the extinction coefficient from the first entry classified as
// imaginary or both. It fails when that entry cannot offer an imaginary part.
func K(data []Data, wavelength float64) (float64, error) {
	for _, d := range data {
		if r := d.Role(); r == Imaginary || r == Both {
			idx, err := d.Interpolate(wavelength)
			if err != nil {
				return 0, err
			}
			if !idx.HasK {
				return 0, ErrNoImaginaryData
			}
			return idx.K, nil
		}
	}
	return 0, ErrNoImaginaryData
}

type formula func(c []float64, wavelength float64) (float64, error)

var formulas = map[Kind]formula{
	Formula1: sellmeier,
	Formula2: sellmeier2,
	Formula3: polynomial,
	Formula4: refractiveIndexInfo,
	Formula5: cauchy,
	Formula6: gases,
	Formula7: herzberger,
	Formula8: retro,
	Formula9: exotic,
}

// need fails unless c has at least n coefficients.
func need(c []float64, n int) error {
	if len(c) < n {
		return fmt.Errorf("%w: need %d, have %d", ErrCoefficientArity, n, len(c))
	}
	return nil
}

// n = sqrt(1 + c0 + Σ c[i]·λ²/(λ² − c[i+1]²)), i = 1, 3, 5, ...
func sellmeier(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	wl2 := wl * wl
	sum := 0.0
	for i := 1; i < len(c); i += 2 {
		if err := need(c, i+2); err != nil {
			return 0, err
		}
		sum += c[i] * wl2 / (wl2 - c[i+1]*c[i+1])
	}
	return math.Sqrt(1 + c[0] + sum), nil
}

// n = sqrt(1 + c0 + Σ c[i]·λ²/(λ² − c[i+1])), i = 1, 3, 5, ...
func sellmeier2(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	wl2 := wl * wl
	sum := 0.0
	for i := 1; i < len(c); i += 2 {
		if err := need(c, i+2); err != nil {
			return 0, err
		}
		sum += c[i] * wl2 / (wl2 - c[i+1])
	}
	return math.Sqrt(1 + c[0] + sum), nil
}

// powerSeries returns Σ c[i]·λ^c[i+1] for i = start, start+2, ...
func powerSeries(c []float64, wl float64, start int) (float64, error) {
	sum := 0.0
	for i := start; i < len(c); i += 2 {
		if err := need(c, i+2); err != nil {
			return 0, err
		}
		sum += c[i] * math.Pow(wl, c[i+1])
	}
	return sum, nil
}

// n = sqrt(c0 + Σ c[i]·λ^c[i+1])
func polynomial(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	sum, err := powerSeries(c, wl, 1)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(c[0] + sum), nil
}

// formula4RationalEnd is the index where the rational terms of formula 4 stop
// and the plain power terms begin.
const formula4RationalEnd = 9

// n = sqrt(c0 + c1·λ^c2/(λ² − c3^c4) + c5·λ^c6/(λ² − c7^c8) + Σ c[i]·λ^c[i+1]), i = 9, 11, ...
func refractiveIndexInfo(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	wl2 := wl * wl
	sum := 0.0
	for i := 1; i < len(c) && i < formula4RationalEnd; i += 4 {
		if err := need(c, i+4); err != nil {
			return 0, err
		}
		sum += c[i] * math.Pow(wl, c[i+1]) / (wl2 - math.Pow(c[i+2], c[i+3]))
	}
	tail, err := powerSeries(c, wl, formula4RationalEnd)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(c[0] + sum + tail), nil
}

// n = c0 + Σ c[i]·λ^c[i+1]
func cauchy(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	sum, err := powerSeries(c, wl, 1)
	if err != nil {
		return 0, err
	}
	return c[0] + sum, nil
}

// n = 1 + c0 + Σ c[i]/(c[i+1] − λ⁻²)
func gases(c []float64, wl float64) (float64, error) {
	if err := need(c, 1); err != nil {
		return 0, err
	}
	inv2 := 1 / (wl * wl)
	sum := 0.0
	for i := 1; i < len(c); i += 2 {
		if err := need(c, i+2); err != nil {
			return 0, err
		}
		sum += c[i] / (c[i+1] - inv2)
	}
	return 1 + c[0] + sum, nil
}

// n = c0 + c1/(λ² − 0.028) + c2/(λ² − 0.028)² + Σ c[i]·λ^(i−1), i = 3, 5, ...
func herzberger(c []float64, wl float64) (float64, error) {
	if err := need(c, 3); err != nil {
		return 0, err
	}
	l := wl*wl - 0.028
	sum := 0.0
	for i := 3; i < len(c); i += 2 {
		sum += c[i] * math.Pow(wl, float64(i-1))
	}
	return c[0] + c[1]/l + c[2]/(l*l) + sum, nil
}

// s = c0 + c1·λ²/(λ² − c2) + c3·λ²; n = sqrt((2s + 1)/(1 − s))
func retro(c []float64, wl float64) (float64, error) {
	if err := need(c, 4); err != nil {
		return 0, err
	}
	wl2 := wl * wl
	s := c[0] + c[1]*wl2/(wl2-c[2]) + c[3]*wl2
	return math.Sqrt((2*s + 1) / (1 - s)), nil
}

// n = sqrt(c0 + c1/(λ² − c2) + c3·(λ − c4)/((λ − c4)² + c5))
func exotic(c []float64, wl float64) (float64, error) {
	if err := need(c, 6); err != nil {
		return 0, err
	}
	d := wl - c[4]
	return math.Sqrt(c[0] + c[1]/(wl*wl-c[2]) + c[3]*d/(d*d+c[5])), nil
}
