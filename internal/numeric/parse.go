// Package numeric parses the whitespace and newline delimited text fields of
// material records into float64 values.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every failure returned from this package.
var ErrParse = errors.New("numeric parse error")

// Coefficients splits text on whitespace and parses every token.
func Coefficients(text string) ([]float64, error) {
	fields := strings.Fields(text)
	values := make([]float64, 0, len(fields))
	for i, field := range fields {
		v, err := parseFloat(field)
		if err != nil {
			return nil, fmt.Errorf("%w: coefficient %d: %w", ErrParse, i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// WavelengthRange reads the first two whitespace separated tokens as min and
// max. Trailing tokens are ignored.
func WavelengthRange(text string) ([2]float64, error) {
	values, err := row(text, "minimum", "maximum")
	if err != nil {
		return [2]float64{}, fmt.Errorf("%w: wavelength range: %w", ErrParse, err)
	}
	return [2]float64{values[0], values[1]}, nil
}

// Tabulated2D parses one (wavelength, value) pair per line.
func Tabulated2D(text string) ([][2]float64, error) {
	var rows [][2]float64
	for i, line := range lines(text) {
		values, err := row(line, "wavelength", "refractive index value")
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, i+1, err)
		}
		rows = append(rows, [2]float64{values[0], values[1]})
	}
	return rows, nil
}

// Tabulated3D parses one (wavelength, n, k) triple per line.
func Tabulated3D(text string) ([][3]float64, error) {
	var rows [][3]float64
	for i, line := range lines(text) {
		values, err := row(line, "wavelength", "real refractive index value", "imaginary refractive index value")
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, i+1, err)
		}
		rows = append(rows, [3]float64{values[0], values[1], values[2]})
	}
	return rows, nil
}

// row parses the leading len(names) tokens of text. names label the columns
// in error messages.
func row(text string, names ...string) ([]float64, error) {
	fields := strings.Fields(text)
	values := make([]float64, len(names))
	for i, name := range names {
		if i >= len(fields) {
			return nil, fmt.Errorf("cannot find %s", name)
		}
		v, err := parseFloat(fields[i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		values[i] = v
	}
	return values, nil
}

// lines splits a block scalar into rows. A single trailing newline does not
// produce an extra empty row, but blank lines inside the block are rows and
// fail to parse.
func lines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// parseFloat accepts finite values only; stores must stay encodable as JSON.
func parseFloat(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("non-finite value %q", token)
	}
	return v, nil
}
