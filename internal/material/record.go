// Package material decodes the per-page material files of a catalog and
// normalizes their dispersion entries.
package material

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/ria/internal/dispersion"
	"github.com/lehigh-university-libraries/ria/internal/numeric"
	"github.com/lehigh-university-libraries/ria/internal/yamlschema"
)

// ErrInvalidRecord is wrapped when a material file does not match the record
// schema.
var ErrInvalidRecord = errors.New("invalid material record")

//go:embed record.schema.json
var recordSchemaJSON []byte

var recordSchema = yamlschema.MustCompile("record.schema.json", recordSchemaJSON)

// Record is a material file as found on disk.
type Record struct {
	References string  `yaml:"REFERENCES"`
	Comments   string  `yaml:"COMMENTS"`
	Data       []Entry `yaml:"DATA"`

	// Auxiliary blocks kept as-is.
	Specs      map[string]any `yaml:"SPECS,omitempty"`
	Conditions map[string]any `yaml:"CONDITIONS,omitempty"`
}

// Entry is one raw DATA item, tagged by Type.
type Entry struct {
	Type            string `yaml:"type"`
	Data            Text   `yaml:"data,omitempty"`
	WavelengthRange Text   `yaml:"wavelength_range,omitempty"`
	Coefficients    Text   `yaml:"coefficients,omitempty"`
}

// Text is a scalar field read verbatim, so that a lone number such as
// "coefficients: 1.5" keeps its literal form.
type Text string

func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar, got %s", node.Line, kindName(node.Kind))
	}
	*t = Text(node.Value)
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	case yaml.DocumentNode:
		return "a document"
	}
	return "a scalar"
}

// Parse validates and decodes a material file.
func Parse(data []byte) (Record, error) {
	if err := recordSchema.Validate(data); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return record, nil
}

// Normalize converts every entry. The first failing entry fails the record.
func (r Record) Normalize() ([]dispersion.Data, error) {
	data := make([]dispersion.Data, 0, len(r.Data))
	for i, entry := range r.Data {
		d, err := entry.Normalize()
		if err != nil {
			return nil, fmt.Errorf("DATA[%d]: %w", i, err)
		}
		data = append(data, d)
	}
	return data, nil
}

// Normalize parses the text fields of the entry according to its type.
func (e Entry) Normalize() (dispersion.Data, error) {
	kind, err := dispersion.ParseKind(e.Type)
	if err != nil {
		return dispersion.Data{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	switch kind {
	case dispersion.TabulatedK, dispersion.TabulatedN:
		pairs, err := numeric.Tabulated2D(string(e.Data))
		if err != nil {
			return dispersion.Data{}, err
		}
		return dispersion.NewTabulated2D(kind, pairs), nil
	case dispersion.TabulatedNK:
		triples, err := numeric.Tabulated3D(string(e.Data))
		if err != nil {
			return dispersion.Data{}, err
		}
		return dispersion.NewTabulatedNK(triples), nil
	}

	if !kind.IsFormula() {
		return dispersion.Data{}, fmt.Errorf("%w: unhandled type %q", ErrInvalidRecord, kind)
	}

	wavelengthRange, err := numeric.WavelengthRange(string(e.WavelengthRange))
	if err != nil {
		return dispersion.Data{}, err
	}
	coefficients, err := numeric.Coefficients(string(e.Coefficients))
	if err != nil {
		return dispersion.Data{}, err
	}
	return dispersion.NewFormula(kind, wavelengthRange, coefficients), nil
}
