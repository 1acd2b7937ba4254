// Package yamlschema validates YAML documents against JSON Schemas.
package yamlschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles raw under the resource name.
func Compile(name string, raw []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{schema: schema}, nil
}

// MustCompile is like Compile but panics on error. Use it for embedded
// schemas only.
func MustCompile(name string, raw []byte) *Schema {
	s, err := Compile(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate decodes a YAML document and checks it against the schema.
func (s *Schema) Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// The validator understands the value shapes produced by encoding/json,
	// so route the YAML tree through it.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("failed to decode document for validation: %w", err)
	}

	if err := s.schema.Validate(normalized); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
