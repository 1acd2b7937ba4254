package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding of a Store.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "parquet":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unsupported store format: %s (supported: json, yaml, parquet)", name)
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes s to w in the given format.
func Encode(w io.Writer, s *Store, format Format) error {
	items := s.snapshot()

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(items); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(items); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return nil
	case FormatParquet:
		return writeParquet(w, items)
	}
	return fmt.Errorf("unsupported store format: %s", format)
}

// Decode reads a Store encoded in the given format.
func Decode(data []byte, format Format) (*Store, error) {
	items := make(map[string]Item)

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	case FormatParquet:
		var err error
		items, err = readParquet(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported store format: %s", format)
	}

	s := New()
	for key, item := range items {
		s.Insert(key, item)
	}
	return s, nil
}

// Save writes s to path, choosing the format from the extension.
func Save(path string, s *Store) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return SaveAs(path, s, format)
}

// SaveAs writes s to path in the given format.
func SaveAs(path string, s *Store, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	slog.Debug("Store written", "path", path, "format", format, "items", s.Len(), "size_bytes", buf.Len())
	return nil
}

// Load reads the store file at path, choosing the format from the extension.
func Load(path string) (*Store, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Opening store file", "path", path, "format", format)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}

	s, err := Decode(data, format)
	if err != nil {
		return nil, err
	}

	slog.Debug("Store loaded", "items", s.Len())
	return s, nil
}
