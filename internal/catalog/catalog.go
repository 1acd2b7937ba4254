// Package catalog models the hierarchical shelf/book/page catalog of the
// refractive index database.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/ria/internal/yamlschema"
)

// ErrInvalidCatalog is wrapped when a catalog document does not match the
// catalog schema. It is fatal for the whole load.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

var catalogSchema = yamlschema.MustCompile("catalog.schema.json", catalogSchemaJSON)

// Catalog is the ordered list of shelves.
type Catalog []Shelf

// Shelf is the coarsest level, usually a subject area.
type Shelf struct {
	Key     string         `yaml:"SHELF"`
	Name    string         `yaml:"name"`
	Info    string         `yaml:"info,omitempty"`
	Content []ShelfContent `yaml:"content"`
}

// Divider is a structural label that never produces data.
type Divider struct {
	Label string `yaml:"DIVIDER"`
}

// ShelfContent is either a Divider or a Book. Exactly one field is set.
type ShelfContent struct {
	Divider *Divider
	Book    *Book
}

// Book groups the pages of one material.
type Book struct {
	Key     string        `yaml:"BOOK"`
	Name    string        `yaml:"name"`
	Info    string        `yaml:"info,omitempty"`
	Content []BookContent `yaml:"content"`
}

// BookContent is either a Divider or a Page. Exactly one field is set.
type BookContent struct {
	Divider *Divider
	Page    *Page
}

// Page references one material data file, relative to the data directory.
type Page struct {
	Key  PageKey `yaml:"PAGE"`
	Name string  `yaml:"name"`
	Data string  `yaml:"data"`
	Info string  `yaml:"info,omitempty"`
}

// PageKey is a page identifier. Some catalogs use bare integers as page keys;
// those keep their literal digits, leading zeros included.
type PageKey string

func (k *PageKey) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: PAGE must be a scalar", node.Line)
	}
	if node.Tag == "!!int" && !isDigits(node.Value) {
		return fmt.Errorf("line %d: numeric PAGE %q must be plain decimal digits", node.Line, node.Value)
	}
	*k = PageKey(node.Value)
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *ShelfContent) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case hasKey(node, "DIVIDER"):
		c.Divider = &Divider{}
		return node.Decode(c.Divider)
	case hasKey(node, "BOOK"):
		c.Book = &Book{}
		return node.Decode(c.Book)
	}
	return fmt.Errorf("line %d: shelf content must be a DIVIDER or a BOOK", node.Line)
}

func (c *BookContent) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case hasKey(node, "DIVIDER"):
		c.Divider = &Divider{}
		return node.Decode(c.Divider)
	case hasKey(node, "PAGE"):
		c.Page = &Page{}
		return node.Decode(c.Page)
	}
	return fmt.Errorf("line %d: book content must be a DIVIDER or a PAGE", node.Line)
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Parse validates and decodes a catalog document.
func Parse(data []byte) (Catalog, error) {
	if err := catalogSchema.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return catalog, nil
}

// Load reads and parses the catalog file at path.
func Load(path string) (Catalog, error) {
	slog.Debug("Opening catalog file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Catalog parsed", "shelves", len(catalog))
	return catalog, nil
}

// PageRef is a page together with the shelf and book it belongs to.
type PageRef struct {
	ShelfKey  string
	ShelfName string
	BookKey   string
	BookName  string
	Page      Page
}

// Pages yields every page in document order. Dividers are skipped.
func (c Catalog) Pages() iter.Seq[PageRef] {
	return func(yield func(PageRef) bool) {
		for _, shelf := range c {
			for _, sc := range shelf.Content {
				if sc.Book == nil {
					continue
				}
				for _, bc := range sc.Book.Content {
					if bc.Page == nil {
						continue
					}
					ref := PageRef{
						ShelfKey:  shelf.Key,
						ShelfName: shelf.Name,
						BookKey:   sc.Book.Key,
						BookName:  sc.Book.Name,
						Page:      *bc.Page,
					}
					if !yield(ref) {
						return
					}
				}
			}
		}
	}
}
