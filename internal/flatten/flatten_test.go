package flatten

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/lehigh-university-libraries/ria/internal/catalog"
	"github.com/lehigh-university-libraries/ria/internal/dispersion"
)

const bk7Material = `
REFERENCES: "SCHOTT Zemax catalog 2017-01-20b"
COMMENTS: "step 0.5 available"
DATA:
  - type: formula 2
    wavelength_range: 0.3 2.5
    coefficients: 0 1.03961212 0.00600069867 0.231792344 0.0200179144 1.01046945 103.560653
`

const silverMaterial = `
REFERENCES: "P. B. Johnson and R. W. Christy"
COMMENTS: ""
DATA:
  - type: tabulated nk
    data: |
        0.1879 1.07 1.212
        0.1916 1.10 1.232
`

const malformedMaterial = `
REFERENCES: "bad"
COMMENTS: ""
DATA:
  - type: formula 1
    wavelength_range: 0.2 0.7
    coefficients: 0 0.496 not-a-number
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func page(key, name, data string) catalog.BookContent {
	return catalog.BookContent{Page: &catalog.Page{Key: catalog.PageKey(key), Name: name, Data: data}}
}

func divider(label string) catalog.BookContent {
	return catalog.BookContent{Divider: &catalog.Divider{Label: label}}
}

func book(key, name string, content ...catalog.BookContent) catalog.ShelfContent {
	return catalog.ShelfContent{Book: &catalog.Book{Key: key, Name: name, Content: content}}
}

func shelf(key, name string, content ...catalog.ShelfContent) catalog.Shelf {
	return catalog.Shelf{Key: key, Name: name, Content: content}
}

func keysOf(t *testing.T, cat catalog.Catalog, files fstest.MapFS, opts ...Option) ([]string, Summary) {
	t.Helper()
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	s, summary, err := New(FSReader{FS: files}, opts...).Flatten(context.Background(), cat)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	return s.SortedKeys(), summary
}

func TestFlattenDividersAndPages(t *testing.T) {
	cat := catalog.Catalog{
		shelf("main", "MAIN - simple inorganic materials",
			catalog.ShelfContent{Divider: &catalog.Divider{Label: "Ag - Silver"}},
			book("Ag", "Ag (Silver)",
				divider("Experimental data"),
				page("Johnson", "Johnson and Christy 1972", "main/Ag/Johnson.yml"),
				page("Choi", "Choi et al. 2020", "main/Ag/Choi.yml"),
			),
		),
	}
	files := fstest.MapFS{
		"main/Ag/Johnson.yml": {Data: []byte(silverMaterial)},
		"main/Ag/Choi.yml":    {Data: []byte(silverMaterial)},
	}

	s, summary, err := New(FSReader{FS: files}, WithLogger(testLogger())).Flatten(context.Background(), cat)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	expected := []string{"main:Ag:Choi", "main:Ag:Johnson"}
	if got := s.SortedKeys(); !slices.Equal(got, expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	if summary.Pages != 2 || summary.Inserted != 2 || len(summary.Skipped) != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	item, _ := s.Get("main:Ag:Johnson")
	if item.Shelf != "MAIN - simple inorganic materials" || item.Book != "Ag (Silver)" || item.Page != "Johnson and Christy 1972" {
		t.Errorf("Unexpected names: %+v", item)
	}
	if item.References != "P. B. Johnson and R. W. Christy" {
		t.Errorf("Unexpected references: %q", item.References)
	}
	if len(item.Data) != 1 || item.Data[0].Type != dispersion.TabulatedNK || len(item.Data[0].Triples) != 2 {
		t.Errorf("Unexpected data: %+v", item.Data)
	}
}

func TestFlattenSkipsBrokenPages(t *testing.T) {
	cat := catalog.Catalog{
		shelf("glass", "GLASS",
			book("BK7", "N-BK7",
				page("SCHOTT", "SCHOTT", "glass/BK7/SCHOTT.yml"),
				page("broken", "broken", "glass/BK7/broken.yml"),
				page("OHARA", "OHARA", "glass/BK7/OHARA.yml"),
			),
		),
	}
	files := fstest.MapFS{
		"glass/BK7/SCHOTT.yml": {Data: []byte(bk7Material)},
		"glass/BK7/broken.yml": {Data: []byte(malformedMaterial)},
		"glass/BK7/OHARA.yml":  {Data: []byte(bk7Material)},
	}

	keys, summary := keysOf(t, cat, files)

	expected := []string{"glass:BK7:OHARA", "glass:BK7:SCHOTT"}
	if !slices.Equal(keys, expected) {
		t.Fatalf("Expected %v, got %v", expected, keys)
	}
	if len(summary.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped page, got %+v", summary.Skipped)
	}
	if skip := summary.Skipped[0]; skip.Key != "glass:BK7:broken" || skip.Stage != StageNumeric {
		t.Errorf("Unexpected skip: %+v", skip)
	}
}

func TestFlattenSkipStages(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		stage Stage
	}{
		{name: "missing file", files: fstest.MapFS{}, stage: StageRead},
		{name: "schema violation", files: fstest.MapFS{"p.yml": {Data: []byte("COMMENTS: no data\n")}}, stage: StageSchema},
		{name: "not yaml", files: fstest.MapFS{"p.yml": {Data: []byte("DATA: [\n")}}, stage: StageSchema},
		{name: "bad range", files: fstest.MapFS{"p.yml": {Data: []byte("DATA:\n  - type: formula 5\n    wavelength_range: 0.3\n    coefficients: 1\n")}}, stage: StageNumeric},
		{name: "infinite coefficient", files: fstest.MapFS{"p.yml": {Data: []byte("DATA:\n  - type: formula 5\n    wavelength_range: 0.3 2.5\n    coefficients: 1.5 inf 2\n")}}, stage: StageNumeric},
		{name: "nan tabulated value", files: fstest.MapFS{"p.yml": {Data: []byte("DATA:\n  - type: tabulated n\n    data: |\n      0.5 nan\n")}}, stage: StageNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := catalog.Catalog{shelf("s", "S", book("b", "B", page("p", "P", "p.yml")))}
			keys, summary := keysOf(t, cat, tt.files)
			if len(keys) != 0 {
				t.Errorf("Expected empty store, got %v", keys)
			}
			if len(summary.Skipped) != 1 || summary.Skipped[0].Stage != tt.stage {
				t.Errorf("Expected one %s skip, got %+v", tt.stage, summary.Skipped)
			}
			if tt.stage == StageRead && !errors.Is(summary.Skipped[0].Err, ErrRead) {
				t.Errorf("Expected ErrRead, got %v", summary.Skipped[0].Err)
			}
		})
	}
}

func TestFlattenNumericPageKey(t *testing.T) {
	doc := `
- SHELF: glass
  name: GLASS
  content:
    - BOOK: HIKARI-i
      name: HIKARI i-line
      content:
        - PAGE: 1234
          name: J-SK16
          data: glass/hikari/1234.yml
        - PAGE: "5678"
          name: J-SK18
          data: glass/hikari/5678.yml
`
	cat, err := catalog.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	files := fstest.MapFS{
		"glass/hikari/1234.yml": {Data: []byte(bk7Material)},
		"glass/hikari/5678.yml": {Data: []byte(bk7Material)},
	}

	keys, _ := keysOf(t, cat, files)
	expected := []string{"glass:HIKARI-i:1234", "glass:HIKARI-i:5678"}
	if !slices.Equal(keys, expected) {
		t.Errorf("Expected %v, got %v", expected, keys)
	}
}

func TestFlattenDuplicateKeysLastWins(t *testing.T) {
	for _, workers := range []int{1, 8} {
		cat := catalog.Catalog{
			shelf("main", "MAIN", book("Ag", "Ag",
				page("Johnson", "first", "a.yml"),
				page("Johnson", "second", "b.yml"),
			)),
			shelf("main", "MAIN again", book("Ag", "Ag",
				page("Johnson", "third", "c.yml"),
			)),
		}
		files := fstest.MapFS{
			"a.yml": {Data: []byte(bk7Material)},
			"b.yml": {Data: []byte(bk7Material)},
			"c.yml": {Data: []byte(silverMaterial)},
		}

		s, summary, err := New(FSReader{FS: files}, WithWorkers(workers), WithLogger(testLogger())).
			Flatten(context.Background(), cat)
		if err != nil {
			t.Fatalf("Flatten failed: %v", err)
		}

		item, ok := s.Get("main:Ag:Johnson")
		if !ok || item.Page != "third" || item.Shelf != "MAIN again" {
			t.Errorf("workers=%d: expected last page to win, got %+v", workers, item)
		}
		if s.Len() != 1 || summary.Inserted != 1 || summary.Overwritten != 2 {
			t.Errorf("workers=%d: unexpected summary %+v", workers, summary)
		}
	}
}

func TestFlattenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cat := catalog.Catalog{shelf("s", "S", book("b", "B", page("p", "P", "p.yml")))}
	s, _, err := New(FSReader{FS: fstest.MapFS{}}, WithLogger(testLogger())).Flatten(ctx, cat)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if s != nil {
		t.Error("Expected no store on cancellation")
	}
}

func TestDirReader(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "main", "Ag"), 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "main", "Ag", "Johnson.yml"), []byte(silverMaterial), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	reader := DirReader(base)
	for _, name := range []string{"main/Ag/Johnson.yml", "./main/Ag/Johnson.yml"} {
		data, err := reader.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", name, err)
		}
		if string(data) != silverMaterial {
			t.Errorf("Unexpected content for %s", name)
		}
	}

	if _, err := reader.ReadFile("../outside.yml"); err == nil {
		t.Error("Expected error for path escaping the base directory")
	}
}
