package storecmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Wrap > 0 soft-wraps cells wider than
// Wrap characters.
type column struct {
	Title string
	Right bool
	Wrap  int
}

var (
	summaryColumns = []column{
		{Title: "Pages", Right: true},
		{Title: "Stored", Right: true},
		{Title: "Overwritten", Right: true},
		{Title: "Skipped", Right: true},
	}
	skipColumns = []column{
		{Title: "Skipped key"},
		{Title: "Stage"},
		{Title: "Error", Wrap: 72},
	}
	keyColumns = []column{
		{Title: "Key"},
		{Title: "Shelf"},
		{Title: "Book"},
		{Title: "Page", Wrap: 60},
	}
	queryColumns = []column{
		{Title: "Key"},
		{Title: "Wavelength (µm)", Right: true},
		{Title: "n", Right: true},
		{Title: "k", Right: true},
		{Title: "Note", Wrap: 60},
	}
)

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		header = append(header, c.Title)

		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.Right {
			cfg.Align = text.AlignRight
		}
		if c.Wrap > 0 {
			cfg.WidthMax = c.Wrap
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	// Short rows are padded so every row spans the header.
	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
