package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/ria/internal/dispersion"
)

// parquetItem is the row layout of the Parquet encoding: one row per item,
// with the dispersion entries as a repeated group.
type parquetItem struct {
	Key        string        `parquet:"key"`
	Shelf      string        `parquet:"shelf"`
	Book       string        `parquet:"book"`
	Page       string        `parquet:"page"`
	Comments   string        `parquet:"comments"`
	References string        `parquet:"references"`
	Data       []parquetData `parquet:"data"`
}

// parquetData flattens the variants of dispersion.Data into columns.
// Tabulated rows are stored column-wise in Wavelength, N and K.
type parquetData struct {
	Type         string    `parquet:"type"`
	HasRange     bool      `parquet:"has_range"`
	RangeMin     float64   `parquet:"range_min"`
	RangeMax     float64   `parquet:"range_max"`
	Coefficients []float64 `parquet:"coefficients"`
	Wavelength   []float64 `parquet:"wavelength"`
	N            []float64 `parquet:"n"`
	K            []float64 `parquet:"k"`
}

func toParquet(key string, item Item) parquetItem {
	row := parquetItem{
		Key:        key,
		Shelf:      item.Shelf,
		Book:       item.Book,
		Page:       item.Page,
		Comments:   item.Comments,
		References: item.References,
		Data:       make([]parquetData, 0, len(item.Data)),
	}

	for _, d := range item.Data {
		pd := parquetData{
			Type:         string(d.Type),
			Coefficients: d.Coefficients,
		}
		if d.WavelengthRange != nil {
			pd.HasRange = true
			pd.RangeMin = d.WavelengthRange.Min()
			pd.RangeMax = d.WavelengthRange.Max()
		}
		for _, p := range d.Pairs {
			pd.Wavelength = append(pd.Wavelength, p[0])
			if d.Type == dispersion.TabulatedK {
				pd.K = append(pd.K, p[1])
			} else {
				pd.N = append(pd.N, p[1])
			}
		}
		for _, t := range d.Triples {
			pd.Wavelength = append(pd.Wavelength, t[0])
			pd.N = append(pd.N, t[1])
			pd.K = append(pd.K, t[2])
		}
		row.Data = append(row.Data, pd)
	}
	return row
}

func fromParquet(row parquetItem) (Item, error) {
	item := Item{
		Shelf:      row.Shelf,
		Book:       row.Book,
		Page:       row.Page,
		Comments:   row.Comments,
		References: row.References,
		Data:       make([]dispersion.Data, 0, len(row.Data)),
	}

	for i, pd := range row.Data {
		kind, err := dispersion.ParseKind(pd.Type)
		if err != nil {
			return Item{}, fmt.Errorf("row %s data %d: %w", row.Key, i, err)
		}

		var d dispersion.Data
		switch kind {
		case dispersion.TabulatedN, dispersion.TabulatedK:
			values := pd.N
			if kind == dispersion.TabulatedK {
				values = pd.K
			}
			if len(values) != len(pd.Wavelength) {
				return Item{}, fmt.Errorf("row %s data %d: column length mismatch", row.Key, i)
			}
			pairs := make([][2]float64, len(values))
			for j := range values {
				pairs[j] = [2]float64{pd.Wavelength[j], values[j]}
			}
			d = dispersion.NewTabulated2D(kind, pairs)
		case dispersion.TabulatedNK:
			if len(pd.N) != len(pd.Wavelength) || len(pd.K) != len(pd.Wavelength) {
				return Item{}, fmt.Errorf("row %s data %d: column length mismatch", row.Key, i)
			}
			triples := make([][3]float64, len(pd.Wavelength))
			for j := range pd.Wavelength {
				triples[j] = [3]float64{pd.Wavelength[j], pd.N[j], pd.K[j]}
			}
			d = dispersion.NewTabulatedNK(triples)
		default:
			if !pd.HasRange {
				return Item{}, fmt.Errorf("row %s data %d: formula without wavelength range", row.Key, i)
			}
			d = dispersion.NewFormula(kind, dispersion.Range{pd.RangeMin, pd.RangeMax}, slices.Clone(pd.Coefficients))
		}
		item.Data = append(item.Data, d)
	}
	return item, nil
}

func writeParquet(w io.Writer, items map[string]Item) error {
	rows := make([]parquetItem, 0, len(items))
	for _, key := range slices.Sorted(maps.Keys(items)) {
		rows = append(rows, toParquet(key, items[key]))
	}

	writer := parquet.NewGenericWriter[parquetItem](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func readParquet(r io.ReaderAt, size int64) (map[string]Item, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[parquetItem](pf)
	defer reader.Close()

	items := make(map[string]Item, pf.NumRows())
	rows := make([]parquetItem, 128)

	for {
		// Zero the batch so the reader does not reuse slices already handed out.
		clear(rows)
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			item, convErr := fromParquet(row)
			if convErr != nil {
				return nil, fmt.Errorf("failed to decode parquet: %w", convErr)
			}
			items[row.Key] = item
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return items, nil
}
