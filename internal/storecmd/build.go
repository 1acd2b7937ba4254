package storecmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/lehigh-university-libraries/ria/internal/catalog"
	"github.com/lehigh-university-libraries/ria/internal/config"
	"github.com/lehigh-university-libraries/ria/internal/flatten"
	"github.com/lehigh-university-libraries/ria/internal/store"
	"github.com/spf13/cobra"
)

// NewBuildCmd creates the build command, which flattens a catalog into a store file.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Flatten a refractive index catalog into a key-value store",
		Long: `Walks the catalog's shelves, books and pages, reads every referenced
material file, and writes one normalized record per page keyed by
"shelf:book:page".

Pages whose material file cannot be read or fails validation are skipped
and listed in the summary.`,
		Example: `  # Build results.json from the catalog in the current directory
  ria build

  # Build a parquet store from a database checkout
  ria build -i ./database/catalog-nk.yml -o ./results.parquet

  # Keep only the keys listed in a file
  ria build --include keys.txt --output subset.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeBuild(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	defaults := config.Defaults()
	cmd.Flags().StringP("input", "i", defaults.Catalog, "Path to the catalog file")
	cmd.Flags().String("data-dir", "", "Directory material paths are relative to (defaults to the catalog's directory)")
	cmd.Flags().StringP("output", "o", defaults.Output, "Path to the output store")
	cmd.Flags().StringP("format", "f", "", "Output format: json, yaml or parquet (defaults to the output extension)")
	cmd.Flags().String("include", "", "File listing the keys to keep")
	cmd.Flags().String("exclude", "", "File listing the keys to drop")
	cmd.Flags().IntP("workers", "w", defaults.Workers, "Number of material files parsed concurrently")

	return cmd
}

func executeBuild(ctx context.Context, cfg *config.Config, out io.Writer) error {
	format, err := outputFormat(cfg)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}

	engine := flatten.New(
		flatten.DirReader(cfg.ResolveDataDir()),
		flatten.WithWorkers(cfg.Workers),
		flatten.WithLogger(slog.Default()),
	)
	s, summary, err := engine.Flatten(ctx, cat)
	if err != nil {
		return fmt.Errorf("failed to flatten catalog: %w", err)
	}

	if cfg.Include != "" {
		keys, err := store.LoadKeyList(cfg.Include)
		if err != nil {
			return err
		}
		s.RetainKeys(keys)
		slog.Debug("Applied include list", "path", cfg.Include, "keys", len(keys), "remaining", s.Len())
	}
	if cfg.Exclude != "" {
		keys, err := store.LoadKeyList(cfg.Exclude)
		if err != nil {
			return err
		}
		s.RemoveMany(keys)
		slog.Debug("Applied exclude list", "path", cfg.Exclude, "keys", len(keys), "remaining", s.Len())
	}

	if err := store.SaveAs(cfg.Output, s, format); err != nil {
		return err
	}
	slog.Info("Wrote store", "path", cfg.Output, "format", format, "items", s.Len())

	_, err = fmt.Fprintln(out, formatSummary(summary, s.Len()))
	return err
}

func outputFormat(cfg *config.Config) (store.Format, error) {
	if cfg.Format != "" {
		return store.ParseFormat(cfg.Format)
	}
	return store.FormatFromPath(cfg.Output)
}

func formatSummary(summary flatten.Summary, stored int) string {
	result := renderTable(summaryColumns, [][]string{{
		strconv.Itoa(summary.Pages),
		strconv.Itoa(stored),
		strconv.Itoa(summary.Overwritten),
		strconv.Itoa(len(summary.Skipped)),
	}})

	if len(summary.Skipped) == 0 {
		return result
	}

	rows := make([][]string, 0, len(summary.Skipped))
	for _, skip := range summary.Skipped {
		rows = append(rows, []string{skip.Key, string(skip.Stage), skip.Err.Error()})
	}
	return result + "\n" + renderTable(skipColumns, rows)
}
