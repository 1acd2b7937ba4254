package storecmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/ria/internal/config"
	"github.com/lehigh-university-libraries/ria/internal/store"
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	var wavelengths []float64

	cmd := &cobra.Command{
		Use:   "query KEY [KEY...]",
		Short: "Evaluate n and k of stored materials at given wavelengths",
		Long: `Looks up each key in a built store and evaluates the refractive index n
and extinction coefficient k at every requested wavelength (micrometers).

Evaluation errors, such as a wavelength outside a formula's range, are
reported per row.`,
		Example: `  # Index of N-BK7 at the sodium d-line
  ria query glass:BK7:SCHOTT -W 0.5876

  # Several materials and wavelengths
  ria query main:Ag:Johnson main:Au:Johnson -W 0.4 -W 0.6 -W 0.8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeQuery(cfg, args, wavelengths, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("store", config.Defaults().Store, "Path to the store file")
	cmd.Flags().Float64SliceVarP(&wavelengths, "wavelength", "W", nil, "Wavelength in micrometers (repeatable)")
	_ = cmd.MarkFlagRequired("wavelength")

	return cmd
}

func executeQuery(cfg *config.Config, keys []string, wavelengths []float64, out io.Writer) error {
	s, err := store.Load(cfg.Store)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, key := range keys {
		item, ok := s.Get(key)
		if !ok {
			return fmt.Errorf("material %q not found in %s", key, cfg.Store)
		}
		rows = append(rows, queryRows(key, item, wavelengths)...)
	}

	_, err = fmt.Fprintln(out, renderTable(queryColumns, rows))
	return err
}

func queryRows(key string, item store.Item, wavelengths []float64) [][]string {
	rows := make([][]string, 0, len(wavelengths))
	for _, wl := range wavelengths {
		row := []string{key, strconv.FormatFloat(wl, 'g', -1, 64), "-", "-", ""}

		n, nErr := item.N(wl)
		if nErr == nil {
			row[2] = strconv.FormatFloat(n, 'f', 6, 64)
		}
		k, kErr := item.K(wl)
		if kErr == nil {
			row[3] = strconv.FormatFloat(k, 'f', 6, 64)
		}

		switch {
		case nErr != nil:
			row[4] = nErr.Error()
		case kErr != nil && item.HasK():
			row[4] = kErr.Error()
		}
		rows = append(rows, row)
	}
	return rows
}
