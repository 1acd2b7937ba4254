package storecmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/ria/internal/config"
	"github.com/lehigh-university-libraries/ria/internal/store"
	"github.com/spf13/cobra"
)

// NewKeysCmd creates the keys command.
func NewKeysCmd() *cobra.Command {
	var prefix string
	var long bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys of a built store",
		Long: `Prints the sorted keys of a store, one per line. The output can be
edited and passed back to "ria build --include" or "--exclude".`,
		Example: `  # List every key
  ria keys --store results.json

  # List glass keys with their names
  ria keys --prefix glass: --long`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return executeKeys(cfg, prefix, long, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("store", config.Defaults().Store, "Path to the store file")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list keys starting with this prefix")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show shelf, book and page names in a table")

	return cmd
}

func executeKeys(cfg *config.Config, prefix string, long bool, out io.Writer) error {
	s, err := store.Load(cfg.Store)
	if err != nil {
		return err
	}

	var keys []string
	for _, key := range s.SortedKeys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	if !long {
		for _, key := range keys {
			if _, err := fmt.Fprintln(out, key); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		item, _ := s.Get(key)
		rows = append(rows, []string{key, item.Shelf, item.Book, item.Page})
	}
	_, err = fmt.Fprintln(out, renderTable(keyColumns, rows))
	return err
}
