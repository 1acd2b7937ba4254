package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/ria/internal/storecmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ria",
		Short: "Flatten and query a refractive index database",
		Long: `Ria turns a refractive index database (a catalog of shelves, books and
pages pointing at material files) into a flat key-value store, and evaluates
refractive index n and extinction coefficient k from it.

Settings come from flags, RIA_* environment variables (a .env file is
loaded when present) and an optional ria.yaml.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose || os.Getenv("RIA_VERBOSE") == "true" {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to a config file (default ./ria.yaml or $HOME/.ria/ria.yaml)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(storecmd.NewBuildCmd())
	cmd.AddCommand(storecmd.NewKeysCmd())
	cmd.AddCommand(storecmd.NewQueryCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
