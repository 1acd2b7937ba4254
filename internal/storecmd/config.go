package storecmd

import (
	"github.com/lehigh-university-libraries/ria/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig resolves settings for cmd, honoring the root --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(cmd, cfgFile)
}
