package cmd

import (
	"os"

	"github.com/geonovis/geonovis/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "geonovis",
	Short:        "geonovis - regional GeoJSON and geocode API",
	Long:         "Serves per-region boundary files and merges per-region geocode tables into one deduplicated response.",
	SilenceUsage: true,
}

// loadConfig reads --config (or ./geonovis.yaml when present).
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./"+config.DefaultFile+")")
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(degradedCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(configCmd)
}
