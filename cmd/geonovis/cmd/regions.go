package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/spf13/cobra"
)

var regionsJSON bool

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions with assets on disk",
	RunE:  runRegions,
}

func init() {
	regionsCmd.Flags().BoolVar(&regionsJSON, "json", false, "Output as JSON")
}

func runRegions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat := catalog.New(cfg.GeocodesDir, cfg.GeoJSONDir)
	if err := cat.Refresh(); err != nil {
		return err
	}
	entries := cat.List()

	if regionsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatRegions(entries))
	return nil
}
