package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/geonovis/geonovis/internal/domain/geocode"
	"github.com/geonovis/geonovis/internal/ports"
	"github.com/spf13/cobra"
)

var (
	mergeVariant string
	mergePretty  bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <region>[,<region>...] ...",
	Short: "Merge geocodes for regions and print JSON",
	Long:  "Runs the same merge as GET /api/geocodes without a server. Degraded regions are reported on stderr.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeVariant, "variant", "", "table or records (overrides config)")
	mergeCmd.Flags().BoolVar(&mergePretty, "pretty", false, "Indent output")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	variant := cfg.Variant()
	if mergeVariant != "" {
		if variant, err = ports.ParseVariant(mergeVariant); err != nil {
			return err
		}
	}

	svc, err := geocode.NewService(geocode.Options{
		BasePath:    cfg.GeocodesDir,
		Variant:     variant,
		UniqueKey:   cfg.Geocodes.UniqueKey,
		MaxParallel: cfg.Geocodes.MaxParallel,
	})
	if err != nil {
		return err
	}

	res, err := svc.Merge(cmd.Context(), geocode.ParseRegions(strings.Join(args, ",")))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if mergePretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res.Value()); err != nil {
		return err
	}
	if len(res.Degraded) > 0 {
		fmt.Fprint(os.Stderr, formatDegraded(res.Degraded))
	}
	return nil
}
