package cmd

import (
	"fmt"

	"github.com/geonovis/geonovis/internal/domain/boundary"
	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/geonovis/geonovis/internal/domain/geocode"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [region...]",
	Short: "Validate boundary GeoJSON files",
	Long:  "Parses every boundary file (or only the named regions) as a GeoJSON FeatureCollection.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	regions := args
	if len(regions) == 0 {
		cat := catalog.New("", cfg.GeoJSONDir)
		if err := cat.Refresh(); err != nil {
			return err
		}
		for _, e := range cat.List() {
			regions = append(regions, e.Region)
		}
	}

	reports := make([]boundary.Report, 0, len(regions))
	failed := 0
	for _, r := range regions {
		var rep boundary.Report
		if err := geocode.CheckRegion(r); err != nil {
			rep = boundary.Report{Region: r, Err: err}
		} else {
			rep = boundary.Check(r, catalog.BoundaryPath(cfg.GeoJSONDir, r))
		}
		if !rep.OK() {
			failed++
		}
		reports = append(reports, rep)
	}

	fmt.Fprint(cmd.OutOrStdout(), formatCheck(reports))
	if failed > 0 {
		return fmt.Errorf("%d of %d boundary files invalid", failed, len(reports))
	}
	return nil
}
