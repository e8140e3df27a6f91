// geonovis serves per-region GeoJSON boundaries and merged geocode tables.
package main

import (
	"os"

	"github.com/geonovis/geonovis/cmd/geonovis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
