package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/geonovis/geonovis/internal/domain/boundary"
	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/geonovis/geonovis/internal/domain/session"
	"github.com/geonovis/geonovis/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// formatRegions renders the catalog as one line per region.
//
//	⚡ 3 regions
//	  us      geocodes boundary  United States of America
//	  eu      geocodes
func formatRegions(entries []catalog.Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d regions%s\n", colorBold, len(entries), colorReset))

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Region))
	}

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s%-*s%s  %s %s",
			colorCyan, width, e.Region, colorReset,
			flag(e.Geocodes, "geocodes"), flag(e.Boundary, "boundary")))
		if e.Name != "" {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorGray, e.Name, colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// flag prints label when set, or blank padding of the same width.
func flag(set bool, label string) string {
	if set {
		return label
	}
	return strings.Repeat(" ", len(label))
}

// formatDegraded renders degraded loads, one per line.
//
//	⚠ 2 degraded
//	  xx  missing    assets/geocodes/xx-codes.json
//	  yy  malformed  assets/geocodes/yy-codes.json  unexpected EOF
func formatDegraded(entries []ports.Degradation) string {
	if len(entries) == 0 {
		return "⚡ no degraded loads recorded\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚠ %d degraded%s\n", colorYellow, len(entries), colorReset))
	for _, d := range entries {
		region := d.Region
		if region == "" {
			region = `""`
		}
		sb.WriteString(fmt.Sprintf("  %s%s%s  %-14s", colorCyan, region, colorReset, d.Reason))
		if d.Path != "" {
			sb.WriteString("  " + d.Path)
		}
		if d.Detail != "" {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorGray, d.Detail, colorReset))
		}
		if d.At > 0 {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorGray, time.Unix(d.At, 0).Format(time.DateTime), colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatCheck renders boundary validation results with a trailing tally.
func formatCheck(reports []boundary.Report) string {
	var sb strings.Builder
	failed := 0
	for _, r := range reports {
		if r.OK() {
			s := r.Summary
			sb.WriteString(fmt.Sprintf("  %s✓%s %s  %d features (%d polygon, %d multipolygon, %d other, %d null)\n",
				colorGreen, colorReset, r.Region, s.Features, s.Polygons, s.MultiPolygons, s.Other, s.NullGeometry))
			continue
		}
		failed++
		sb.WriteString(fmt.Sprintf("  %s✗%s %s  %v\n", colorRed, colorReset, r.Region, r.Err))
	}
	sb.WriteString(fmt.Sprintf("%s⚡ %d checked, %d failed%s\n", colorBold, len(reports), failed, colorReset))
	return sb.String()
}

// formatStats renders session codec size ratios.
func formatStats(s session.Stats) string {
	return fmt.Sprintf("json %d → msgpack %d (%.2fx) → brotli %d (%.2fx) → token %d │ total %.2fx\n",
		s.JSONSize, s.MsgpackSize, s.MsgpackRatio, s.CompressedSize, s.CompressionRatio, s.FinalSize, s.TotalRatio)
}
