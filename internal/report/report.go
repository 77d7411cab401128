// Package report renders detection results as human-readable text blocks.
// The detectors never format anything themselves; everything here is
// presentation over already-computed records.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/skyward-ops/sectorwatch/internal/detector"
	"github.com/skyward-ops/sectorwatch/internal/geo"
)

// RiskLevel grades a hotspot's flight count for display. Detection decides
// whether a bucket is a hotspot at all; risk says how bad it is.
func RiskLevel(flightCount int) string {
	switch {
	case flightCount > 10:
		return "Critical: Severe controller overload"
	case flightCount > 7:
		return "High: Controller workload saturation"
	default:
		return "Moderate: Controller workload saturation"
	}
}

// sectorBounds renders a 1°x1° sector as hemisphere-qualified degree ranges,
// e.g. sector (49, -111) becomes "49–50N" and "111–110W".
func sectorBounds(s geo.Sector) (string, string) {
	latBound := fmt.Sprintf("%d–%dN", s.Lat, s.Lat+1)
	if s.Lat < 0 {
		latBound = fmt.Sprintf("%d–%dS", -(s.Lat + 1), -s.Lat)
	}

	lonBound := fmt.Sprintf("%d–%dE", s.Lon, s.Lon+1)
	if s.Lon < 0 {
		lonBound = fmt.Sprintf("%d–%dW", -s.Lon, -(s.Lon + 1))
	}

	return latBound, lonBound
}

// FormatHotspot renders one congestion hotspot as a display block.
// windowSecs is the configured congestion window width.
func FormatHotspot(h detector.Hotspot, windowSecs int64) string {
	latBound, lonBound := sectorBounds(h.Sector)
	start := time.Unix(h.WindowStart, 0).UTC()
	end := time.Unix(h.WindowStart+windowSecs, 0).UTC()

	var builder strings.Builder
	builder.WriteString("🔥 Airspace congestion detected\n")
	builder.WriteString(fmt.Sprintf("Sector (%s, %s)\n", latBound, lonBound))
	builder.WriteString(fmt.Sprintf("Time window: %s–%s UTC\n", start.Format("15:04"), end.Format("15:04")))
	builder.WriteString(fmt.Sprintf("Flights: %d\n", h.FlightCount))
	builder.WriteString(fmt.Sprintf("Risk: %s", RiskLevel(h.FlightCount)))
	return builder.String()
}

// FormatConflict renders one loss-of-separation record as a display block.
func FormatConflict(c detector.ConflictRecord) string {
	var builder strings.Builder
	builder.WriteString("⚠️ Loss-of-separation detected\n")
	builder.WriteString(fmt.Sprintf("Flights: %s / %s\n", c.Flight1, c.Flight2))
	builder.WriteString(fmt.Sprintf("Horizontal separation: %.2f nm\n", c.HorizontalNM))
	builder.WriteString(fmt.Sprintf("Vertical separation: %d ft\n", c.VerticalFT))
	builder.WriteString(fmt.Sprintf("Bearing: %.0f°T / %.0f°M\n", c.BearingTrue, c.BearingMag))
	builder.WriteString(fmt.Sprintf("First seen: %s UTC", time.Unix(c.FirstSeen, 0).UTC().Format("2006-01-02 15:04")))
	return builder.String()
}

// FormatRecommendation renders the advisor's verdict for a hotspot.
func FormatRecommendation(rec detector.Recommendation) string {
	return "💡 Optimization suggestion\n" + rec.Text
}

// Summary captures one analysis run for the text report.
type Summary struct {
	Flights   int
	Simulated int
	Issues    int
	Hotspots  int
	Conflicts int
	Elapsed   time.Duration
}

// FormatSummary renders the run totals.
func FormatSummary(s Summary) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Analyzed %d flights (%d simulated) in %s\n",
		s.Flights, s.Simulated, s.Elapsed.Round(time.Millisecond)))
	builder.WriteString(fmt.Sprintf("Validation issues: %d\n", s.Issues))
	builder.WriteString(fmt.Sprintf("Congestion hotspots: %d\n", s.Hotspots))
	builder.WriteString(fmt.Sprintf("Separation conflicts: %d", s.Conflicts))
	return builder.String()
}
