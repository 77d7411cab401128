package trajectory

import (
	"strconv"
	"strings"

	"github.com/skyward-ops/sectorwatch/internal/airspace"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
)

// ParseRoute converts an inline route string into an ordered list of waypoint
// coordinates. Tokens are whitespace-separated and look like "49.97N/110.935W".
// Malformed tokens are skipped, never fatal: a token without a slash, or whose
// numeric part fails to parse, contributes nothing. A missing or unrecognized
// hemisphere suffix defaults latitude to north and longitude to east.
func ParseRoute(route string) []geo.Point {
	var waypoints []geo.Point

	for _, token := range strings.Fields(route) {
		if !strings.Contains(token, "/") {
			continue
		}

		parts := strings.SplitN(token, "/", 2)

		lat, ok := parseCoord(parts[0], 'S')
		if !ok {
			continue
		}
		lon, ok := parseCoord(parts[1], 'W')
		if !ok {
			continue
		}

		waypoints = append(waypoints, geo.Point{Lat: lat, Lon: lon})
	}

	return waypoints
}

// parseCoord parses one half of a waypoint token. The final character is
// always consumed as the hemisphere suffix; only the given negative suffix
// (compared case-insensitively) flips the sign.
func parseCoord(s string, negative byte) (float64, bool) {
	if s == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, false
	}

	suffix := s[len(s)-1]
	if suffix == negative || suffix == negative+('a'-'A') {
		value = -value
	}

	return value, true
}

// BuildPath assembles a flight's complete path: the departure airport
// coordinate when its code resolves, the inline route waypoints, then the
// arrival airport coordinate. Unknown airport codes are omitted. A nil
// airport table yields a route-only path.
func BuildPath(f *flight.Flight, airports *airspace.Airports) []geo.Point {
	var path []geo.Point

	if p, ok := airports.Lookup(f.DepartureAirport); ok {
		path = append(path, p)
	}
	path = append(path, ParseRoute(f.Route)...)
	if p, ok := airports.Lookup(f.ArrivalAirport); ok {
		path = append(path, p)
	}

	return path
}

// PathLengthNM returns the summed great-circle length of a path in nautical miles.
func PathLengthNM(path []geo.Point) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		total += geo.DistanceNM(path[i], path[i+1])
	}
	return total
}

// PathLengthKM returns the summed great-circle length of a path in kilometers.
func PathLengthKM(path []geo.Point) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		total += geo.DistanceKM(path[i], path[i+1])
	}
	return total
}
