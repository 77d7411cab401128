package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-ops/sectorwatch/internal/airspace"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
)

// ---------------------------------------------------------------------------
// Route parsing
// ---------------------------------------------------------------------------

func TestParseRoute(t *testing.T) {
	waypoints := ParseRoute("49.97N/110.935W 50.12N/111.2W")
	require.Len(t, waypoints, 2)
	assert.Equal(t, geo.Point{Lat: 49.97, Lon: -110.935}, waypoints[0])
	assert.Equal(t, geo.Point{Lat: 50.12, Lon: -111.2}, waypoints[1])
}

func TestParseRouteHemispheres(t *testing.T) {
	waypoints := ParseRoute("33.95S/151.18E")
	require.Len(t, waypoints, 1)
	assert.Equal(t, geo.Point{Lat: -33.95, Lon: 151.18}, waypoints[0])
}

func TestParseRouteLowercaseSuffix(t *testing.T) {
	waypoints := ParseRoute("49.97n/110.935w 33.95s/151.18e")
	require.Len(t, waypoints, 2)
	assert.Equal(t, geo.Point{Lat: 49.97, Lon: -110.935}, waypoints[0])
	assert.Equal(t, geo.Point{Lat: -33.95, Lon: 151.18}, waypoints[1])
}

func TestParseRouteSkipsMalformedTokens(t *testing.T) {
	// Tokens without a slash and tokens whose numeric part fails to parse
	// contribute nothing; the rest of the route still parses.
	waypoints := ParseRoute("DIRECT 49.97N/110.935W abcN/12.0W 50.12N/xyzW")
	require.Len(t, waypoints, 1)
	assert.Equal(t, geo.Point{Lat: 49.97, Lon: -110.935}, waypoints[0])
}

func TestParseRouteGarbledSuffixDefaultsNorthEast(t *testing.T) {
	// An unrecognized suffix character is still consumed, and the value stays
	// positive (north/east).
	waypoints := ParseRoute("49.97X/110.935Q")
	require.Len(t, waypoints, 1)
	assert.Equal(t, geo.Point{Lat: 49.97, Lon: 110.935}, waypoints[0])
}

func TestParseRouteBareNumbersConsumeLastDigit(t *testing.T) {
	// The final character is always treated as the suffix, so a token with no
	// hemisphere letter loses its last digit. Longstanding parsing behavior;
	// the data files always carry suffixes.
	waypoints := ParseRoute("49.97/110.935")
	require.Len(t, waypoints, 1)
	assert.Equal(t, geo.Point{Lat: 49.9, Lon: 110.93}, waypoints[0])
}

func TestParseRouteEmpty(t *testing.T) {
	assert.Empty(t, ParseRoute(""))
	assert.Empty(t, ParseRoute("   \t  "))
	assert.Empty(t, ParseRoute("/110.935W N/W //"))
}

// ---------------------------------------------------------------------------
// Path assembly
// ---------------------------------------------------------------------------

func testAirports() *airspace.Airports {
	return airspace.NewAirports(map[string]geo.Point{
		"CYYC": {Lat: 51.11, Lon: -114.02},
		"CYWG": {Lat: 49.91, Lon: -97.24},
	})
}

func TestBuildPathWithEndpoints(t *testing.T) {
	f := &flight.Flight{
		ACID:             "ACA101",
		Route:            "50.5N/110.0W 50.2N/105.0W",
		DepartureAirport: "CYYC",
		ArrivalAirport:   "CYWG",
	}

	path := BuildPath(f, testAirports())
	require.Len(t, path, 4)
	assert.Equal(t, geo.Point{Lat: 51.11, Lon: -114.02}, path[0])
	assert.Equal(t, geo.Point{Lat: 50.5, Lon: -110.0}, path[1])
	assert.Equal(t, geo.Point{Lat: 49.91, Lon: -97.24}, path[3])
}

func TestBuildPathUnknownAirportsOmitted(t *testing.T) {
	f := &flight.Flight{
		ACID:             "ACA102",
		Route:            "50.5N/110.0W",
		DepartureAirport: "KJFK",
		ArrivalAirport:   "CYWG",
	}

	path := BuildPath(f, testAirports())
	require.Len(t, path, 2)
	assert.Equal(t, geo.Point{Lat: 50.5, Lon: -110.0}, path[0])
	assert.Equal(t, geo.Point{Lat: 49.91, Lon: -97.24}, path[1])
}

func TestBuildPathNilTableIsRouteOnly(t *testing.T) {
	f := &flight.Flight{
		ACID:             "ACA103",
		Route:            "50.5N/110.0W 50.2N/105.0W",
		DepartureAirport: "CYYC",
		ArrivalAirport:   "CYWG",
	}

	path := BuildPath(f, nil)
	require.Len(t, path, 2)
	assert.Equal(t, geo.Point{Lat: 50.5, Lon: -110.0}, path[0])
}

func TestBuildPathAirportsOnly(t *testing.T) {
	f := &flight.Flight{ACID: "ACA104", DepartureAirport: "CYYC", ArrivalAirport: "CYWG"}

	path := BuildPath(f, testAirports())
	require.Len(t, path, 2)
}

// ---------------------------------------------------------------------------
// Path length
// ---------------------------------------------------------------------------

func TestPathLength(t *testing.T) {
	path := []geo.Point{
		{Lat: 51.11, Lon: -114.02},
		{Lat: 50.5, Lon: -110.0},
		{Lat: 49.91, Lon: -97.24},
	}

	nm := PathLengthNM(path)
	km := PathLengthKM(path)
	assert.Greater(t, nm, 0.0)
	assert.InDelta(t, nm, km/geo.KMPerNM, 0.01)

	assert.Zero(t, PathLengthNM(nil))
	assert.Zero(t, PathLengthNM(path[:1]))
}
