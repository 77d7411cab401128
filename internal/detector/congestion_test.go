package detector

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// windowT0 is aligned to a 900 second boundary, so it is also a window start.
const windowT0 = int64(1755000000)

// Short hop inside sector (49, -111); at 400 knots it takes ~18 seconds, so
// every sample of a flight departing inside a window stays in that window.
const sectorRoute = "49.5N/110.9W 49.5N/110.95W"

func congestionConfig() config.CongestionConfig {
	return config.CongestionConfig{SampleIntervalSecs: 90, WindowSecs: 900, FlightThreshold: 5}
}

func newCongestion(t *testing.T) *CongestionDetector {
	t.Helper()
	return NewCongestionDetector(congestionConfig(), 2, logger.NewNop())
}

func routeFlight(acid, route string, dep int64) *flight.Flight {
	return &flight.Flight{ACID: acid, Route: route, DepartureTime: dep, AircraftSpeed: 400}
}

// crowd builds n flights over the same route, departures staggered one
// minute apart inside a single window.
func crowd(prefix, route string, dep int64, n int) []*flight.Flight {
	flights := make([]*flight.Flight, 0, n)
	for i := 0; i < n; i++ {
		flights = append(flights, routeFlight(fmt.Sprintf("%s%03d", prefix, i+1), route, dep+int64(60*i)))
	}
	return flights
}

func TestDetectCongestionFlagsCrowdedSector(t *testing.T) {
	d := newCongestion(t)

	hotspots, err := d.Detect(context.Background(), crowd("ACA", sectorRoute, windowT0, 6))
	require.NoError(t, err)
	require.Len(t, hotspots, 1)

	h := hotspots[0]
	assert.Equal(t, geo.Sector{Lat: 49, Lon: -111}, h.Sector)
	assert.Equal(t, windowT0, h.WindowStart)
	assert.Equal(t, 6, h.FlightCount)
	assert.Equal(t, []string{"ACA001", "ACA002", "ACA003", "ACA004", "ACA005", "ACA006"}, h.Flights)
}

func TestDetectCongestionUnderThreshold(t *testing.T) {
	d := newCongestion(t)

	// Five distinct flights is not strictly more than the threshold.
	hotspots, err := d.Detect(context.Background(), crowd("ACA", sectorRoute, windowT0, 5))
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestDetectCongestionCountsFlightOnce(t *testing.T) {
	d := newCongestion(t)

	// The sixth flight crosses most of the sector and contributes four
	// samples to the bucket; it still counts as one flight.
	flights := crowd("ACA", sectorRoute, windowT0, 5)
	flights = append(flights, routeFlight("WJA880", "49.5N/110.9W 49.5N/110.1W", windowT0))

	hotspots, err := d.Detect(context.Background(), flights)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, 6, hotspots[0].FlightCount)
}

func TestDetectCongestionSortedOutput(t *testing.T) {
	d := newCongestion(t)

	// Three crowded buckets fed in reverse order: a later window, then the
	// same window one sector east, then the earliest bucket.
	var flights []*flight.Flight
	flights = append(flights, crowd("CCC", sectorRoute, windowT0+900, 6)...)
	flights = append(flights, crowd("BBB", "49.5N/109.9W 49.5N/109.95W", windowT0, 6)...)
	flights = append(flights, crowd("AAA", sectorRoute, windowT0, 6)...)

	hotspots, err := d.Detect(context.Background(), flights)
	require.NoError(t, err)
	require.Len(t, hotspots, 3)

	assert.Equal(t, geo.Sector{Lat: 49, Lon: -111}, hotspots[0].Sector)
	assert.Equal(t, windowT0, hotspots[0].WindowStart)
	assert.Equal(t, geo.Sector{Lat: 49, Lon: -110}, hotspots[1].Sector)
	assert.Equal(t, windowT0, hotspots[1].WindowStart)
	assert.Equal(t, geo.Sector{Lat: 49, Lon: -111}, hotspots[2].Sector)
	assert.Equal(t, windowT0+900, hotspots[2].WindowStart)

	// Same batch, same answer.
	again, err := d.Detect(context.Background(), flights)
	require.NoError(t, err)
	assert.Equal(t, hotspots, again)
}

func TestDetectCongestionSkipsNonSimulatable(t *testing.T) {
	d := newCongestion(t)

	// Five flyable flights plus one without speed and one without a route.
	// Counting either of the last two would tip the bucket over the
	// threshold; neither may be simulated.
	flights := crowd("ACA", sectorRoute, windowT0, 5)
	flights = append(flights,
		&flight.Flight{ACID: "DEAD01", Route: sectorRoute, DepartureTime: windowT0},
		&flight.Flight{ACID: "DEAD02", DepartureTime: windowT0, AircraftSpeed: 400},
	)

	hotspots, err := d.Detect(context.Background(), flights)
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestDetectCongestionCanceled(t *testing.T) {
	d := newCongestion(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, crowd("ACA", sectorRoute, windowT0, 64))
	assert.ErrorIs(t, err, context.Canceled)
}
