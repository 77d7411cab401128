package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

func newTestStorage(t *testing.T) *FlightStorage {
	t.Helper()
	s, err := NewFlightStorage(filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func altPtr(v int) *int { return &v }

func testBatch() ([]*flight.Flight, map[string]trajectory.Trajectory) {
	flights := []*flight.Flight{
		{
			ACID:             "ACA101",
			PlaneType:        "Boeing 737-800",
			Route:            "49.0N/110.0W 49.0N/111.0W",
			Altitude:         altPtr(35000),
			DepartureAirport: "CYYC",
			ArrivalAirport:   "CYWG",
			DepartureTime:    1755000000,
			AircraftSpeed:    450,
			Passengers:       160,
		},
		{
			ACID:          "CJT520",
			PlaneType:     "Boeing 767-300F",
			DepartureTime: 1755000300,
			AircraftSpeed: 430,
			IsCargo:       true,
		},
	}

	trajs := map[string]trajectory.Trajectory{
		"ACA101": {
			1755000000: geo.Point{Lat: 49.0, Lon: -110.0},
			1755000060: geo.Point{Lat: 49.0, Lon: -110.2},
			1755000120: geo.Point{Lat: 49.0, Lon: -110.4},
		},
	}
	return flights, trajs
}

func TestArchiveBatchRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	flights, trajs := testBatch()

	require.NoError(t, s.ArchiveBatch(flights, trajs))

	// GetFlights orders by ACID, which matches the input order here. The
	// nil altitude on the cargo flight must survive as nil, not zero.
	got, err := s.GetFlights()
	require.NoError(t, err)
	assert.Equal(t, flights, got)

	samples, err := s.GetTrajectory("ACA101", 0)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "ACA101", samples[0].ACID)
	assert.Equal(t, int64(1755000000), samples[0].Timestamp)
	assert.Equal(t, int64(1755000120), samples[2].Timestamp)
	assert.Equal(t, -110.4, samples[2].Lon)
}

func TestArchiveBatchReplacesPrevious(t *testing.T) {
	s := newTestStorage(t)
	flights, trajs := testBatch()

	require.NoError(t, s.ArchiveBatch(flights, trajs))
	require.NoError(t, s.ArchiveBatch(flights[:1], trajs))

	got, err := s.GetFlights()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ACA101", got[0].ACID)
}

func TestGetTrajectoryLimit(t *testing.T) {
	s := newTestStorage(t)
	flights, trajs := testBatch()
	require.NoError(t, s.ArchiveBatch(flights, trajs))

	samples, err := s.GetTrajectory("ACA101", 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(1755000000), samples[0].Timestamp)
	assert.Equal(t, int64(1755000060), samples[1].Timestamp)
}

func TestGetTrajectoryUnknownFlight(t *testing.T) {
	s := newTestStorage(t)
	flights, trajs := testBatch()
	require.NoError(t, s.ArchiveBatch(flights, trajs))

	samples, err := s.GetTrajectory("GHOST99", 0)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestEmptyArchive(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetFlights()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.ArchiveBatch(nil, nil))
}
