package airspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
)

const sampleAirportsCSV = `"id","ident","type","name","latitude_deg","longitude_deg","elevation_ft"
1,"CYYZ","large_airport","Toronto Pearson International Airport",43.68,-79.63,569
2,"CYVR","large_airport","Vancouver International Airport",49.19,-123.18,14
3,"CYYC","large_airport","Calgary International Airport",51.11,-114.02,3557
4,"","closed","Unnamed strip",50.0,-100.0,
5,"XBAD","small_airport","Broken row",not-a-number,-100.0,
`

const sampleAircraftJSON = `{
	"categories": {
		"Wide-body": ["Boeing 787-9", "Boeing 777-300ER", "Airbus A330"],
		"Narrow-body": ["Boeing 737-800", "Boeing 737 MAX 8", "Airbus A320", "Airbus A321", "Airbus A220-300"],
		"Regional": ["Dash 8-400", "Embraer E195-E2"],
		"Cargo": ["Boeing 767-300F", "Boeing 757-200F", "Airbus A300-600F"]
	},
	"altitude_ranges": {
		"Regional": [22000, 28000],
		"Narrow-body": [28000, 39000],
		"Wide-body": [31000, 43000],
		"Cargo": [28000, 41000]
	},
	"speed_constraints": {
		"Dash 8-400": [310, 410],
		"Embraer E195-E2": [370, 500],
		"Airbus A220-300": [370, 500],
		"Narrow-body": [415, 505],
		"Wide-body": [430, 505],
		"Cargo": [410, 505]
	}
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadTestAircraftDB(t *testing.T) *AircraftDB {
	t.Helper()
	db, err := LoadAircraftDB(writeTemp(t, "aircraft_types.json", sampleAircraftJSON))
	require.NoError(t, err)
	return db
}

func altPtr(ft int) *int { return &ft }

// ---------------------------------------------------------------------------
// Airports table
// ---------------------------------------------------------------------------

func TestLoadAirports(t *testing.T) {
	airports, err := LoadAirports(writeTemp(t, "airports.csv", sampleAirportsCSV))
	require.NoError(t, err)

	// Empty ident and unparseable latitude rows are dropped.
	assert.Equal(t, 3, airports.Count())

	p, ok := airports.Lookup("CYYZ")
	require.True(t, ok)
	assert.InDelta(t, 43.68, p.Lat, 1e-9)
	assert.InDelta(t, -79.63, p.Lon, 1e-9)

	_, ok = airports.Lookup("KJFK")
	assert.False(t, ok)
}

func TestLoadAirportsMissingFile(t *testing.T) {
	_, err := LoadAirports(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestAirportsNilLookup(t *testing.T) {
	var airports *Airports
	_, ok := airports.Lookup("CYYZ")
	assert.False(t, ok)
	assert.Zero(t, airports.Count())
}

func TestNewAirports(t *testing.T) {
	airports := NewAirports(map[string]geo.Point{"CYOW": {Lat: 45.32, Lon: -75.67}})
	p, ok := airports.Lookup("CYOW")
	require.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 45.32, Lon: -75.67}, p)
}

// ---------------------------------------------------------------------------
// Aircraft tables
// ---------------------------------------------------------------------------

func TestAircraftCategory(t *testing.T) {
	db := loadTestAircraftDB(t)

	assert.Equal(t, "Wide-body", db.Category("Boeing 787-9"))
	assert.Equal(t, "Narrow-body", db.Category("Airbus A220-300"))
	assert.Equal(t, "Regional", db.Category("Dash 8-400"))
	assert.Equal(t, "Cargo", db.Category("Boeing 767-300F"))
	assert.Equal(t, CategoryUnknown, db.Category("Concorde"))
	assert.Equal(t, CategoryUnknown, db.Category(""))
}

func TestValidateMissingPlaneType(t *testing.T) {
	db := loadTestAircraftDB(t)

	// Missing type short-circuits: the out-of-range altitude is not reported.
	issues := db.Validate(&flight.Flight{ACID: "ACA1", Altitude: altPtr(99000), AircraftSpeed: 450})
	require.Len(t, issues, 1)
	assert.Equal(t, "ACA1", issues[0].ACID)
	assert.Equal(t, "Missing plane type", issues[0].Problem)
}

func TestValidateAltitude(t *testing.T) {
	db := loadTestAircraftDB(t)

	// In range, no issue.
	issues := db.Validate(&flight.Flight{
		ACID: "ACA2", PlaneType: "Boeing 787-9", Altitude: altPtr(35000), AircraftSpeed: 470,
	})
	assert.Empty(t, issues)

	// Below the wide-body floor.
	issues = db.Validate(&flight.Flight{
		ACID: "ACA3", PlaneType: "Boeing 787-9", Altitude: altPtr(25000), AircraftSpeed: 470,
	})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Problem, "Altitude 25000 ft out of allowed range (31000-43000) for Wide-body aircraft")

	// Unreported altitude skips the altitude check entirely.
	issues = db.Validate(&flight.Flight{
		ACID: "ACA4", PlaneType: "Boeing 787-9", AircraftSpeed: 470,
	})
	assert.Empty(t, issues)
}

func TestValidateSpeed(t *testing.T) {
	db := loadTestAircraftDB(t)

	// Type-specific constraint wins over the category constraint: 380 kt is
	// legal for an A220-300 even though the narrow-body floor is 415.
	issues := db.Validate(&flight.Flight{
		ACID: "ACA5", PlaneType: "Airbus A220-300", Altitude: altPtr(30000), AircraftSpeed: 380,
	})
	assert.Empty(t, issues)

	// Turboprop ceiling.
	issues = db.Validate(&flight.Flight{
		ACID: "ACA6", PlaneType: "Dash 8-400", Altitude: altPtr(25000), AircraftSpeed: 450,
	})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Problem, "Speed 450 knots out of allowed range (310-410) for Dash 8-400")

	// Category fallback for a type with no specific rule.
	issues = db.Validate(&flight.Flight{
		ACID: "ACA7", PlaneType: "Boeing 737-800", Altitude: altPtr(35000), AircraftSpeed: 400,
	})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Problem, "Speed 400 knots out of allowed range (415-505) for Boeing 737-800")
}

func TestValidateUnknownTypeSkipsChecks(t *testing.T) {
	db := loadTestAircraftDB(t)

	issues := db.Validate(&flight.Flight{
		ACID: "ACA8", PlaneType: "Concorde", Altitude: altPtr(60000), AircraftSpeed: 1150,
	})
	assert.Empty(t, issues)
}

func TestValidateMultipleIssues(t *testing.T) {
	db := loadTestAircraftDB(t)

	issues := db.Validate(&flight.Flight{
		ACID: "ACA9", PlaneType: "Embraer E195-E2", Altitude: altPtr(35000), AircraftSpeed: 550,
	})
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Problem, "Altitude 35000 ft out of allowed range (22000-28000) for Regional aircraft")
	assert.Contains(t, issues[1].Problem, "Speed 550 knots out of allowed range (370-500) for Embraer E195-E2")
}

func TestRangeRoundTrip(t *testing.T) {
	r := Range{Min: 310, Max: 410}
	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[310, 410]`, string(data))

	var back Range
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, r, back)
}
