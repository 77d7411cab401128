package airspace

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skyward-ops/sectorwatch/internal/flight"
)

// CategoryUnknown is returned for aircraft types absent from the tables.
// Unknown types skip constraint checks rather than producing issues.
const CategoryUnknown = "Unknown"

// Range is an inclusive [Min, Max] constraint interval, encoded in JSON as a
// two-element array.
type Range struct {
	Min float64
	Max float64
}

// UnmarshalJSON decodes a [min, max] pair.
func (r *Range) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	r.Min = pair[0]
	r.Max = pair[1]
	return nil
}

// MarshalJSON encodes the range back to a [min, max] pair.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Min, r.Max})
}

// Contains reports whether v lies within the inclusive range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// AircraftDB holds the aircraft classification and operating constraint
// tables. Altitude ranges are keyed by category; speed constraints are keyed
// by specific type first, falling back to category.
type AircraftDB struct {
	Categories       map[string][]string `json:"categories"`
	AltitudeRanges   map[string]Range    `json:"altitude_ranges"`
	SpeedConstraints map[string]Range    `json:"speed_constraints"`

	typeToCategory map[string]string
}

// LoadAircraftDB reads the aircraft tables from a JSON file.
func LoadAircraftDB(path string) (*AircraftDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading aircraft database: %w", err)
	}

	var db AircraftDB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing aircraft database: %w", err)
	}

	db.buildIndex()
	return &db, nil
}

func (db *AircraftDB) buildIndex() {
	db.typeToCategory = make(map[string]string)
	for category, types := range db.Categories {
		for _, planeType := range types {
			db.typeToCategory[planeType] = category
		}
	}
}

// Category returns the general category for a specific plane type, or
// CategoryUnknown when the type is not in the tables.
func (db *AircraftDB) Category(planeType string) string {
	if db == nil || planeType == "" {
		return CategoryUnknown
	}
	if category, ok := db.typeToCategory[planeType]; ok {
		return category
	}
	return CategoryUnknown
}

// Validate checks a flight against the operating constraint tables. Missing
// plane type is itself an issue; unknown types and categories without table
// entries skip the corresponding check.
func (db *AircraftDB) Validate(f *flight.Flight) []flight.Issue {
	var issues []flight.Issue

	if f.PlaneType == "" {
		return append(issues, flight.Issue{ACID: f.ACID, Problem: "Missing plane type"})
	}

	category := db.Category(f.PlaneType)

	if f.Altitude != nil {
		if altRange, ok := db.AltitudeRanges[category]; ok && !altRange.Contains(float64(*f.Altitude)) {
			issues = append(issues, flight.Issue{
				ACID: f.ACID,
				Problem: fmt.Sprintf("Altitude %d ft out of allowed range (%g-%g) for %s aircraft",
					*f.Altitude, altRange.Min, altRange.Max, category),
			})
		}
	}

	speedRange, ok := db.SpeedConstraints[f.PlaneType]
	if !ok {
		speedRange, ok = db.SpeedConstraints[category]
	}
	if ok && !speedRange.Contains(f.AircraftSpeed) {
		issues = append(issues, flight.Issue{
			ACID: f.ACID,
			Problem: fmt.Sprintf("Speed %g knots out of allowed range (%g-%g) for %s",
				f.AircraftSpeed, speedRange.Min, speedRange.Max, f.PlaneType),
		})
	}

	return issues
}
