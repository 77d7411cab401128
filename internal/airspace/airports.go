package airspace

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/skyward-ops/sectorwatch/internal/geo"
)

// Airports is a read-only table of airport reference coordinates keyed by
// ICAO code, loaded once at startup.
type Airports struct {
	byCode map[string]geo.Point
}

// NewAirports builds a table from an in-memory map.
func NewAirports(points map[string]geo.Point) *Airports {
	byCode := make(map[string]geo.Point, len(points))
	for code, p := range points {
		byCode[code] = p
	}
	return &Airports{byCode: byCode}
}

// LoadAirports parses an airport database CSV in the OurAirports column
// layout: ident at index 1, latitude at index 4, longitude at index 5. Rows
// with missing idents or unparseable coordinates are skipped.
func LoadAirports(path string) (*Airports, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening airport database: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading airport database header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading airport database: %w", err)
	}

	byCode := make(map[string]geo.Point, len(records))
	for _, record := range records {
		if len(record) < 6 {
			continue
		}

		ident := record[1]
		if ident == "" {
			continue
		}

		lat, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			continue
		}

		byCode[ident] = geo.Point{Lat: lat, Lon: lon}
	}

	return &Airports{byCode: byCode}, nil
}

// Lookup returns the coordinate for an ICAO code. Unknown codes report false;
// callers omit the endpoint rather than treating it as an error.
func (a *Airports) Lookup(code string) (geo.Point, bool) {
	if a == nil {
		return geo.Point{}, false
	}
	p, ok := a.byCode[code]
	return p, ok
}

// Count returns the number of airports in the table.
func (a *Airports) Count() int {
	if a == nil {
		return 0
	}
	return len(a.byCode)
}
