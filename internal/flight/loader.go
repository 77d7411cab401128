package flight

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFlights reads a JSON array of flight records from a file. Individual
// records that fail to decode or lack an ACID are skipped rather than failing
// the whole batch; the skip count is returned alongside the loaded flights.
func LoadFlights(path string) ([]*Flight, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading flight data: %w", err)
	}

	flights, skipped, err := ParseFlights(data)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return flights, skipped, nil
}

// ParseFlights decodes a JSON array of flight records. The array itself must
// decode; per-record failures only skip that record.
func ParseFlights(data []byte) ([]*Flight, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("expected a JSON array of flights: %w", err)
	}

	flights := make([]*Flight, 0, len(raw))
	skipped := 0

	for _, rec := range raw {
		var f Flight
		if err := json.Unmarshal(rec, &f); err != nil {
			skipped++
			continue
		}
		if f.ACID == "" {
			skipped++
			continue
		}
		flights = append(flights, &f)
	}

	return flights, skipped, nil
}
