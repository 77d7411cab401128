package flight

// Flight is a single flight plan record from the input batch. Field names map
// to the JSON keys used by the flight data files. Records are read-only for
// the duration of a detection run.
type Flight struct {
	ACID             string  `json:"ACID"`              // Callsign, unique per batch
	PlaneType        string  `json:"Plane type"`        // e.g. "Boeing 737-800"
	Route            string  `json:"route"`             // Inline waypoints, e.g. "49.97N/110.935W 50.12N/111.2W"
	Altitude         *int    `json:"altitude"`          // Cruise altitude in feet, nil when not reported
	DepartureAirport string  `json:"departure airport"` // ICAO code
	ArrivalAirport   string  `json:"arrival airport"`   // ICAO code
	DepartureTime    int64   `json:"departure time"`    // Unix seconds (UTC)
	AircraftSpeed    float64 `json:"aircraft speed"`    // Cruise speed in knots
	Passengers       int     `json:"passengers"`
	IsCargo          bool    `json:"is_cargo"`
}

// Simulatable reports whether the flight carries enough data to reconstruct a
// trajectory at all. Flights without a positive speed are excluded from
// trajectory-based detection, never treated as errors.
func (f *Flight) Simulatable() bool {
	return f.AircraftSpeed > 0
}

// Issue is a single operational constraint violation found by validation.
type Issue struct {
	ACID    string `json:"flight"`
	Problem string `json:"issue"`
}
