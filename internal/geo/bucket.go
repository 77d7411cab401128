package geo

import "math"

// Sector identifies a 1°x1° latitude/longitude grid cell. The cell spans
// [Lat, Lat+1) x [Lon, Lon+1) degrees.
type Sector struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

// SectorOf assigns a position to its grid sector by flooring both coordinates.
// Floor (not truncation) keeps western/southern hemispheres on the correct cell:
// -110.935 belongs to sector -111.
func SectorOf(p Point) Sector {
	return Sector{
		Lat: int(math.Floor(p.Lat)),
		Lon: int(math.Floor(p.Lon)),
	}
}

// WindowStart returns the start of the fixed-width time window containing the
// given Unix timestamp.
func WindowStart(timestamp, widthSecs int64) int64 {
	return (timestamp / widthSecs) * widthSecs
}
