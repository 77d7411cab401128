package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	EarthRadiusNM = 3440.065 // Earth radius in nautical miles
	EarthRadiusKM = 6371.0   // Earth radius in kilometers
	KMPerNM       = 1.852    // Kilometers per nautical mile
	FeetPerMeter  = 3.28084  // Feet per meter

	degToRad = math.Pi / 180.0
)

// Point is a geographic position in decimal degrees.
// North latitude and east longitude are positive.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// centralAngle returns the haversine central angle between two points in radians.
// The intermediate value is clamped to 1 before the inverse sine: floating-point
// rounding can push it fractionally above 1 for near-antipodal points.
func centralAngle(a, b Point) float64 {
	lat1 := a.Lat * degToRad
	lon1 := a.Lon * degToRad
	lat2 := b.Lat * degToRad
	lon2 := b.Lon * degToRad

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	if h > 1 {
		h = 1
	}

	return 2 * math.Asin(math.Sqrt(h))
}

// DistanceNM returns the great-circle distance between two points in nautical miles.
func DistanceNM(a, b Point) float64 {
	return EarthRadiusNM * centralAngle(a, b)
}

// DistanceKM returns the great-circle distance between two points in kilometers.
func DistanceKM(a, b Point) float64 {
	return EarthRadiusKM * centralAngle(a, b)
}

// Interpolate returns the point at the given fraction along the straight line
// from a to b in lat/lon space. The fraction is clamped to [0, 1]; positions
// are never extrapolated beyond the segment, and the endpoints are returned
// exactly rather than recomputed.
func Interpolate(a, b Point, fraction float64) Point {
	if fraction <= 0 {
		return a
	}
	if fraction >= 1 {
		return b
	}

	return Point{
		Lat: a.Lat + fraction*(b.Lat-a.Lat),
		Lon: a.Lon + fraction*(b.Lon-a.Lon),
	}
}

// Bearing returns the initial great-circle course from a to b in degrees
// (0 = North, 90 = East), normalized to 0-360.
func Bearing(a, b Point) float64 {
	lat1 := a.Lat * degToRad
	lon1 := a.Lon * degToRad
	lat2 := b.Lat * degToRad
	lon2 := b.Lon * degToRad

	y := math.Sin(lon2-lon1) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	bearing := math.Atan2(y, x) * 180.0 / math.Pi

	return math.Mod(bearing+360.0, 360.0)
}

// MagneticVariation returns the magnetic declination at a position and time in
// degrees (+East, -West), from the World Magnetic Model.
func MagneticVariation(p Point, altFt float64, date time.Time) (float64, error) {
	altM := altFt / FeetPerMeter

	loc := egm96.NewLocationGeodetic(p.Lat, p.Lon, altM)
	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0, err
	}

	return mag.D(), nil
}

// MagneticFromTrue converts a true course to a magnetic course given the local
// declination, normalized to 0-360.
func MagneticFromTrue(trueDeg, declination float64) float64 {
	return math.Mod(trueDeg-declination+360.0, 360.0)
}
