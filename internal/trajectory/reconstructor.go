package trajectory

import (
	"math"
	"sort"

	"github.com/skyward-ops/sectorwatch/internal/geo"
)

// minuteSecs is the shared discretization grid for trajectory keys. Flights
// are compared against each other at this resolution, so every trajectory
// must use the same grid regardless of its sampling cadence.
const minuteSecs = 60

// Trajectory maps minute-floored Unix timestamps to the interpolated position
// of one flight at that instant. Keys are generated in non-decreasing
// wall-clock order; a later sample landing on an existing key overwrites it.
type Trajectory map[int64]geo.Point

// Sample is one trajectory point in flat archive/API form.
type Sample struct {
	ACID      string  `json:"acid"`
	Timestamp int64   `json:"timestamp"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Samples flattens a trajectory into archive rows sorted by timestamp.
func (t Trajectory) Samples(acid string) []Sample {
	samples := make([]Sample, 0, len(t))
	for ts, pos := range t {
		samples = append(samples, Sample{ACID: acid, Timestamp: ts, Lat: pos.Lat, Lon: pos.Lon})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Timestamp < samples[j].Timestamp })
	return samples
}

// Reconstructor samples flight paths into time-indexed trajectories by
// walking consecutive waypoint pairs at constant cruise speed.
type Reconstructor struct {
	cadence float64 // seconds between samples along a segment
}

// NewReconstructor creates a reconstructor with the given sampling cadence in
// seconds. Non-positive cadences fall back to one minute.
func NewReconstructor(cadenceSecs int) *Reconstructor {
	if cadenceSecs <= 0 {
		cadenceSecs = minuteSecs
	}
	return &Reconstructor{cadence: float64(cadenceSecs)}
}

// Reconstruct produces a trajectory over the full path starting at the
// departure time. A path with fewer than 2 points or a non-positive speed
// yields an empty trajectory, meaning the flight is not simulated.
//
// Each segment is sampled at the cadence, endpoint included, and every sample
// is stored at its minute-floored absolute timestamp. Zero-length segments
// are skipped without advancing time.
func (r *Reconstructor) Reconstruct(path []geo.Point, departureTime int64, speedKnots float64) Trajectory {
	if len(path) < 2 || speedKnots <= 0 {
		return nil
	}

	trajectory := make(Trajectory)
	segmentStart := float64(departureTime)

	for i := 0; i < len(path)-1; i++ {
		p1 := path[i]
		p2 := path[i+1]

		distNM := geo.DistanceNM(p1, p2)
		if distNM == 0 {
			continue
		}

		// Wall-clock seconds to traverse the segment at cruise speed.
		duration := distNM / speedKnots * 3600
		if duration <= 0 {
			continue
		}

		steps := int(duration / r.cadence)
		if steps < 1 {
			steps = 1
		}

		for s := 0; s <= steps; s++ {
			fraction := float64(s) * r.cadence / duration
			if fraction > 1 {
				fraction = 1
			}

			pos := geo.Interpolate(p1, p2, fraction)
			ts := int64(math.Round(segmentStart + fraction*duration))
			trajectory[(ts/minuteSecs)*minuteSecs] = pos
		}

		segmentStart += duration
	}

	return trajectory
}
