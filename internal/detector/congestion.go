// Package detector holds the two airspace risk detectors and the
// prioritization advisor that consumes their output. Both detectors operate
// on one immutable flight batch per call and keep no state between runs.
package detector

import (
	"context"
	"sort"

	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// Hotspot is one congested sector/time-window bucket: more distinct flights
// crossed the sector during the window than the threshold allows.
type Hotspot struct {
	Sector      geo.Sector `json:"sector"`
	WindowStart int64      `json:"window_start"` // Unix seconds, start of the window
	FlightCount int        `json:"flight_count"`
	Flights     []string   `json:"flights"` // ACIDs, sorted
}

// sectorWindow keys the occupancy aggregation. Comparable so it can be a map
// key directly.
type sectorWindow struct {
	sector geo.Sector
	window int64
}

// CongestionDetector aggregates distinct flights per (sector, time window)
// bucket and flags buckets over the occupancy threshold.
type CongestionDetector struct {
	cfg     config.CongestionConfig
	workers int
	log     *logger.Logger
}

// NewCongestionDetector creates a congestion detector. workers bounds the
// trajectory reconstruction fan-out (0 = one per CPU).
func NewCongestionDetector(cfg config.CongestionConfig, workers int, log *logger.Logger) *CongestionDetector {
	return &CongestionDetector{
		cfg:     cfg,
		workers: workers,
		log:     log.Named("congestion"),
	}
}

// Detect reconstructs a route-only trajectory for every simulatable flight
// in the batch, buckets each sample into its (sector, window) cell and
// returns one Hotspot per cell whose distinct flight count strictly exceeds
// the threshold. A flight sampled several times in one cell counts once.
// Output is sorted by window start, then sector latitude, then longitude,
// regardless of input order.
func (d *CongestionDetector) Detect(ctx context.Context, flights []*flight.Flight) ([]Hotspot, error) {
	// Congestion looks at filed waypoints only, so the airport table is nil.
	trajectories, err := trajectory.ReconstructAll(ctx, flights, nil, d.cfg.SampleIntervalSecs, d.workers)
	if err != nil {
		return nil, err
	}

	occupancy := make(map[sectorWindow]map[string]struct{})
	for acid, traj := range trajectories {
		for ts, pos := range traj {
			key := sectorWindow{
				sector: geo.SectorOf(pos),
				window: geo.WindowStart(ts, d.cfg.WindowSecs),
			}
			set, ok := occupancy[key]
			if !ok {
				set = make(map[string]struct{})
				occupancy[key] = set
			}
			set[acid] = struct{}{}
		}
	}

	var hotspots []Hotspot
	for key, set := range occupancy {
		if len(set) <= d.cfg.FlightThreshold {
			continue
		}

		acids := make([]string, 0, len(set))
		for acid := range set {
			acids = append(acids, acid)
		}
		sort.Strings(acids)

		hotspots = append(hotspots, Hotspot{
			Sector:      key.sector,
			WindowStart: key.window,
			FlightCount: len(set),
			Flights:     acids,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].WindowStart != hotspots[j].WindowStart {
			return hotspots[i].WindowStart < hotspots[j].WindowStart
		}
		if hotspots[i].Sector.Lat != hotspots[j].Sector.Lat {
			return hotspots[i].Sector.Lat < hotspots[j].Sector.Lat
		}
		return hotspots[i].Sector.Lon < hotspots[j].Sector.Lon
	})

	d.log.Info("Congestion scan complete",
		logger.Int("flights", len(flights)),
		logger.Int("simulated", len(trajectories)),
		logger.Int("buckets", len(occupancy)),
		logger.Int("hotspots", len(hotspots)))

	return hotspots, nil
}
