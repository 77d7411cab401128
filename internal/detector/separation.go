package detector

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/geo"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// ConflictRecord reports one flight pair observed below minimum separation.
// Each unordered pair appears at most once per run; the record means "these
// two were in violation at least once", not that they stayed in violation.
type ConflictRecord struct {
	Flight1      string  `json:"flight1"` // lexically smaller ACID
	Flight2      string  `json:"flight2"`
	HorizontalNM float64 `json:"horizontal_nm"` // at first detection, rounded to 2 decimals
	VerticalFT   int     `json:"vertical_ft"`   // |altitude delta|, 0 when either altitude is unknown
	BearingTrue  float64 `json:"bearing_true"`  // Flight1 -> Flight2 course, degrees true
	BearingMag   float64 `json:"bearing_mag"`   // same course, degrees magnetic
	FirstSeen    int64   `json:"first_seen"`    // Unix seconds of the first violating minute
}

// occupant is one aircraft present in a time bucket.
type occupant struct {
	acid string
	pos  geo.Point
}

// pairKey identifies an unordered flight pair; a is lexically smaller.
type pairKey struct {
	a, b string
}

// SeparationDetector performs pairwise proximity checks among flights
// sharing a one-minute time bucket.
type SeparationDetector struct {
	cfg config.SeparationConfig
	log *logger.Logger
}

// NewSeparationDetector creates a loss-of-separation detector.
func NewSeparationDetector(cfg config.SeparationConfig, log *logger.Logger) *SeparationDetector {
	return &SeparationDetector{
		cfg: cfg,
		log: log.Named("separation"),
	}
}

// Detect scans full-path trajectories (airport endpoints included, built by
// the caller so the same set can feed the archive) for pairs of flights
// closer than the horizontal minimum while not vertically separated.
//
// The per-flight trajectories are inverted into a minute -> occupants index
// so only flights active in the same minute are compared. Buckets are
// scanned in ascending time order and occupants sorted by ACID, which makes
// the output deterministic regardless of map iteration order. A pair with
// both altitudes known and |delta| at or above the vertical minimum is
// skipped outright; with either altitude unknown the check falls through to
// horizontal distance alone. Once a pair is flagged it is never re-examined,
// even if the two later separate and converge again.
func (d *SeparationDetector) Detect(ctx context.Context, flights []*flight.Flight, trajectories map[string]trajectory.Trajectory) ([]ConflictRecord, error) {
	byACID := make(map[string]*flight.Flight, len(flights))
	for _, f := range flights {
		byACID[f.ACID] = f
	}

	index := make(map[int64][]occupant)
	for acid, traj := range trajectories {
		for ts, pos := range traj {
			index[ts] = append(index[ts], occupant{acid: acid, pos: pos})
		}
	}

	times := make([]int64, 0, len(index))
	for ts := range index {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	seen := make(map[pairKey]struct{})
	var conflicts []ConflictRecord

	for _, ts := range times {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		occupants := index[ts]
		if len(occupants) < 2 {
			continue
		}
		sort.Slice(occupants, func(i, j int) bool { return occupants[i].acid < occupants[j].acid })

		for i := 0; i < len(occupants); i++ {
			for j := i + 1; j < len(occupants); j++ {
				o1, o2 := occupants[i], occupants[j]
				if _, done := seen[pairKey{a: o1.acid, b: o2.acid}]; done {
					continue
				}

				f1, f2 := byACID[o1.acid], byACID[o2.acid]

				verticalFT := 0
				if f1 != nil && f2 != nil && f1.Altitude != nil && f2.Altitude != nil {
					verticalFT = abs(*f1.Altitude - *f2.Altitude)
					if verticalFT >= d.cfg.VerticalFT {
						continue
					}
				}

				horizNM := geo.DistanceNM(o1.pos, o2.pos)
				if horizNM >= d.cfg.HorizontalNM {
					continue
				}

				altFt := 0.0
				if f1 != nil && f1.Altitude != nil {
					altFt = float64(*f1.Altitude)
				}
				conflicts = append(conflicts, newConflictRecord(o1, o2, horizNM, verticalFT, altFt, ts))
				seen[pairKey{a: o1.acid, b: o2.acid}] = struct{}{}
			}
		}
	}

	d.log.Info("Separation scan complete",
		logger.Int("flights", len(flights)),
		logger.Int("tracked", len(trajectories)),
		logger.Int("buckets", len(index)),
		logger.Int("conflicts", len(conflicts)))

	return conflicts, nil
}

// newConflictRecord fills in the derived fields: rounded horizontal
// distance, true course between the two positions and its magnetic
// equivalent. The magnetic model can reject out-of-epoch dates; the true
// course is used unchanged in that case.
func newConflictRecord(o1, o2 occupant, horizNM float64, verticalFT int, altFt float64, ts int64) ConflictRecord {
	bearingTrue := geo.Bearing(o1.pos, o2.pos)
	bearingMag := bearingTrue
	if variation, err := geo.MagneticVariation(o1.pos, altFt, time.Unix(ts, 0).UTC()); err == nil {
		bearingMag = geo.MagneticFromTrue(bearingTrue, variation)
	}

	return ConflictRecord{
		Flight1:      o1.acid,
		Flight2:      o2.acid,
		HorizontalNM: math.Round(horizNM*100) / 100,
		VerticalFT:   verticalFT,
		BearingTrue:  bearingTrue,
		BearingMag:   bearingMag,
		FirstSeen:    ts,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
