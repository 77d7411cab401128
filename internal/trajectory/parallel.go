package trajectory

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skyward-ops/sectorwatch/internal/airspace"
	"github.com/skyward-ops/sectorwatch/internal/flight"
)

// ReconstructAll builds trajectories for every simulatable flight in the
// batch, fanning the per-flight work across workers. Each flight owns its
// trajectory, so the workers share nothing; only the merge into the result
// map is serialized. Flights that produce no samples are omitted from the
// result. Passing a nil airport table reconstructs route-only paths.
func ReconstructAll(ctx context.Context, flights []*flight.Flight, airports *airspace.Airports, cadenceSecs, workers int) (map[string]Trajectory, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	recon := NewReconstructor(cadenceSecs)

	jobs := make(chan *flight.Flight)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobs)
		for _, f := range flights {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	result := make(map[string]Trajectory, len(flights))

	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for f := range jobs {
				traj := recon.Reconstruct(BuildPath(f, airports), f.DepartureTime, f.AircraftSpeed)
				if len(traj) == 0 {
					continue
				}

				mu.Lock()
				result[f.ACID] = traj
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
