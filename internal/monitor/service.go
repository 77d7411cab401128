// Package monitor owns the analysis lifecycle for a loaded flight batch. It
// runs validation and both detectors, keeps the latest results for the API
// layer, archives the batch to storage, and pushes alerts over WebSocket.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skyward-ops/sectorwatch/internal/airspace"
	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/detector"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/report"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/internal/websocket"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// WebSocketServer defines the interface for a WebSocket server
type WebSocketServer interface {
	Broadcast(msgType string, data map[string]any)
}

// ArchiveStorage persists the analyzed batch between runs.
type ArchiveStorage interface {
	ArchiveBatch(flights []*flight.Flight, trajectories map[string]trajectory.Trajectory) error
}

// Status is the run metadata reported by the status endpoint.
type Status struct {
	Flights     int       `json:"flights"`
	Simulated   int       `json:"simulated"`
	Skipped     int       `json:"skipped_records"`
	Issues      int       `json:"issues"`
	Hotspots    int       `json:"hotspots"`
	Conflicts   int       `json:"conflicts"`
	LastRun     time.Time `json:"last_run"`
	LastElapsed string    `json:"last_elapsed"`
}

// Service loads the flight batch and reference data, runs detection, and
// holds the latest results behind read accessors.
type Service struct {
	cfg        *config.Config
	logger     *logger.Logger
	congestion *detector.CongestionDetector
	separation *detector.SeparationDetector
	storage    ArchiveStorage
	wsServer   WebSocketServer

	runMu sync.Mutex // serializes analysis runs

	mu          sync.RWMutex
	airports    *airspace.Airports
	aircraftDB  *airspace.AircraftDB
	flights     []*flight.Flight
	byACID      map[string]*flight.Flight
	skipped     int
	issues      []flight.Issue
	hotspots    []detector.Hotspot
	conflicts   []detector.ConflictRecord
	simulated   int
	lastRun     time.Time
	lastElapsed time.Duration
	stopped     bool
}

// New creates a new monitor service. Storage and the WebSocket server may be
// nil; archiving and alerting are skipped when they are.
func New(cfg *config.Config, storage ArchiveStorage, wsServer WebSocketServer, log *logger.Logger) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.Named("monitor"),
		congestion: detector.NewCongestionDetector(cfg.Congestion, cfg.Trajectory.Workers, log),
		separation: detector.NewSeparationDetector(cfg.Separation, log),
		storage:    storage,
		wsServer:   wsServer,
		byACID:     make(map[string]*flight.Flight),
	}
}

// Start loads reference data and the flight batch, then runs the initial
// analysis.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service",
		logger.String("flights_path", s.cfg.Data.FlightsPath),
		logger.String("airports_db_path", s.cfg.Data.AirportsDBPath),
		logger.String("aircraft_db_path", s.cfg.Data.AircraftDBPath),
	)

	airports, err := airspace.LoadAirports(s.cfg.Data.AirportsDBPath)
	if err != nil {
		return fmt.Errorf("loading airports: %w", err)
	}

	aircraftDB, err := airspace.LoadAircraftDB(s.cfg.Data.AircraftDBPath)
	if err != nil {
		return fmt.Errorf("loading aircraft types: %w", err)
	}

	flights, skipped, err := flight.LoadFlights(s.cfg.Data.FlightsPath)
	if err != nil {
		return fmt.Errorf("loading flights: %w", err)
	}

	byACID := make(map[string]*flight.Flight, len(flights))
	for _, f := range flights {
		byACID[f.ACID] = f
	}

	s.mu.Lock()
	s.airports = airports
	s.aircraftDB = aircraftDB
	s.flights = flights
	s.byACID = byACID
	s.skipped = skipped
	s.mu.Unlock()

	s.logger.Info("Flight batch loaded",
		logger.Int("flights", len(flights)),
		logger.Int("skipped_records", skipped),
		logger.Int("airports", airports.Count()),
	)

	if _, err := s.RunAnalysis(ctx); err != nil {
		return fmt.Errorf("initial analysis: %w", err)
	}

	return nil
}

// Stop marks the service stopped. Further analysis runs are refused; loaded
// results stay readable. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("Monitor service stopped")
}

// RunAnalysis runs the full detection pipeline over the loaded batch:
// validation, congestion detection, full-path reconstruction, separation
// detection. Results replace the previous run's, the batch is archived, and
// alerts go out over WebSocket.
func (s *Service) RunAnalysis(ctx context.Context) (report.Summary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.RLock()
	stopped := s.stopped
	flights := s.flights
	airports := s.airports
	aircraftDB := s.aircraftDB
	skipped := s.skipped
	s.mu.RUnlock()

	if stopped {
		return report.Summary{}, fmt.Errorf("monitor service is stopped")
	}

	start := time.Now()

	var issues []flight.Issue
	if aircraftDB != nil {
		for _, f := range flights {
			issues = append(issues, aircraftDB.Validate(f)...)
		}
	}

	hotspots, err := s.congestion.Detect(ctx, flights)
	if err != nil {
		return report.Summary{}, fmt.Errorf("congestion detection: %w", err)
	}

	trajectories, err := trajectory.ReconstructAll(ctx, flights, airports,
		s.cfg.Separation.SampleIntervalSecs, s.cfg.Trajectory.Workers)
	if err != nil {
		return report.Summary{}, fmt.Errorf("trajectory reconstruction: %w", err)
	}

	conflicts, err := s.separation.Detect(ctx, flights, trajectories)
	if err != nil {
		return report.Summary{}, fmt.Errorf("separation detection: %w", err)
	}

	elapsed := time.Since(start)

	s.mu.Lock()
	s.issues = issues
	s.hotspots = hotspots
	s.conflicts = conflicts
	s.simulated = len(trajectories)
	s.lastRun = time.Now().UTC()
	s.lastElapsed = elapsed
	s.mu.Unlock()

	summary := report.Summary{
		Flights:   len(flights),
		Simulated: len(trajectories),
		Issues:    len(issues),
		Hotspots:  len(hotspots),
		Conflicts: len(conflicts),
		Elapsed:   elapsed,
	}

	s.logger.Info("Analysis run complete",
		logger.Int("flights", summary.Flights),
		logger.Int("simulated", summary.Simulated),
		logger.Int("skipped_records", skipped),
		logger.Int("issues", summary.Issues),
		logger.Int("hotspots", summary.Hotspots),
		logger.Int("conflicts", summary.Conflicts),
		logger.Duration("elapsed", elapsed),
	)

	// Archiving is best effort: a storage failure never fails the run.
	if s.storage != nil {
		if err := s.storage.ArchiveBatch(flights, trajectories); err != nil {
			s.logger.Error("Failed to archive analysis batch", logger.Error(err))
		}
	}

	s.broadcastResults(summary, hotspots, conflicts)

	return summary, nil
}

// broadcastResults pushes the run summary and risk alerts to connected
// WebSocket clients.
func (s *Service) broadcastResults(summary report.Summary, hotspots []detector.Hotspot, conflicts []detector.ConflictRecord) {
	if s.wsServer == nil {
		return
	}

	s.wsServer.Broadcast(websocket.MessageTypeAnalysisComplete, map[string]any{
		"flights":   summary.Flights,
		"simulated": summary.Simulated,
		"issues":    summary.Issues,
		"hotspots":  summary.Hotspots,
		"conflicts": summary.Conflicts,
		"elapsed":   summary.Elapsed.Round(time.Millisecond).String(),
	})

	for _, h := range hotspots {
		risk := report.RiskLevel(h.FlightCount)
		if !strings.HasPrefix(risk, "Critical:") {
			continue
		}
		s.wsServer.Broadcast(websocket.MessageTypeHotspotAlert, map[string]any{
			"sector_lat":   h.Sector.Lat,
			"sector_lon":   h.Sector.Lon,
			"window_start": h.WindowStart,
			"flight_count": h.FlightCount,
			"flights":      h.Flights,
			"risk":         risk,
		})
	}

	if len(conflicts) > 0 {
		s.wsServer.Broadcast(websocket.MessageTypeConflictAlert, map[string]any{
			"count": len(conflicts),
		})
	}
}

// Flights returns the loaded flight batch.
func (s *Service) Flights() []*flight.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*flight.Flight, len(s.flights))
	copy(out, s.flights)
	return out
}

// Flight returns a single flight by callsign.
func (s *Service) Flight(acid string) (*flight.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.byACID[acid]
	return f, ok
}

// Issues returns the validation findings from the latest run.
func (s *Service) Issues() []flight.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]flight.Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// IssuesFor returns the validation findings for one flight.
func (s *Service) IssuesFor(acid string) []flight.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]flight.Issue, 0)
	for _, issue := range s.issues {
		if issue.ACID == acid {
			out = append(out, issue)
		}
	}
	return out
}

// Hotspots returns the congestion hotspots from the latest run.
func (s *Service) Hotspots() []detector.Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]detector.Hotspot, len(s.hotspots))
	copy(out, s.hotspots)
	return out
}

// Conflicts returns the separation conflicts from the latest run.
func (s *Service) Conflicts() []detector.ConflictRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]detector.ConflictRecord, len(s.conflicts))
	copy(out, s.conflicts)
	return out
}

// Recommend returns the prioritization advice for a hotspot, resolving
// flights against the loaded batch.
func (s *Service) Recommend(h detector.Hotspot) detector.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return detector.Recommend(h, func(acid string) *flight.Flight {
		return s.byACID[acid]
	})
}

// Status returns the run metadata for the status endpoint.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Flights:     len(s.flights),
		Simulated:   s.simulated,
		Skipped:     s.skipped,
		Issues:      len(s.issues),
		Hotspots:    len(s.hotspots),
		Conflicts:   len(s.conflicts),
		LastRun:     s.lastRun,
		LastElapsed: s.lastElapsed.Round(time.Millisecond).String(),
	}
}
