package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/skyward-ops/sectorwatch/internal/airspace"
	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/detector"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/report"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flightsPath := flag.String("flights", "", "Path to the flight data file (overrides the configured path)")
	conflictsLimit := flag.Int("conflicts-limit", 10, "Maximum number of conflicts to print (0 = all)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *flightsPath != "" {
		cfg.Data.FlightsPath = *flightsPath
	}

	// The report goes to stdout; keep log output to errors only.
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *conflictsLimit, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, conflictsLimit int, log *logger.Logger) error {
	start := time.Now()
	ctx := context.Background()

	fmt.Println("Loading flight data...")

	airports, err := airspace.LoadAirports(cfg.Data.AirportsDBPath)
	if err != nil {
		return err
	}

	aircraftDB, err := airspace.LoadAircraftDB(cfg.Data.AircraftDBPath)
	if err != nil {
		return err
	}

	flights, skipped, err := flight.LoadFlights(cfg.Data.FlightsPath)
	if err != nil {
		return err
	}

	if skipped > 0 {
		fmt.Printf("Loaded %d flights (%d records skipped).\n\n", len(flights), skipped)
	} else {
		fmt.Printf("Loaded %d flights.\n\n", len(flights))
	}

	lookup := make(map[string]*flight.Flight, len(flights))
	for _, f := range flights {
		lookup[f.ACID] = f
	}

	var issues []flight.Issue
	for _, f := range flights {
		issues = append(issues, aircraftDB.Validate(f)...)
	}
	if len(issues) > 0 {
		fmt.Printf("Found %d validation issue(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  %s: %s\n", issue.ACID, issue.Problem)
		}
		fmt.Println()
	}

	fmt.Println("Analyzing airspace congestion...")
	congestion := detector.NewCongestionDetector(cfg.Congestion, cfg.Trajectory.Workers, log)
	hotspots, err := congestion.Detect(ctx, flights)
	if err != nil {
		return err
	}

	if len(hotspots) == 0 {
		fmt.Println("No congestion hotspots detected.")
	} else {
		fmt.Printf("\nFound %d congestion hotspot(s):\n\n", len(hotspots))
		for i, hotspot := range hotspots {
			fmt.Printf("--- Hotspot %d ---\n", i+1)
			fmt.Println(report.FormatHotspot(hotspot, cfg.Congestion.WindowSecs))
			rec := detector.Recommend(hotspot, func(acid string) *flight.Flight { return lookup[acid] })
			fmt.Println(report.FormatRecommendation(rec))
			fmt.Println()
		}
	}

	fmt.Println("Checking separation minima...")
	trajectories, err := trajectory.ReconstructAll(ctx, flights, airports,
		cfg.Separation.SampleIntervalSecs, cfg.Trajectory.Workers)
	if err != nil {
		return err
	}

	separation := detector.NewSeparationDetector(cfg.Separation, log)
	conflicts, err := separation.Detect(ctx, flights, trajectories)
	if err != nil {
		return err
	}

	fmt.Printf("\nAnalysis complete. Found %d conflict(s):\n\n", len(conflicts))
	printed := conflicts
	if conflictsLimit > 0 && len(printed) > conflictsLimit {
		printed = printed[:conflictsLimit]
	}
	for _, c := range printed {
		fmt.Println(report.FormatConflict(c))
		fmt.Println()
	}
	if len(printed) < len(conflicts) {
		fmt.Printf("(%d more not shown)\n\n", len(conflicts)-len(printed))
	}

	fmt.Println(report.FormatSummary(report.Summary{
		Flights:   len(flights),
		Simulated: len(trajectories),
		Issues:    len(issues),
		Hotspots:  len(hotspots),
		Conflicts: len(conflicts),
		Elapsed:   time.Since(start),
	}))

	return nil
}
