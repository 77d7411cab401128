package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server     ServerConfig     `toml:"server"`     // HTTP server settings
	Logging    LoggingConfig    `toml:"logging"`    // Application logging settings
	Storage    StorageConfig    `toml:"storage"`    // Data persistence settings
	Data       DataConfig       `toml:"data"`       // Input batch and reference data locations
	Trajectory TrajectoryConfig `toml:"trajectory"` // Trajectory reconstruction settings
	Congestion CongestionConfig `toml:"congestion"` // Sector congestion detection settings
	Separation SeparationConfig `toml:"separation"` // Loss-of-separation detection settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Enabled    bool   `toml:"enabled"`     // Whether to archive the batch and its trajectories to SQLite
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file
}

// DataConfig points at the flight batch and the static reference tables
type DataConfig struct {
	FlightsPath    string `toml:"flights_path"`     // Path to the flight batch JSON file
	AirportsDBPath string `toml:"airports_db_path"` // Path to airport database CSV file (OurAirports format)
	AircraftDBPath string `toml:"aircraft_db_path"` // Path to aircraft category/constraint JSON file
}

// TrajectoryConfig contains trajectory reconstruction settings
type TrajectoryConfig struct {
	Workers int `toml:"workers"` // Worker goroutines for batch reconstruction (0 = one per CPU)
}

// CongestionConfig contains sector congestion detection settings
type CongestionConfig struct {
	SampleIntervalSecs int   `toml:"sample_interval_seconds"` // Trajectory sampling cadence in seconds
	WindowSecs         int64 `toml:"window_seconds"`          // Width of the congestion time window in seconds
	FlightThreshold    int   `toml:"flight_threshold"`        // Distinct flights a sector-window must exceed to be flagged
}

// SeparationConfig contains loss-of-separation detection settings
type SeparationConfig struct {
	SampleIntervalSecs int     `toml:"sample_interval_seconds"` // Trajectory sampling cadence in seconds
	HorizontalNM       float64 `toml:"horizontal_nm"`           // Minimum horizontal separation in nautical miles
	VerticalFT         int     `toml:"vertical_ft"`             // Minimum vertical separation in feet
}

// Load reads and parses the configuration file at the given path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback tries the preferred path first, then the conventional
// locations, returning the first config that loads
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			// File exists, try to load it
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate fills in defaults for unset fields and rejects values that are
// out of range. Zero values mean "use the default" so a minimal config file
// stays minimal.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'console')", c.Logging.Format)
	}

	if c.Storage.Enabled && c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "sectorwatch.db"
	}

	if c.Data.FlightsPath == "" {
		c.Data.FlightsPath = "data/sample_flights.json"
	}
	if c.Data.AirportsDBPath == "" {
		c.Data.AirportsDBPath = "data/airports.csv"
	}
	if c.Data.AircraftDBPath == "" {
		c.Data.AircraftDBPath = "data/aircraft_types.json"
	}

	if c.Trajectory.Workers < 0 {
		return fmt.Errorf("invalid trajectory workers: %d (must be >= 0, 0 means one per CPU)", c.Trajectory.Workers)
	}

	if c.Congestion.SampleIntervalSecs == 0 {
		c.Congestion.SampleIntervalSecs = 90
	}
	if c.Congestion.SampleIntervalSecs < 0 {
		return fmt.Errorf("invalid congestion sample interval: %d", c.Congestion.SampleIntervalSecs)
	}
	if c.Congestion.WindowSecs == 0 {
		c.Congestion.WindowSecs = 900
	}
	if c.Congestion.WindowSecs < 0 {
		return fmt.Errorf("invalid congestion window: %d", c.Congestion.WindowSecs)
	}
	if c.Congestion.FlightThreshold == 0 {
		c.Congestion.FlightThreshold = 5
	}
	if c.Congestion.FlightThreshold < 0 {
		return fmt.Errorf("invalid congestion flight threshold: %d", c.Congestion.FlightThreshold)
	}

	if c.Separation.SampleIntervalSecs == 0 {
		c.Separation.SampleIntervalSecs = 60
	}
	if c.Separation.SampleIntervalSecs < 0 {
		return fmt.Errorf("invalid separation sample interval: %d", c.Separation.SampleIntervalSecs)
	}
	if c.Separation.HorizontalNM == 0 {
		c.Separation.HorizontalNM = 5.0
	}
	if c.Separation.HorizontalNM < 0 {
		return fmt.Errorf("invalid separation horizontal minimum: %g", c.Separation.HorizontalNM)
	}
	if c.Separation.VerticalFT == 0 {
		c.Separation.VerticalFT = 2000
	}
	if c.Separation.VerticalFT < 0 {
		return fmt.Errorf("invalid separation vertical minimum: %d", c.Separation.VerticalFT)
	}

	return nil
}
