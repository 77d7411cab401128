package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/detector"
	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/monitor"
	"github.com/skyward-ops/sectorwatch/internal/report"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/internal/websocket"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// TrajectoryStorage serves archived trajectory samples.
type TrajectoryStorage interface {
	GetTrajectory(acid string, limit int) ([]trajectory.Sample, error)
}

// Handler contains the API handlers
type Handler struct {
	monitorService    *monitor.Service
	trajectoryStorage TrajectoryStorage
	config            *config.Config
	logger            *logger.Logger
	wsServer          *websocket.Server
}

// NewHandler creates a new API handler
func NewHandler(monitorService *monitor.Service, trajectoryStorage TrajectoryStorage, config *config.Config, logger *logger.Logger, wsServer *websocket.Server) *Handler {
	return &Handler{
		monitorService:    monitorService,
		trajectoryStorage: trajectoryStorage,
		config:            config,
		logger:            logger.Named("api-handler"),
		wsServer:          wsServer,
	}
}

// StatusResponse is the run metadata plus live connection info.
type StatusResponse struct {
	monitor.Status
	WebSocketClients int `json:"websocket_clients"`
}

// FlightsResponse wraps the loaded flight batch.
type FlightsResponse struct {
	Timestamp time.Time        `json:"timestamp"`
	Count     int              `json:"count"`
	Flights   []*flight.Flight `json:"flights"`
}

// TrajectoryResponse wraps archived trajectory samples for one flight.
type TrajectoryResponse struct {
	ACID    string              `json:"acid"`
	Count   int                 `json:"count"`
	Samples []trajectory.Sample `json:"samples"`
}

// IssuesResponse wraps validation findings.
type IssuesResponse struct {
	Count  int            `json:"count"`
	Issues []flight.Issue `json:"issues"`
}

// HotspotView is a hotspot with its risk classification and prioritization
// advice attached.
type HotspotView struct {
	detector.Hotspot
	Risk           string                  `json:"risk"`
	Recommendation detector.Recommendation `json:"recommendation"`
}

// HotspotsResponse wraps the congestion findings of the latest run.
type HotspotsResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Count     int           `json:"count"`
	Hotspots  []HotspotView `json:"hotspots"`
}

// ConflictsResponse wraps the separation findings of the latest run.
type ConflictsResponse struct {
	Timestamp time.Time                 `json:"timestamp"`
	Count     int                       `json:"count"`
	Conflicts []detector.ConflictRecord `json:"conflicts"`
}

// AnalysisResponse is the summary returned by a triggered run.
type AnalysisResponse struct {
	Flights   int    `json:"flights"`
	Simulated int    `json:"simulated"`
	Issues    int    `json:"issues"`
	Hotspots  int    `json:"hotspots"`
	Conflicts int    `json:"conflicts"`
	Elapsed   string `json:"elapsed"`
}

// GetStatus returns run metadata for the loaded batch
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Status:           h.monitorService.Status(),
		WebSocketClients: h.wsServer.ClientCount(),
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetFlights returns the loaded flight batch
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	flights := h.monitorService.Flights()

	response := FlightsResponse{
		Timestamp: time.Now().UTC(),
		Count:     len(flights),
		Flights:   flights,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetFlight returns a single flight by callsign
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	acid := chi.URLParam(r, "acid")
	if acid == "" {
		http.Error(w, "Missing flight callsign", http.StatusBadRequest)
		return
	}

	f, found := h.monitorService.Flight(acid)
	if !found {
		http.Error(w, "Flight not found", http.StatusNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, f)
}

// GetFlightTrajectory returns the archived trajectory samples for a flight
func (h *Handler) GetFlightTrajectory(w http.ResponseWriter, r *http.Request) {
	acid := chi.URLParam(r, "acid")
	if acid == "" {
		http.Error(w, "Missing flight callsign", http.StatusBadRequest)
		return
	}

	if h.trajectoryStorage == nil {
		http.Error(w, "Trajectory storage not available", http.StatusServiceUnavailable)
		return
	}

	if _, found := h.monitorService.Flight(acid); !found {
		http.Error(w, "Flight not found", http.StatusNotFound)
		return
	}

	// Get limit parameter (default to all samples)
	limitStr := r.URL.Query().Get("limit")
	limit := 0
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	samples, err := h.trajectoryStorage.GetTrajectory(acid, limit)
	if err != nil {
		h.logger.Error("Failed to get trajectory samples",
			logger.Error(err),
			logger.String("acid", acid),
			logger.Int("limit", limit))
		http.Error(w, "Failed to get trajectory samples", http.StatusInternalServerError)
		return
	}

	response := TrajectoryResponse{
		ACID:    acid,
		Count:   len(samples),
		Samples: samples,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetFlightIssues returns the validation findings for one flight
func (h *Handler) GetFlightIssues(w http.ResponseWriter, r *http.Request) {
	acid := chi.URLParam(r, "acid")
	if acid == "" {
		http.Error(w, "Missing flight callsign", http.StatusBadRequest)
		return
	}

	if _, found := h.monitorService.Flight(acid); !found {
		http.Error(w, "Flight not found", http.StatusNotFound)
		return
	}

	issues := h.monitorService.IssuesFor(acid)
	response := IssuesResponse{
		Count:  len(issues),
		Issues: issues,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetIssues returns all validation findings from the latest run
func (h *Handler) GetIssues(w http.ResponseWriter, r *http.Request) {
	issues := h.monitorService.Issues()

	response := IssuesResponse{
		Count:  len(issues),
		Issues: issues,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetHotspots returns the congestion hotspots from the latest run, each with
// its risk level and prioritization advice
func (h *Handler) GetHotspots(w http.ResponseWriter, r *http.Request) {
	hotspots := h.monitorService.Hotspots()

	views := make([]HotspotView, 0, len(hotspots))
	for _, hs := range hotspots {
		views = append(views, HotspotView{
			Hotspot:        hs,
			Risk:           report.RiskLevel(hs.FlightCount),
			Recommendation: h.monitorService.Recommend(hs),
		})
	}

	response := HotspotsResponse{
		Timestamp: time.Now().UTC(),
		Count:     len(views),
		Hotspots:  views,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetConflicts returns the separation conflicts from the latest run
func (h *Handler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts := h.monitorService.Conflicts()

	response := ConflictsResponse{
		Timestamp: time.Now().UTC(),
		Count:     len(conflicts),
		Conflicts: conflicts,
	}
	WriteJSON(w, http.StatusOK, response)
}

// RunAnalysis re-runs the detection pipeline over the loaded batch
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	summary, err := h.monitorService.RunAnalysis(r.Context())
	if err != nil {
		h.logger.Error("Analysis run failed", logger.Error(err))
		http.Error(w, "Analysis run failed", http.StatusInternalServerError)
		return
	}

	response := AnalysisResponse{
		Flights:   summary.Flights,
		Simulated: summary.Simulated,
		Issues:    summary.Issues,
		Hotspots:  summary.Hotspots,
		Conflicts: summary.Conflicts,
		Elapsed:   summary.Elapsed.Round(time.Millisecond).String(),
	}
	WriteJSON(w, http.StatusOK, response)
}

// HealthCheck reports process liveness
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
