package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/monitor"
	"github.com/skyward-ops/sectorwatch/internal/websocket"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

// Router wires the API handlers, middleware, and WebSocket endpoint into one
// HTTP handler tree.
type Router struct {
	handler  *Handler
	config   *config.Config
	logger   *logger.Logger
	wsServer *websocket.Server
}

// NewRouter creates a new API router
func NewRouter(monitorService *monitor.Service, trajectoryStorage TrajectoryStorage, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler:  NewHandler(monitorService, trajectoryStorage, cfg, log, wsServer),
		config:   cfg,
		logger:   log.Named("router"),
		wsServer: wsServer,
	}
}

// Routes builds the route tree
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(rt.corsMiddleware)

	r.Get("/health", rt.handler.HealthCheck)
	r.Get("/ws", rt.wsServer.HandleConnection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", rt.handler.GetStatus)
		r.Get("/flights", rt.handler.GetFlights)
		r.Get("/flights/{acid}", rt.handler.GetFlight)
		r.Get("/flights/{acid}/trajectory", rt.handler.GetFlightTrajectory)
		r.Get("/flights/{acid}/issues", rt.handler.GetFlightIssues)
		r.Get("/issues", rt.handler.GetIssues)
		r.Get("/hotspots", rt.handler.GetHotspots)
		r.Get("/conflicts", rt.handler.GetConflicts)
		r.Post("/analysis/run", rt.handler.RunAnalysis)
	})

	return r
}

// requestLogger logs each request at debug level with its status and timing
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Debug("Request completed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

// corsMiddleware applies the configured CORS policy. Preflight requests are
// answered directly.
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if allowed, wildcard := rt.originAllowed(origin); allowed {
				if wildcard {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) (allowed, wildcard bool) {
	for _, candidate := range rt.config.Server.CORSAllowedOrigins {
		if candidate == "*" {
			return true, true
		}
		if strings.EqualFold(candidate, origin) {
			return true, false
		}
	}
	return false, false
}
