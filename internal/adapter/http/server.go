package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes served for the two overlay layers.
const (
	EarthquakesPath = "/api/layers/earthquakes"
	PlatesPath      = "/api/layers/plates"
	LegendPath      = "/api/legend"
	LayersPath      = "/api/layers"
	StatsPath       = "/stats"
)

// layerErrorHeader marks a layer response that is empty because its feed failed.
const layerErrorHeader = "X-Layer-Error"

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// MapService produces the map's data layers.
type MapService interface {
	ReadinessChecker
	Window() domain.FeedWindow
	EarthquakeLayer(ctx context.Context, window domain.FeedWindow) ([]domain.Marker, error)
	EarthquakeMarkers(ctx context.Context, window domain.FeedWindow) ([]domain.Marker, error)
	PlateLayer(ctx context.Context) ([]domain.PlateBoundary, error)
}

// Server exposes the map page, its GeoJSON layers, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        MapService
	page       render.PageData
	control    *render.LayerControl
	logger     *slog.Logger
}

// NewServer creates an HTTP server for the given map model. The map's overlay
// sources should point at EarthquakesPath and PlatesPath.
func NewServer(addr string, svc MapService, m render.Map, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		page:    render.NewPageData(m),
		control: m.Control(),
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET "+EarthquakesPath, s.handleEarthquakes)
	mux.HandleFunc("GET "+PlatesPath, s.handlePlates)
	mux.HandleFunc("GET "+LegendPath, s.handleLegend)
	mux.HandleFunc("GET "+LayersPath, s.handleLayers)
	mux.HandleFunc("GET "+StatsPath, s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// DefaultSources returns overlay sources pointing at this server's layer routes.
func DefaultSources() render.Sources {
	return render.Sources{Earthquakes: EarthquakesPath, Plates: PlatesPath}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, s.page); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// requestWindow reads the optional window query parameter, writing a 400
// response and returning false when it is not a known window.
func (s *Server) requestWindow(w http.ResponseWriter, r *http.Request) (domain.FeedWindow, bool) {
	q := r.URL.Query().Get("window")
	if q == "" {
		return s.svc.Window(), true
	}
	window, err := domain.ParseFeedWindow(q)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", false
	}
	return window, true
}

func (s *Server) handleEarthquakes(w http.ResponseWriter, r *http.Request) {
	window, ok := s.requestWindow(w, r)
	if !ok {
		return
	}

	markers, err := s.svc.EarthquakeLayer(r.Context(), window)
	if err != nil {
		s.logger.Error("earthquake layer unavailable", "window", window, "error", err)
		w.Header().Set(layerErrorHeader, "earthquakes feed unavailable")
		s.writeJSON(w, http.StatusOK, render.EmptyCollection())
		return
	}
	s.writeJSON(w, http.StatusOK, render.MarkerCollection(markers))
}

func (s *Server) handlePlates(w http.ResponseWriter, r *http.Request) {
	plates, err := s.svc.PlateLayer(r.Context())
	if err != nil {
		s.logger.Error("plate layer unavailable", "error", err)
		w.Header().Set(layerErrorHeader, "plates feed unavailable")
		s.writeJSON(w, http.StatusOK, render.EmptyCollection())
		return
	}
	s.writeJSON(w, http.StatusOK, render.PlateCollection(plates))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	window, ok := s.requestWindow(w, r)
	if !ok {
		return
	}

	// Charts are not layer renders: nothing is published or counted.
	markers, err := s.svc.EarthquakeMarkers(r.Context(), window)
	if err != nil {
		s.logger.Error("earthquake layer unavailable", "window", window, "error", err)
		w.Header().Set(layerErrorHeader, "earthquakes feed unavailable")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.StatsPage(w, markers, "Past "+string(window)); err != nil {
		s.logger.Error("render stats page failed", "error", err)
	}
}

type legendRow struct {
	domain.LegendBin
	Label string `json:"label"`
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	bins := domain.LegendBins()
	rows := make([]legendRow, len(bins))
	for i, b := range bins {
		rows[i] = legendRow{LegendBin: b, Label: b.Label()}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"position": render.LegendPosition,
		"bins":     rows,
	})
}

type baseLayerState struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// handleLayers reports the layer control's initial selection.
func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	state := s.control.State()
	bases := make([]baseLayerState, len(s.page.Map.BaseLayers))
	for i, b := range s.page.Map.BaseLayers {
		bases[i] = baseLayerState{Name: b.Name, Active: s.control.BaseActive(b.Name)}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"base":       state.Base,
		"baseLayers": bases,
		"overlays":   state.Overlays,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeJSON marshals v before committing the status so an unencodable value
// becomes a logged 500 instead of a truncated 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response failed", "error", err)
		w.Header().Del(layerErrorHeader)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"response encoding failed"}` + "\n")) //nolint:errcheck // best-effort response
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n')) //nolint:errcheck // best-effort response
}
