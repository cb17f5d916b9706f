package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	maxRequestBytes     = 1 << 20
	defaultHistoryLimit = 24
	maxHistoryLimit     = 500
)

// PredictionHistory looks up stored predictions for a station.
type PredictionHistory interface {
	RecentByStation(ctx context.Context, station string, limit int) ([]domain.SpreadPrediction, error)
}

// Server exposes health, readiness, metrics, and spread evaluation endpoints.
type Server struct {
	httpServer *http.Server
	history    PredictionHistory
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /v1/spread routes. The station history route is only registered
// when history is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, history PredictionHistory, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		history: history,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/spread", s.handleSpread)
	if history != nil {
		mux.HandleFunc("GET /v1/stations/{station}/predictions", s.handleStationHistory)
	}

	s.httpServer.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)(mux)

	return s
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

// handleSpread evaluates a batch of series inputs. Length-1 series broadcast;
// any other length mismatch is rejected before evaluation.
func (s *Server) handleSpread(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var in vesta.Inputs
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if err := requireInputs(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := vesta.Evaluate(in)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vesta.ErrDimensionMismatch) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	if err := checkFinite(out); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.Debug("spread evaluated", "records", out.Len(), "wet_forest", in.WetForest)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStationHistory(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	predictions, err := s.history.RecentByStation(r.Context(), station, limit)
	if err != nil {
		s.logger.Error("station history lookup failed", "station", station, "error", err)
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	if predictions == nil {
		predictions = []domain.SpreadPrediction{}
	}
	writeJSON(w, http.StatusOK, predictions)
}

// requireInputs rejects requests that omit a series with no model default.
func requireInputs(in vesta.Inputs) error {
	required := []struct {
		name   string
		values []float64
	}{
		{"wind_speed", in.WindSpeed},
		{"fuel_moisture", in.FuelMoisture},
		{"drought_factor", in.DroughtFactor},
		{"fuel_load_surface", in.FuelLoadSurface},
		{"fhs_elevated", in.FHSElevated},
		{"height_elevated", in.HeightElevated},
	}
	for _, f := range required {
		if len(f.values) == 0 {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// checkFinite rejects outputs JSON cannot represent.
func checkFinite(out vesta.Outputs) error {
	cols := []struct {
		name   string
		values []float64
	}{
		{"height_understorey", out.HeightUnderstorey},
		{"fuel_availability", out.FuelAvailability},
		{"ros_phase1", out.RatePhase1},
		{"ros_phase2", out.RatePhase2},
		{"ros_phase3", out.RatePhase3},
		{"probability_phase2", out.ProbabilityPhase2},
		{"probability_phase3", out.ProbabilityPhase3},
		{"ros", out.RateOfSpread},
	}
	for _, c := range cols {
		for i, v := range c.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("record %d: %s is %v; inputs are outside the model domain", i, c.name, v)
			}
		}
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
