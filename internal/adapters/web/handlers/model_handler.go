package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/export"
)

// ModelHandler exposes the detector's administrative operations
type ModelHandler struct {
	Detector ports.Detector
	logger   *slog.Logger
}

// NewModelHandler creates a new ModelHandler
func NewModelHandler(detector ports.Detector, logger *slog.Logger) *ModelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelHandler{Detector: detector, logger: logger}
}

// HandleInfo reports the model state and tracking counters.
func (h *ModelHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded": h.Detector.IsLoaded(),
		"info":   h.Detector.ModelInfo(),
		"stats":  h.Detector.Stats(),
	})
}

// HandleLearned lists the baseline networks, as JSON or with format=csv.
func (h *ModelHandler) HandleLearned(w http.ResponseWriter, r *http.Request) {
	learned := h.Detector.LearnedNetworks()
	if learned == nil {
		learned = []domain.LearnedNetwork{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=nettrust_learned.csv")
		if err := export.ExportLearnedCSV(w, learned); err != nil {
			h.logger.Warn("CSV export error", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"networks": learned})
}

// HandleClearTracking forgets every tracked profile.
func (h *ModelHandler) HandleClearTracking(w http.ResponseWriter, r *http.Request) {
	before := h.Detector.Stats().Tracked
	h.Detector.ClearTracking()
	h.logger.Info("Tracking cleared", "profiles", before, "remote", r.RemoteAddr)

	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "profiles": before})
}

// HandleHealth reports 503 while the model is not loaded.
func (h *ModelHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.Detector.IsLoaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "model_loaded": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "model_loaded": true})
}
