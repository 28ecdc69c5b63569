package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
)

// HistoryHandler searches past detections
type HistoryHandler struct {
	History ports.ScanHistory
	logger  *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history ports.ScanHistory, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{History: history, logger: logger}
}

// HandleDetections accepts bssid, ssid, attack, min_threat, since (RFC 3339) and limit.
func (h *HistoryHandler) HandleDetections(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := h.History.Detections(r.Context(), *filter)
	if err != nil {
		h.logger.Error("Detection query failed", "error", err)
		http.Error(w, "Failed to query detections", http.StatusInternalServerError)
		return
	}
	if found == nil {
		found = []domain.DetectionResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"detections": found, "count": len(found)})
}

func parseFilter(r *http.Request) (*domain.DetectionFilter, error) {
	q := r.URL.Query()
	filter := domain.NewDetectionFilter().
		WithBSSID(q.Get("bssid")).
		WithSSID(q.Get("ssid"))

	if raw := q.Get("attack"); raw != "" {
		var a domain.AttackType
		if err := a.UnmarshalText([]byte(raw)); err != nil {
			return nil, err
		}
		filter.WithAttackType(a)
	}
	if raw := q.Get("min_threat"); raw != "" {
		var level domain.ThreatLevel
		if err := level.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
			return nil, err
		}
		filter.WithMinThreat(level)
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, &domain.ValidationError{Field: "since", Value: raw, Err: errors.New("expected RFC 3339 time")}
		}
		filter.WithSince(since)
	}
	limit, ok := queryInt(r, "limit", filter.Limit, domain.MaxFilterLimit)
	if !ok {
		return nil, domain.ErrInvalidLimit
	}
	filter.WithLimit(limit)

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return filter, nil
}
