package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

func TestHistoryHandler_HandleDetections(t *testing.T) {
	evil := domain.AttackEvilTwin

	t.Run("builds the filter from the query", func(t *testing.T) {
		history := new(MockHistory)
		want := domain.DetectionFilter{
			BSSID:      "DE:AD:BE:EF:00:01",
			SSID:       "home",
			AttackType: &evil,
			MinThreat:  domain.ThreatHigh,
			Since:      time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			Limit:      10,
		}
		history.On("Detections", mock.Anything, want).
			Return([]domain.DetectionResult{{BSSID: "de:ad:be:ef:00:01"}}, nil).Once()

		url := "/api/detections?bssid=DE:AD:BE:EF:00:01&ssid=home&attack=Evil_Twin&min_threat=high&since=2025-12-01T00:00:00Z&limit=10"
		rec := httptest.NewRecorder()
		NewHistoryHandler(history, nil).HandleDetections(rec, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
		history.AssertExpectations(t)
	})

	t.Run("defaults to the newest 100", func(t *testing.T) {
		history := new(MockHistory)
		history.On("Detections", mock.Anything, domain.DetectionFilter{Limit: 100}).Return(nil, nil).Once()

		rec := httptest.NewRecorder()
		NewHistoryHandler(history, nil).HandleDetections(rec, httptest.NewRequest(http.MethodGet, "/api/detections", nil))

		assert.JSONEq(t, `{"detections":[],"count":0}`, rec.Body.String())
		history.AssertExpectations(t)
	})

	badQueries := []string{
		"bssid=nope",
		"attack=Botnet",
		"min_threat=severe",
		"since=yesterday",
		"limit=5000",
	}
	for _, q := range badQueries {
		t.Run("rejects "+q, func(t *testing.T) {
			history := new(MockHistory)
			rec := httptest.NewRecorder()
			NewHistoryHandler(history, nil).HandleDetections(rec, httptest.NewRequest(http.MethodGet, "/api/detections?"+q, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			history.AssertNotCalled(t, "Detections", mock.Anything, mock.Anything)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		history := new(MockHistory)
		history.On("Detections", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

		rec := httptest.NewRecorder()
		NewHistoryHandler(history, nil).HandleDetections(rec, httptest.NewRequest(http.MethodGet, "/api/detections", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
