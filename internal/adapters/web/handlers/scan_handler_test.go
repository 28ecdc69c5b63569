package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nettrust/internal/adapters/reporting"
	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

func testScan() domain.Scan {
	results := []domain.DetectionResult{
		{NetworkName: "HomeNet", BSSID: "f4:ec:38:00:00:01", IsBaseline: true, Reasons: []string{}},
		{
			NetworkName:       "HomeNet",
			BSSID:             "de:ad:be:ef:00:01",
			AttackType:        domain.AttackEvilTwin,
			Confidence:        0.95,
			IsRogueAP:         true,
			IsThreat:          true,
			ThreatLevel:       domain.ThreatCritical,
			RecommendedAction: "CRITICAL: Evil Twin Attack! DO NOT CONNECT!",
			Reasons:           []string{"ATTACK HARDWARE DETECTED: Flipper Zero (SUSPICIOUS HARDWARE)"},
		},
	}
	return domain.Scan{
		ID:        "scan-1",
		StartedAt: time.Date(2025, 12, 1, 10, 30, 0, 0, time.UTC),
		Results:   results,
		Summary:   domain.Summarize(results),
	}
}

func newScanHandler() (*ScanHandler, *MockScanProcessor, *MockDetector) {
	svc := new(MockScanProcessor)
	det := new(MockDetector)
	return NewScanHandler(svc, det, reporting.NewPDFExporter(), nil), svc, det
}

func TestScanHandler_HandleSubmit(t *testing.T) {
	t.Run("classifies the batch", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		obs := []domain.Observation{{SSID: "HomeNet", BSSID: "de:ad:be:ef:00:01", Frequency: 2437, Signal: -40}}
		svc.On("Process", mock.Anything, obs).Return(testScan(), nil).Once()

		body, _ := json.Marshal(domain.ScanRequest{Observations: obs})
		rec := httptest.NewRecorder()
		h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/scans", bytes.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Scan
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "scan-1", got.ID)
		assert.Equal(t, 1, got.Summary.Critical)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		rec := httptest.NewRecorder()
		h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/scans", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("invalid observation", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		body := `{"observations":[{"bssid":"aa:bb:cc:dd:ee:ff","frequency":-5}]}`
		rec := httptest.NewRecorder()
		h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/scans", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "frequency")
		svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("processing failure", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		svc.On("Process", mock.Anything, mock.Anything).Return(domain.Scan{}, errors.New("context canceled"))

		rec := httptest.NewRecorder()
		h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/scans", strings.NewReader(`{"observations":[]}`)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestScanHandler_HandleGet(t *testing.T) {
	tests := []struct {
		name string
		scan domain.Scan
		err  error
		want int
	}{
		{"found", testScan(), nil, http.StatusOK},
		{"not found", domain.Scan{}, domain.ErrScanNotFound, http.StatusNotFound},
		{"wrapped not found", domain.Scan{}, errors.Join(errors.New("db"), domain.ErrScanNotFound), http.StatusNotFound},
		{"store failure", domain.Scan{}, errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, _ := newScanHandler()
			svc.On("Get", mock.Anything, "scan-1").Return(tt.scan, tt.err)

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/scans/scan-1", nil), map[string]string{"id": "scan-1"})
			rec := httptest.NewRecorder()
			h.HandleGet(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestScanHandler_HandleList(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		svc.On("List", mock.Anything, defaultListLimit).Return([]domain.Scan{testScan()}, nil)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/scans", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Scans []domain.Scan `json:"scans"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Scans, 1)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		h, svc, _ := newScanHandler()
		svc.On("List", mock.Anything, 5).Return(nil, nil)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/scans?limit=5", nil))

		assert.JSONEq(t, `{"scans":[]}`, rec.Body.String())
	})

	for _, raw := range []string{"abc", "-1", "100000"} {
		t.Run("bad limit "+raw, func(t *testing.T) {
			h, svc, _ := newScanHandler()
			rec := httptest.NewRecorder()
			h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/scans?limit="+raw, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestScanHandler_HandleExport(t *testing.T) {
	export := func(format string) *httptest.ResponseRecorder {
		h, svc, det := newScanHandler()
		svc.On("Get", mock.Anything, "scan-1").Return(testScan(), nil)
		det.On("LearnedNetworks").Return([]domain.LearnedNetwork{{SSID: "HomeNet", Address: "f4:ec:38:00:00:01"}})
		det.On("Stats").Return(domain.TrackingStats{ModelVersion: "5.0-two-class"})

		req := httptest.NewRequest(http.MethodGet, "/api/scans/scan-1/export?format="+format, nil)
		req = mux.SetURLVars(req, map[string]string{"id": "scan-1"})
		rec := httptest.NewRecorder()
		h.HandleExport(rec, req)
		return rec
	}

	t.Run("csv", func(t *testing.T) {
		rec := export("csv")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "nettrust_scan_20251201_103000.csv")

		rows, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("json", func(t *testing.T) {
		rec := export("")
		require.Equal(t, http.StatusOK, rec.Code)
		var results []domain.DetectionResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		assert.Len(t, results, 2)
	})

	t.Run("html", func(t *testing.T) {
		rec := export("html")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "de:ad:be:ef:00:01")
		assert.Contains(t, body, "Flipper Zero")
		assert.Contains(t, body, "Model 5.0-two-class")
		assert.Less(t, strings.Index(body, "CRITICAL</span>"), strings.Index(body, "SAFE</span>"), "most severe first")
	})

	t.Run("pdf", func(t *testing.T) {
		rec := export("pdf")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, export("xml").Code)
	})
}
