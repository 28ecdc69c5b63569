package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/nettrust/internal/adapters/reporting"
	"github.com/lcalzada-xor/nettrust/internal/adapters/web/templates"
	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/export"
	"github.com/lcalzada-xor/nettrust/internal/core/services/scan"
)

const defaultListLimit = 20

var scanReport = template.Must(template.New("scan").Funcs(template.FuncMap{
	"percent": func(f float64) float64 { return f * 100 },
}).Parse(templates.ScanReportHTML))

type scanReportData struct {
	Scan         domain.Scan
	Results      []domain.DetectionResult
	Learned      []domain.LearnedNetwork
	GeneratedAt  time.Time
	ModelVersion string
}

// ScanHandler handles scan submission, retrieval and export
type ScanHandler struct {
	Service  ports.ScanProcessor
	Detector ports.Detector
	PDF      *reporting.PDFExporter
	logger   *slog.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(service ports.ScanProcessor, detector ports.Detector, pdf *reporting.PDFExporter, logger *slog.Logger) *ScanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanHandler{
		Service:  service,
		Detector: detector,
		PDF:      pdf,
		logger:   logger,
	}
}

// HandleSubmit classifies a posted batch of observations.
func (h *ScanHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req domain.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Process(scan.WithSource(r.Context(), "http"), req.Observations)
	if err != nil {
		h.logger.Error("Scan processing failed", "error", err)
		http.Error(w, "Failed to process scan", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleList returns recent scans, newest first.
func (h *ScanHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultListLimit, domain.MaxFilterLimit)
	if !ok {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	scans, err := h.Service.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list scans", "error", err)
		http.Error(w, "Failed to list scans", http.StatusInternalServerError)
		return
	}
	if scans == nil {
		scans = []domain.Scan{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"scans": scans})
}

// HandleGet returns one scan by id.
func (h *ScanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// HandleExport downloads one scan as json, csv, html or pdf.
func (h *ScanHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.lookup(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	filename := fmt.Sprintf("nettrust_scan_%s.%s", sc.StartedAt.Format("20060102_150405"), format)

	var err error
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		err = export.ExportJSON(w, sc.Results)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		err = export.ExportCSV(w, sc.Results)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		err = scanReport.Execute(w, h.reportData(sc))
	case "pdf":
		data := h.reportData(sc)
		pdf, perr := h.PDF.ExportScan(sc, data.Learned, reporting.ReportMeta{
			GeneratedAt:  data.GeneratedAt,
			GeneratedBy:  "nettrust api",
			ModelVersion: data.ModelVersion,
		})
		if perr != nil {
			h.logger.Error("PDF export failed", "scan_id", sc.ID, "error", perr)
			http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		_, err = w.Write(pdf)
	default:
		http.Error(w, "Unsupported format", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.logger.Warn("Export failed", "scan_id", sc.ID, "format", format, "error", err)
	}
}

func (h *ScanHandler) lookup(w http.ResponseWriter, r *http.Request) (domain.Scan, bool) {
	id := mux.Vars(r)["id"]
	sc, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, domain.ErrScanNotFound) {
		http.Error(w, "Scan not found", http.StatusNotFound)
		return domain.Scan{}, false
	}
	if err != nil {
		h.logger.Error("Failed to load scan", "scan_id", id, "error", err)
		http.Error(w, "Failed to load scan", http.StatusInternalServerError)
		return domain.Scan{}, false
	}
	return sc, true
}

func (h *ScanHandler) reportData(sc domain.Scan) scanReportData {
	return scanReportData{
		Scan:         sc,
		Results:      domain.SortByThreat(sc.Results),
		Learned:      h.Detector.LearnedNetworks(),
		GeneratedAt:  time.Now(),
		ModelVersion: h.Detector.Stats().ModelVersion,
	}
}
