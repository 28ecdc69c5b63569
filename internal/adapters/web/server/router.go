package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/nettrust/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()
	limited := middleware.RateLimit(s.writeLimiter)

	// Scans
	r.Handle("/api/scans", limited(http.HandlerFunc(s.ScanHandler.HandleSubmit))).Methods(http.MethodPost)
	r.HandleFunc("/api/scans", s.ScanHandler.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/api/scans/{id}", s.ScanHandler.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/scans/{id}/export", s.ScanHandler.HandleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/detections", s.HistoryHandler.HandleDetections).Methods(http.MethodGet)

	// Model administration
	r.HandleFunc("/api/model", s.ModelHandler.HandleInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/networks/learned", s.ModelHandler.HandleLearned).Methods(http.MethodGet)
	r.Handle("/api/tracking", limited(http.HandlerFunc(s.ModelHandler.HandleClearTracking))).Methods(http.MethodDelete)
	r.HandleFunc("/api/healthz", s.ModelHandler.HandleHealth).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
