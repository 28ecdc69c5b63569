package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/nettrust/internal/adapters/reporting"
	"github.com/lcalzada-xor/nettrust/internal/adapters/web"
	"github.com/lcalzada-xor/nettrust/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/nettrust/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
)

// DefaultWriteLimit is the number of scan submissions and tracking resets
// accepted per client and minute.
const DefaultWriteLimit = 30

// Deps are the services exposed over HTTP.
type Deps struct {
	Scans      ports.ScanProcessor
	History    ports.ScanHistory
	Detector   ports.Detector
	Hub        *web.WSManager
	PDF        *reporting.PDFExporter
	WriteLimit int
	Logger     *slog.Logger
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr           string
	WSManager      *web.WSManager
	ScanHandler    *handlers.ScanHandler
	ModelHandler   *handlers.ModelHandler
	HistoryHandler *handlers.HistoryHandler
	writeLimiter   *middleware.RateLimiter
	logger         *slog.Logger
	srv            *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Hub == nil {
		deps.Hub = web.NewWSManager(nil, logger)
	}
	if deps.PDF == nil {
		deps.PDF = reporting.NewPDFExporter()
	}
	if deps.WriteLimit <= 0 {
		deps.WriteLimit = DefaultWriteLimit
	}

	return &Server{
		Addr:           addr,
		WSManager:      deps.Hub,
		ScanHandler:    handlers.NewScanHandler(deps.Scans, deps.Detector, deps.PDF, logger),
		ModelHandler:   handlers.NewModelHandler(deps.Detector, logger),
		HistoryHandler: handlers.NewHistoryHandler(deps.History, logger),
		writeLimiter:   middleware.NewRateLimiter(deps.WriteLimit, time.Minute),
		logger:         logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	// Instrument with OpenTelemetry
	handler := otelhttp.NewHandler(SetupRoutes(s), "nettrust-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Web server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
