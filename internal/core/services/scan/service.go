package scan

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/telemetry"
)

const recentScans = 64

// Service runs observation batches through the detector, then stores and
// publishes the resulting scan.
type Service struct {
	detector   ports.Detector
	store      ports.ScanStore
	publishers []ports.ResultPublisher
	recent     *lru.Cache[string, domain.Scan]
	logger     *slog.Logger
	now        func() time.Time
}

var (
	_ ports.ScanProcessor = (*Service)(nil)
	_ ports.ScanHistory   = (*Service)(nil)
)

// NewService creates a scan service. store may be nil, in which case only
// the most recent scans are kept in memory.
func NewService(detector ports.Detector, store ports.ScanStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	recent, _ := lru.New[string, domain.Scan](recentScans)
	return &Service{
		detector: detector,
		store:    store,
		recent:   recent,
		logger:   logger,
		now:      time.Now,
	}
}

// AddPublisher registers an outbound channel for completed scans.
func (s *Service) AddPublisher(p ports.ResultPublisher) {
	s.publishers = append(s.publishers, p)
}

// Process classifies a batch. Results keep the input order. Store and
// publisher failures are logged and never fail the scan.
func (s *Service) Process(ctx context.Context, obs []domain.Observation) (domain.Scan, error) {
	ctx, span := otel.Tracer("scan-service").Start(ctx, "ProcessScan")
	defer span.End()
	span.SetAttributes(attribute.Int("scan.observations", len(obs)))

	if err := ctx.Err(); err != nil {
		return domain.Scan{}, err
	}

	started := s.now()
	obs = append([]domain.Observation(nil), obs...)
	for i := range obs {
		if obs[i].SeenAt.IsZero() {
			obs[i].SeenAt = started
		}
	}
	results := s.detector.DetectAll(obs)

	sc := domain.Scan{
		ID:        uuid.New().String(),
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Results:   results,
		Summary:   domain.Summarize(results),
	}
	telemetry.ScansTotal.WithLabelValues(sourceFrom(ctx)).Inc()
	telemetry.ScanDuration.Observe(sc.Duration.Seconds())
	span.SetAttributes(
		attribute.String("scan.id", sc.ID),
		attribute.Int("scan.threats", sc.Summary.Threats),
	)

	s.recent.Add(sc.ID, sc)

	if s.store != nil {
		if err := s.store.SaveScan(ctx, sc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save scan")
			s.logger.Error("Failed to save scan", "scan_id", sc.ID, "error", err)
		}
	}

	for _, p := range s.publishers {
		if err := p.PublishScan(ctx, sc); err != nil {
			s.logger.Warn("Failed to publish scan", "scan_id", sc.ID, "error", err)
		}
	}

	if sc.Summary.Threats > 0 {
		s.logger.Warn("Scan completed with threats",
			"scan_id", sc.ID,
			"networks", sc.Summary.Total,
			"threats", sc.Summary.Threats,
			"critical", sc.Summary.Critical,
		)
	} else {
		s.logger.Info("Scan completed", "scan_id", sc.ID, "networks", sc.Summary.Total)
	}
	return sc, nil
}

// Get returns a scan by id, from memory first and then from the store.
func (s *Service) Get(ctx context.Context, id string) (domain.Scan, error) {
	if sc, ok := s.recent.Get(id); ok {
		return sc, nil
	}
	if s.store == nil {
		return domain.Scan{}, domain.ErrScanNotFound
	}
	sc, err := s.store.GetScan(ctx, id)
	if err != nil {
		return domain.Scan{}, err
	}
	s.recent.Add(id, sc)
	return sc, nil
}

// List returns up to limit scans, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Scan, error) {
	if s.store != nil {
		return s.store.ListScans(ctx, limit)
	}

	scans := s.recent.Values()
	sort.SliceStable(scans, func(i, j int) bool {
		return scans[i].StartedAt.After(scans[j].StartedAt)
	})
	if limit > 0 && len(scans) > limit {
		scans = scans[:limit]
	}
	return scans, nil
}

// Detections returns past results matching filter, newest first. Without a
// store only the scans still held in memory are searched.
func (s *Service) Detections(ctx context.Context, filter domain.DetectionFilter) ([]domain.DetectionResult, error) {
	if s.store != nil {
		return s.store.FindDetections(ctx, filter)
	}

	scans, _ := s.List(ctx, 0)
	var out []domain.DetectionResult
	for _, sc := range scans {
		for _, r := range sc.Results {
			if !filter.Match(r) {
				continue
			}
			out = append(out, r)
			if filter.Limit > 0 && len(out) == filter.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

type sourceKey struct{}

// WithSource tags a context with the origin of a scan (http, mqtt, file),
// used as a metric label.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok && s != "" {
		return s
	}
	return "api"
}
