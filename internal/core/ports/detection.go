package ports

import (
	"context"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// ModelLoader supplies the model configuration consumed by the detection engine.
type ModelLoader interface {
	Load() (domain.ModelParams, error)
}

// ModelLoaderFunc adapts a plain function to ModelLoader.
type ModelLoaderFunc func() (domain.ModelParams, error)

// Load calls f.
func (f ModelLoaderFunc) Load() (domain.ModelParams, error) {
	return f()
}

// Detector classifies access point observations.
type Detector interface {
	// Detect classifies a single observation. It never fails; failures are
	// reported as a Safe result carrying an explanatory reason.
	Detect(obs domain.Observation) domain.DetectionResult

	// DetectAll classifies a batch, returning one result per observation in input order.
	DetectAll(obs []domain.Observation) []domain.DetectionResult

	// IsLoaded reports whether valid model parameters were loaded.
	IsLoaded() bool

	// ModelInfo returns a human-readable summary of the engine state.
	ModelInfo() string

	// Stats returns the engine state in structured form.
	Stats() domain.TrackingStats

	// ClearTracking drops all profiles and the SSID index.
	ClearTracking()

	// LearnedNetworks returns every baseline access point.
	LearnedNetworks() []domain.LearnedNetwork
}

// ScanStore persists scan history.
type ScanStore interface {
	SaveScan(ctx context.Context, scan domain.Scan) error
	GetScan(ctx context.Context, id string) (domain.Scan, error)
	ListScans(ctx context.Context, limit int) ([]domain.Scan, error)
	FindDetections(ctx context.Context, filter domain.DetectionFilter) ([]domain.DetectionResult, error)
}

// ResultPublisher pushes completed scans to an outbound channel (websocket, broker).
type ResultPublisher interface {
	PublishScan(ctx context.Context, scan domain.Scan) error
}

// ScanProcessor runs a batch of observations through detection.
type ScanProcessor interface {
	Process(ctx context.Context, obs []domain.Observation) (domain.Scan, error)
	Get(ctx context.Context, id string) (domain.Scan, error)
	List(ctx context.Context, limit int) ([]domain.Scan, error)
}

// ScanHistory searches results of past scans.
type ScanHistory interface {
	Detections(ctx context.Context, filter domain.DetectionFilter) ([]domain.DetectionResult, error)
}
