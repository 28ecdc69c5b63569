package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

type MockScanProcessor struct {
	mock.Mock
}

func (m *MockScanProcessor) Process(ctx context.Context, obs []domain.Observation) (domain.Scan, error) {
	args := m.Called(ctx, obs)
	return args.Get(0).(domain.Scan), args.Error(1)
}

func (m *MockScanProcessor) Get(ctx context.Context, id string) (domain.Scan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Scan), args.Error(1)
}

func (m *MockScanProcessor) List(ctx context.Context, limit int) ([]domain.Scan, error) {
	args := m.Called(ctx, limit)
	scans, _ := args.Get(0).([]domain.Scan)
	return scans, args.Error(1)
}

type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(obs domain.Observation) domain.DetectionResult {
	return m.Called(obs).Get(0).(domain.DetectionResult)
}

func (m *MockDetector) DetectAll(obs []domain.Observation) []domain.DetectionResult {
	return m.Called(obs).Get(0).([]domain.DetectionResult)
}

func (m *MockDetector) IsLoaded() bool {
	return m.Called().Bool(0)
}

func (m *MockDetector) ModelInfo() string {
	return m.Called().String(0)
}

func (m *MockDetector) Stats() domain.TrackingStats {
	return m.Called().Get(0).(domain.TrackingStats)
}

func (m *MockDetector) ClearTracking() {
	m.Called()
}

func (m *MockDetector) LearnedNetworks() []domain.LearnedNetwork {
	learned, _ := m.Called().Get(0).([]domain.LearnedNetwork)
	return learned
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Detections(ctx context.Context, filter domain.DetectionFilter) ([]domain.DetectionResult, error) {
	args := m.Called(ctx, filter)
	found, _ := args.Get(0).([]domain.DetectionResult)
	return found, args.Error(1)
}
