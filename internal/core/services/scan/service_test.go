package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// MockDetector for scan processing tests
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(obs domain.Observation) domain.DetectionResult {
	args := m.Called(obs)
	return args.Get(0).(domain.DetectionResult)
}

func (m *MockDetector) DetectAll(obs []domain.Observation) []domain.DetectionResult {
	args := m.Called(obs)
	return args.Get(0).([]domain.DetectionResult)
}

func (m *MockDetector) IsLoaded() bool                          { return true }
func (m *MockDetector) ModelInfo() string                       { return "" }
func (m *MockDetector) Stats() domain.TrackingStats             { return domain.TrackingStats{} }
func (m *MockDetector) ClearTracking()                          {}
func (m *MockDetector) LearnedNetworks() []domain.LearnedNetwork { return nil }

// MockStore for scan persistence
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveScan(ctx context.Context, scan domain.Scan) error {
	return m.Called(ctx, scan).Error(0)
}

func (m *MockStore) GetScan(ctx context.Context, id string) (domain.Scan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Scan), args.Error(1)
}

func (m *MockStore) ListScans(ctx context.Context, limit int) ([]domain.Scan, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Scan), args.Error(1)
}

func (m *MockStore) FindDetections(ctx context.Context, f domain.DetectionFilter) ([]domain.DetectionResult, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.DetectionResult), args.Error(1)
}

// MockPublisher for outbound scan delivery
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishScan(ctx context.Context, scan domain.Scan) error {
	return m.Called(ctx, scan).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var batch = []domain.Observation{
	{BSSID: "f4:ec:38:00:00:01", SSID: "Home", Signal: -50, Frequency: 2437},
	{BSSID: "de:ad:be:ef:00:01", SSID: "Home", Signal: -40, Frequency: 2437},
}

var batchResults = []domain.DetectionResult{
	{BSSID: "f4:ec:38:00:00:01", ThreatLevel: domain.ThreatSafe},
	{BSSID: "de:ad:be:ef:00:01", ThreatLevel: domain.ThreatCritical, IsThreat: true, IsRogueAP: true, AttackType: domain.AttackEvilTwin},
}

func TestService_Process(t *testing.T) {
	detector := new(MockDetector)
	detector.On("DetectAll", mock.AnythingOfType("[]domain.Observation")).Return(batchResults)
	store := new(MockStore)
	store.On("SaveScan", mock.Anything, mock.AnythingOfType("domain.Scan")).Return(nil)
	publisher := new(MockPublisher)
	publisher.On("PublishScan", mock.Anything, mock.AnythingOfType("domain.Scan")).Return(nil)

	svc := NewService(detector, store, quietLogger())
	svc.AddPublisher(publisher)

	sc, err := svc.Process(WithSource(context.Background(), "http"), batch)
	require.NoError(t, err)

	assert.NotEmpty(t, sc.ID)
	assert.Equal(t, batchResults, sc.Results)
	assert.Equal(t, domain.ScanSummary{Total: 2, Threats: 1, RogueAPs: 1, Critical: 1}, sc.Summary)
	assert.GreaterOrEqual(t, sc.Duration, time.Duration(0))

	store.AssertExpectations(t)
	publisher.AssertCalled(t, "PublishScan", mock.Anything, sc)

	// Observations are stamped with the scan start without touching the caller's slice.
	sent := detector.Calls[0].Arguments.Get(0).([]domain.Observation)
	for _, o := range sent {
		assert.Equal(t, sc.StartedAt, o.SeenAt)
	}
	assert.True(t, batch[0].SeenAt.IsZero())
}

func TestService_ProcessStoreFailure(t *testing.T) {
	detector := new(MockDetector)
	detector.On("DetectAll", mock.Anything).Return(batchResults)
	store := new(MockStore)
	store.On("SaveScan", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	publisher := new(MockPublisher)
	publisher.On("PublishScan", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(detector, store, quietLogger())
	svc.AddPublisher(publisher)

	sc, err := svc.Process(context.Background(), batch)
	require.NoError(t, err)
	assert.Len(t, sc.Results, 2)

	got, err := svc.Get(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc.ID, got.ID, "kept in memory when the store fails")
	publisher.AssertNumberOfCalls(t, "PublishScan", 1)
}

func TestService_PublisherFailureIsNotFatal(t *testing.T) {
	detector := new(MockDetector)
	detector.On("DetectAll", mock.Anything).Return(batchResults)
	failing := new(MockPublisher)
	failing.On("PublishScan", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	healthy := new(MockPublisher)
	healthy.On("PublishScan", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(detector, nil, quietLogger())
	svc.AddPublisher(failing)
	svc.AddPublisher(healthy)

	_, err := svc.Process(context.Background(), batch)
	require.NoError(t, err)
	healthy.AssertNumberOfCalls(t, "PublishScan", 1)
}

func TestService_ProcessCancelled(t *testing.T) {
	detector := new(MockDetector)
	svc := NewService(detector, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, batch)
	assert.ErrorIs(t, err, context.Canceled)
	detector.AssertNotCalled(t, "DetectAll", mock.Anything)
}

func TestService_GetAndList(t *testing.T) {
	t.Run("memory only", func(t *testing.T) {
		detector := new(MockDetector)
		detector.On("DetectAll", mock.Anything).Return(batchResults)
		svc := NewService(detector, nil, quietLogger())

		clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return clock }
		first, _ := svc.Process(context.Background(), batch)
		clock = clock.Add(time.Minute)
		second, _ := svc.Process(context.Background(), batch)

		got, err := svc.Get(context.Background(), first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		_, err = svc.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrScanNotFound)

		scans, err := svc.List(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, scans, 1)
		assert.Equal(t, second.ID, scans[0].ID)
	})

	t.Run("falls back to store", func(t *testing.T) {
		stored := domain.Scan{ID: "old", Results: batchResults}
		store := new(MockStore)
		store.On("GetScan", mock.Anything, "old").Return(stored, nil).Once()
		store.On("ListScans", mock.Anything, 10).Return([]domain.Scan{stored}, nil)
		svc := NewService(new(MockDetector), store, quietLogger())

		got, err := svc.Get(context.Background(), "old")
		require.NoError(t, err)
		assert.Equal(t, stored, got)

		// Cached after the first read.
		_, err = svc.Get(context.Background(), "old")
		require.NoError(t, err)
		store.AssertNumberOfCalls(t, "GetScan", 1)

		scans, err := svc.List(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, scans, 1)
	})
}

func TestService_DetectionsInMemory(t *testing.T) {
	detector := new(MockDetector)
	detector.On("DetectAll", mock.Anything).Return(batchResults)
	svc := NewService(detector, nil, quietLogger())

	_, err := svc.Process(context.Background(), batch)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), batch)
	require.NoError(t, err)

	evil := domain.AttackEvilTwin
	tests := []struct {
		name   string
		filter domain.DetectionFilter
		want   int
	}{
		{"all", domain.DetectionFilter{}, 4},
		{"by address", domain.DetectionFilter{BSSID: "DE:AD:BE:EF:00:01"}, 2},
		{"by attack", domain.DetectionFilter{AttackType: &evil}, 2},
		{"critical only", domain.DetectionFilter{MinThreat: domain.ThreatCritical}, 2},
		{"limited", domain.DetectionFilter{Limit: 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Detections(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
