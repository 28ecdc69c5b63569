package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// setupTempDB creates a new SQLiteAdapter backed by a file in a temp dir
func setupTempDB(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func sampleScan(id string, started time.Time) domain.Scan {
	results := []domain.DetectionResult{
		{
			NetworkName:       "HomeNet",
			BSSID:             "F4:EC:38:00:00:01",
			AttackType:        domain.AttackSafe,
			ThreatLevel:       domain.ThreatSafe,
			Probabilities:     map[string]float64{"Evil_Twin": 0.51, "Rogue_AP": 0.49},
			SignalStrength:    -50,
			Frequency:         2437,
			Channel:           6,
			Timestamp:         started,
			RecommendedAction: "Network appears safe. Monitoring...",
			Reasons:           []string{},
		},
		{
			NetworkName:       "HomeNet",
			BSSID:             "de:ad:be:ef:00:01",
			AttackType:        domain.AttackEvilTwin,
			Confidence:        0.95,
			IsRogueAP:         true,
			IsThreat:          true,
			ThreatLevel:       domain.ThreatCritical,
			Probabilities:     map[string]float64{"Evil_Twin": 0.53, "Rogue_AP": 0.47},
			SignalStrength:    -40,
			Frequency:         2437,
			Channel:           6,
			Timestamp:         started,
			RecommendedAction: "CRITICAL: Evil Twin Attack! DO NOT CONNECT!",
			DetectionCount:    1,
			Reasons:           []string{"ATTACK HARDWARE DETECTED: Flipper Zero (SUSPICIOUS HARDWARE)"},
		},
	}
	return domain.Scan{
		ID:        id,
		StartedAt: started,
		Duration:  1500 * time.Microsecond,
		Results:   results,
		Summary:   domain.Summarize(results),
	}
}

func TestSaveAndGetScan(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()
	started := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	scan := sampleScan("scan-1", started)

	require.NoError(t, adapter.SaveScan(ctx, scan))

	stored, err := adapter.GetScan(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, scan.ID, stored.ID)
	assert.True(t, scan.StartedAt.Equal(stored.StartedAt))
	assert.Equal(t, scan.Duration, stored.Duration)
	assert.Equal(t, scan.Summary, stored.Summary)

	require.Len(t, stored.Results, 2)
	for i, want := range scan.Results {
		got := stored.Results[i]
		assert.Equal(t, want.BSSID, got.BSSID, "results keep scan order")
		assert.Equal(t, want.AttackType, got.AttackType)
		assert.Equal(t, want.ThreatLevel, got.ThreatLevel)
		assert.Equal(t, want.Confidence, got.Confidence)
		assert.Equal(t, want.Probabilities, got.Probabilities)
		assert.Equal(t, want.Reasons, got.Reasons)
		assert.Equal(t, want.RecommendedAction, got.RecommendedAction)
	}
}

func TestGetScan_NotFound(t *testing.T) {
	adapter := setupTempDB(t)

	_, err := adapter.GetScan(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)
}

func TestSaveScan_DuplicateID(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()
	scan := sampleScan("dup", time.Now().UTC())

	require.NoError(t, adapter.SaveScan(ctx, scan))
	assert.Error(t, adapter.SaveScan(ctx, scan))

	// The failed transaction leaves no extra rows behind.
	found, err := adapter.FindDetections(ctx, domain.DetectionFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestListScans(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, adapter.SaveScan(ctx, sampleScan(id, base.Add(time.Duration(i)*time.Hour))))
	}

	scans, err := adapter.ListScans(ctx, 2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "c", scans[0].ID)
	assert.Equal(t, "b", scans[1].ID)
	assert.Len(t, scans[0].Results, 2)

	all, err := adapter.ListScans(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindDetections(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, adapter.SaveScan(ctx, sampleScan("old", base)))
	require.NoError(t, adapter.SaveScan(ctx, sampleScan("new", base.Add(24*time.Hour))))

	evil := domain.AttackEvilTwin
	tests := []struct {
		name   string
		filter domain.DetectionFilter
		want   int
	}{
		{"everything", domain.DetectionFilter{}, 4},
		{"by address any case", domain.DetectionFilter{BSSID: "DE-AD-BE-EF-00-01"}, 2},
		{"by stored upper case address", domain.DetectionFilter{BSSID: "f4:ec:38:00:00:01"}, 2},
		{"by attack type", domain.DetectionFilter{AttackType: &evil}, 2},
		{"by network name", domain.DetectionFilter{SSID: "homen"}, 4},
		{"by missing network name", domain.DetectionFilter{SSID: "hotel"}, 0},
		{"minimum threat", domain.DetectionFilter{MinThreat: domain.ThreatHigh}, 2},
		{"since", domain.DetectionFilter{Since: base.Add(time.Hour)}, 2},
		{"limit", domain.DetectionFilter{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := adapter.FindDetections(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
			for _, r := range found {
				assert.True(t, tt.filter.Match(r), "store and in-memory filters agree")
			}
		})
	}
}

func TestFindDetections_NameIsLiteral(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()

	sc := sampleScan("names", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	sc.Results[0].NetworkName = "my_net"
	sc.Results[1].NetworkName = "myXnet 100% free"
	require.NoError(t, adapter.SaveScan(ctx, sc))

	tests := []struct {
		ssid string
		want string
	}{
		{"my_net", "my_net"},
		{"100%", "myXnet 100% free"},
	}
	for _, tt := range tests {
		t.Run(tt.ssid, func(t *testing.T) {
			found, err := adapter.FindDetections(ctx, domain.DetectionFilter{SSID: tt.ssid})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, tt.want, found[0].NetworkName)
		})
	}

	found, err := adapter.FindDetections(ctx, domain.DetectionFilter{SSID: `my\`})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNewAdapter_IndexFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "history.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// A table holding the index name makes CREATE INDEX fail.
	require.NoError(t, db.Exec("CREATE TABLE idx_detections_scan_position (id INTEGER)").Error)

	adapter, err := newAdapter(db)
	assert.Nil(t, adapter)
	assert.ErrorContains(t, err, "failed to create history index")
}

func TestPruneBefore(t *testing.T) {
	adapter := setupTempDB(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, adapter.SaveScan(ctx, sampleScan("old", base)))
	require.NoError(t, adapter.SaveScan(ctx, sampleScan("new", base.Add(48*time.Hour))))

	removed, err := adapter.PruneBefore(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = adapter.GetScan(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)

	found, err := adapter.FindDetections(ctx, domain.DetectionFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
