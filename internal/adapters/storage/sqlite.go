package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
)

// SQLiteAdapter implements ports.ScanStore using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ScanModel is the GORM model for a scan batch.
type ScanModel struct {
	ID         string    `gorm:"primaryKey"`
	StartedAt  time.Time `gorm:"index"`
	DurationNS int64
	Total      int
	Threats    int
	RogueAPs   int
	Critical   int

	Detections []DetectionModel `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
}

// DetectionModel stores one result of a scan.
type DetectionModel struct {
	ID                uint   `gorm:"primaryKey"`
	ScanID            string `gorm:"index"`
	Position          int    // index in the scan's input order
	NetworkName       string
	BSSID             string `gorm:"index"`
	AttackType        string
	Confidence        float64
	IsRogueAP         bool
	IsThreat          bool
	ThreatLevel       int `gorm:"index"`
	Probabilities     string // JSON encoded map[string]float64
	SignalStrength    int
	Frequency         int
	Channel           int
	Timestamp         time.Time `gorm:"index"`
	RecommendedAction string
	IsBaseline        bool
	DetectionCount    int
	Reasons           string // JSON encoded []string
}

// NewSQLiteAdapter opens the database, enables query tracing and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return newAdapter(db)
}

func newAdapter(db *gorm.DB) (*SQLiteAdapter, error) {
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("failed to enable query tracing: %w", err)
	}
	if err := db.AutoMigrate(&ScanModel{}, &DetectionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_detections_scan_position ON detection_models(scan_id, position)").Error; err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

// SaveScan stores a scan and its results in one transaction.
func (a *SQLiteAdapter) SaveScan(ctx context.Context, scan domain.Scan) error {
	model := toModel(scan)
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Detections").Create(&model).Error; err != nil {
			return err
		}
		if len(model.Detections) == 0 {
			return nil
		}
		return tx.CreateInBatches(model.Detections, 100).Error
	})
}

// GetScan retrieves a scan by id with its results in input order.
func (a *SQLiteAdapter) GetScan(ctx context.Context, id string) (domain.Scan, error) {
	var model ScanModel
	err := a.db.WithContext(ctx).
		Preload("Detections", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Scan{}, fmt.Errorf("%w: %s", domain.ErrScanNotFound, id)
	}
	if err != nil {
		return domain.Scan{}, err
	}
	return toDomain(model), nil
}

// ListScans returns up to limit scans, newest first. A non-positive limit returns all.
func (a *SQLiteAdapter) ListScans(ctx context.Context, limit int) ([]domain.Scan, error) {
	query := a.db.WithContext(ctx).
		Preload("Detections", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ScanModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	scans := make([]domain.Scan, len(models))
	for i, m := range models {
		scans[i] = toDomain(m)
	}
	return scans, nil
}

// FindDetections retrieves stored results matching the filter, newest first.
func (a *SQLiteAdapter) FindDetections(ctx context.Context, filter domain.DetectionFilter) ([]domain.DetectionResult, error) {
	query := a.db.WithContext(ctx).Model(&DetectionModel{})

	if filter.BSSID != "" {
		query = query.Where("LOWER(REPLACE(bssid, '-', ':')) = ?", domain.NormalizeAddress(filter.BSSID))
	}
	if filter.SSID != "" {
		query = query.Where(`LOWER(network_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filter.SSID))+"%")
	}
	if filter.AttackType != nil {
		query = query.Where("attack_type = ?", filter.AttackType.String())
	}
	if filter.MinThreat > domain.ThreatSafe {
		query = query.Where("threat_level >= ?", int(filter.MinThreat))
	}
	if !filter.Since.IsZero() {
		query = query.Where("timestamp >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []DetectionModel
	if err := query.Order("timestamp DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	results := make([]domain.DetectionResult, len(models))
	for i, m := range models {
		results[i] = detectionToDomain(m)
	}
	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern escaped with '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// PruneBefore deletes scans started before the cutoff and returns how many were removed.
func (a *SQLiteAdapter) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&ScanModel{}).Select("id").Where("started_at < ?", cutoff)
		if err := tx.Where("scan_id IN (?)", sub).Delete(&DetectionModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("started_at < ?", cutoff).Delete(&ScanModel{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}

// Close releases the database handle.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.ScanStore = (*SQLiteAdapter)(nil)
