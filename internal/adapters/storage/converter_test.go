package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

func TestToModelAndDomain(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	scan := sampleScan("conv", now)

	model := toModel(scan)
	assert.Equal(t, "conv", model.ID)
	assert.Equal(t, int64(1500*time.Microsecond), model.DurationNS)
	assert.Len(t, model.Detections, 2)
	for i, d := range model.Detections {
		assert.Equal(t, "conv", d.ScanID)
		assert.Equal(t, i, d.Position)
	}
	assert.Equal(t, "Evil_Twin", model.Detections[1].AttackType)
	assert.Equal(t, int(domain.ThreatCritical), model.Detections[1].ThreatLevel)
	assert.JSONEq(t, `["ATTACK HARDWARE DETECTED: Flipper Zero (SUSPICIOUS HARDWARE)"]`, model.Detections[1].Reasons)

	back := toDomain(model)
	assert.Equal(t, scan, back)
}

func TestDetectionToDomain_TolerantDecoding(t *testing.T) {
	r := detectionToDomain(DetectionModel{AttackType: "Karma", Reasons: "not json", ThreatLevel: int(domain.ThreatLow)})

	assert.Equal(t, domain.AttackSafe, r.AttackType)
	assert.Equal(t, domain.ThreatLow, r.ThreatLevel)
	assert.NotNil(t, r.Reasons)
	assert.NotNil(t, r.Probabilities)
}
