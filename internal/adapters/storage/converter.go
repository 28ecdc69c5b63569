package storage

import (
	"encoding/json"
	"time"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// toDomain converts a database model to a domain scan.
func toDomain(m ScanModel) domain.Scan {
	results := make([]domain.DetectionResult, len(m.Detections))
	for i, d := range m.Detections {
		results[i] = detectionToDomain(d)
	}

	return domain.Scan{
		ID:        m.ID,
		StartedAt: m.StartedAt,
		Duration:  time.Duration(m.DurationNS),
		Results:   results,
		Summary: domain.ScanSummary{
			Total:    m.Total,
			Threats:  m.Threats,
			RogueAPs: m.RogueAPs,
			Critical: m.Critical,
		},
	}
}

func detectionToDomain(m DetectionModel) domain.DetectionResult {
	r := domain.DetectionResult{
		NetworkName:       m.NetworkName,
		BSSID:             m.BSSID,
		Confidence:        m.Confidence,
		IsRogueAP:         m.IsRogueAP,
		IsThreat:          m.IsThreat,
		ThreatLevel:       domain.ThreatLevel(m.ThreatLevel),
		SignalStrength:    m.SignalStrength,
		Frequency:         m.Frequency,
		Channel:           m.Channel,
		Timestamp:         m.Timestamp,
		RecommendedAction: m.RecommendedAction,
		IsBaseline:        m.IsBaseline,
		DetectionCount:    m.DetectionCount,
		Probabilities:     map[string]float64{},
		Reasons:           []string{},
	}

	// Unknown labels from older rows decode as Safe.
	_ = r.AttackType.UnmarshalText([]byte(m.AttackType))
	if m.Probabilities != "" {
		_ = json.Unmarshal([]byte(m.Probabilities), &r.Probabilities)
	}
	if m.Reasons != "" {
		_ = json.Unmarshal([]byte(m.Reasons), &r.Reasons)
	}
	return r
}

// toModel converts a domain scan to its database model.
func toModel(s domain.Scan) ScanModel {
	detections := make([]DetectionModel, len(s.Results))
	for i, r := range s.Results {
		detections[i] = detectionToModel(s.ID, i, r)
	}

	return ScanModel{
		ID:         s.ID,
		StartedAt:  s.StartedAt,
		DurationNS: int64(s.Duration),
		Total:      s.Summary.Total,
		Threats:    s.Summary.Threats,
		RogueAPs:   s.Summary.RogueAPs,
		Critical:   s.Summary.Critical,
		Detections: detections,
	}
}

func detectionToModel(scanID string, position int, r domain.DetectionResult) DetectionModel {
	probs, _ := json.Marshal(r.Probabilities)
	reasons, _ := json.Marshal(r.Reasons)

	return DetectionModel{
		ScanID:            scanID,
		Position:          position,
		NetworkName:       r.NetworkName,
		BSSID:             r.BSSID,
		AttackType:        r.AttackType.String(),
		Confidence:        r.Confidence,
		IsRogueAP:         r.IsRogueAP,
		IsThreat:          r.IsThreat,
		ThreatLevel:       int(r.ThreatLevel),
		Probabilities:     string(probs),
		SignalStrength:    r.SignalStrength,
		Frequency:         r.Frequency,
		Channel:           r.Channel,
		Timestamp:         r.Timestamp,
		RecommendedAction: r.RecommendedAction,
		IsBaseline:        r.IsBaseline,
		DetectionCount:    r.DetectionCount,
		Reasons:           string(reasons),
	}
}
