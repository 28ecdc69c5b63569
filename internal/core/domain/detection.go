package domain

import (
	"sort"
	"time"
)

// Distribution maps each scored class to its probability.
type Distribution map[AttackType]float64

// Max returns the highest probability, 0 for an empty distribution.
func (d Distribution) Max() float64 {
	best := 0.0
	for _, v := range d {
		if v > best {
			best = v
		}
	}
	return best
}

// Argmax returns the most probable class. Ties resolve in AttackClasses order.
func (d Distribution) Argmax() AttackType {
	best, bestP := AttackSafe, -1.0
	for _, c := range AttackClasses {
		if p, ok := d[c]; ok && p > bestP {
			best, bestP = c, p
		}
	}
	return best
}

// Labeled returns the distribution keyed by class name, for serialization.
func (d Distribution) Labeled() map[string]float64 {
	out := make(map[string]float64, len(d))
	for k, v := range d {
		out[k.String()] = v
	}
	return out
}

// RuleVerdict is the outcome of the rule engine for one observation.
type RuleVerdict struct {
	Rule       string     // name of the rule that matched, empty on default
	Attack     AttackType
	Confidence float64
	Reasons    []string
}

// DetectionResult is the classification of one observation.
type DetectionResult struct {
	NetworkName       string             `json:"network_name"`
	BSSID             string             `json:"bssid"`
	AttackType        AttackType         `json:"attack_type"`
	Confidence        float64            `json:"confidence"`
	IsRogueAP         bool               `json:"is_rogue_ap"`
	IsThreat          bool               `json:"is_threat"`
	ThreatLevel       ThreatLevel        `json:"threat_level"`
	Probabilities     map[string]float64 `json:"probabilities"`
	SignalStrength    int                `json:"signal_strength"`
	Frequency         int                `json:"frequency"`
	Channel           int                `json:"channel"`
	Timestamp         time.Time          `json:"timestamp"`
	RecommendedAction string             `json:"recommended_action"`
	IsBaseline        bool               `json:"is_baseline"`
	DetectionCount    int                `json:"detection_count"`
	Reasons           []string           `json:"detection_reasons"`
}

// ScanSummary aggregates the results of one scan.
type ScanSummary struct {
	Total    int `json:"total"`
	Threats  int `json:"threats"`
	RogueAPs int `json:"rogue_aps"`
	Critical int `json:"critical"`
}

// Summarize counts threats in a result set.
func Summarize(results []DetectionResult) ScanSummary {
	s := ScanSummary{Total: len(results)}
	for _, r := range results {
		if r.IsThreat {
			s.Threats++
		}
		if r.IsRogueAP {
			s.RogueAPs++
		}
		if r.ThreatLevel == ThreatCritical {
			s.Critical++
		}
	}
	return s
}

// SortByThreat returns a copy of results ordered most severe first.
// Equal levels keep their scan order.
func SortByThreat(results []DetectionResult) []DetectionResult {
	sorted := append([]DetectionResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ThreatLevel > sorted[j].ThreatLevel
	})
	return sorted
}

// Scan is one batch of observations and their results, in input order.
type Scan struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Results   []DetectionResult `json:"results"`
	Summary   ScanSummary       `json:"summary"`
}
