package domain

import (
	"math"
	"time"
)

const (
	// HistoryCapacity bounds the per-device signal and frequency history.
	HistoryCapacity = 5

	// BaselineScanThreshold is the number of scans before a clean device is learned.
	BaselineScanThreshold = 3

	// PersistenceThreshold is the number of same-type detections that confirm an attack.
	PersistenceThreshold = 2

	// MaxEvidenceConfidence caps boosted confidence of persistent attacks.
	MaxEvidenceConfidence = 0.95

	confirmBoost = 1.2
	persistBoost = 1.15
)

// TrustState is the standing of a device profile.
// Baseline and Compromised are mutually exclusive by construction. A profile
// that was baseline when an attack was confirmed returns to baseline once the
// confirmation is withdrawn.
type TrustState uint8

const (
	// TrustLearning: not yet trusted; may hold provisional evidence.
	TrustLearning TrustState = iota
	// TrustBaseline: promoted after clean scans; may hold provisional evidence.
	TrustBaseline
	// TrustCompromised: attack evidence confirmed.
	TrustCompromised
)

func (s TrustState) String() string {
	switch s {
	case TrustBaseline:
		return "baseline"
	case TrustCompromised:
		return "compromised"
	default:
		return "learning"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TrustState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TrustState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "learning":
		*s = TrustLearning
	case "baseline":
		*s = TrustBaseline
	case "compromised":
		*s = TrustCompromised
	default:
		return &ValidationError{Field: "state", Value: string(text), Err: ErrInvalidState}
	}
	return nil
}

// AttackEvidence accumulates repeated detections of one attack type.
type AttackEvidence struct {
	Type            AttackType `json:"attack_type"`
	TotalConfidence float64    `json:"total_confidence"`
	Count           int        `json:"detection_count"`
	LastSeen        time.Time  `json:"last_seen"`
	Confirmed       bool       `json:"confirmed"`
	// Reported is the highest confidence reported since confirmation.
	Reported float64 `json:"reported"`
}

// Average returns the mean confidence over all detections.
func (e *AttackEvidence) Average() float64 {
	if e.Count == 0 {
		return 0
	}
	return e.TotalConfidence / float64(e.Count)
}

// DeviceProfile is the tracked history of one access point.
type DeviceProfile struct {
	Address          string          `json:"bssid"`
	SSID             string          `json:"ssid"`
	ScanCount        int             `json:"scan_count"`
	AvgRSSI          float64         `json:"avg_rssi"`
	RSSIHistory      []int           `json:"rssi_history"`
	FrequencyHistory []int           `json:"frequency_history"`
	State            TrustState      `json:"state"`
	Evidence         *AttackEvidence `json:"evidence,omitempty"`
	FirstSeen        time.Time       `json:"first_seen"`
	LastSeen         time.Time       `json:"last_seen"`

	// prior is the state held before the current confirmation.
	prior TrustState
}

// NewDeviceProfile creates an empty profile for an address.
func NewDeviceProfile(address string) *DeviceProfile {
	return &DeviceProfile{
		Address:          address,
		RSSIHistory:      make([]int, 0, HistoryCapacity),
		FrequencyHistory: make([]int, 0, HistoryCapacity),
	}
}

// Observe folds a new sighting into the profile.
func (p *DeviceProfile) Observe(o Observation) {
	p.SSID = o.SSID
	p.ScanCount++
	p.RSSIHistory = pushBounded(p.RSSIHistory, o.Signal)
	p.FrequencyHistory = pushBounded(p.FrequencyHistory, o.Frequency)

	sum := 0
	for _, v := range p.RSSIHistory {
		sum += v
	}
	p.AvgRSSI = float64(sum) / float64(len(p.RSSIHistory))

	if p.FirstSeen.IsZero() {
		p.FirstSeen = o.SeenAt
	}
	p.LastSeen = o.SeenAt
}

func pushBounded(history []int, v int) []int {
	history = append(history, v)
	if len(history) > HistoryCapacity {
		history = append(history[:0], history[len(history)-HistoryCapacity:]...)
	}
	return history
}

// IsBaseline reports whether the device has been learned as trusted.
func (p *DeviceProfile) IsBaseline() bool {
	return p.State == TrustBaseline
}

// IsConfirmed reports whether attack evidence has been confirmed.
func (p *DeviceProfile) IsConfirmed() bool {
	return p.State == TrustCompromised
}

// DetectionCount returns the number of accumulated detections, 0 without evidence.
func (p *DeviceProfile) DetectionCount() int {
	if p.Evidence == nil {
		return 0
	}
	return p.Evidence.Count
}

// RecordAttack applies an accepted attack verdict. A different type restarts
// provisional evidence and withdraws any confirmation, restoring the state held
// before it; the same type accumulates and confirms at PersistenceThreshold. It returns the confidence to report for this scan and
// whether this detection confirmed the attack.
func (p *DeviceProfile) RecordAttack(attack AttackType, confidence float64, at time.Time) (float64, bool) {
	ev := p.Evidence
	if ev == nil || ev.Type != attack {
		p.Evidence = &AttackEvidence{
			Type:            attack,
			TotalConfidence: confidence,
			Count:           1,
			LastSeen:        at,
		}
		if p.State == TrustCompromised {
			p.State = p.prior
		}
		return confidence, false
	}

	ev.Count++
	ev.TotalConfidence += confidence
	ev.LastSeen = at

	if ev.Count < PersistenceThreshold || ev.Confirmed {
		return confidence, false
	}

	ev.Confirmed = true
	p.prior = p.State
	p.State = TrustCompromised
	ev.Reported = math.Min(ev.Average()*confirmBoost, MaxEvidenceConfidence)
	return ev.Reported, true
}

// RecordClean applies a safe or rejected verdict and promotes the profile to
// baseline once enough scans were seen without confirmed evidence.
// Provisional evidence is discarded on promotion.
func (p *DeviceProfile) RecordClean() bool {
	if p.State != TrustLearning || p.ScanCount < BaselineScanThreshold {
		return false
	}
	p.State = TrustBaseline
	p.Evidence = nil
	return true
}

// PersistentVerdict returns the confirmed attack with its recomputed
// confidence. The reported confidence never drops while confirmed; its floor
// is the confirmBoost (x1.2) value reported when the attack was confirmed.
func (p *DeviceProfile) PersistentVerdict() (AttackType, float64, bool) {
	if p.State != TrustCompromised || p.Evidence == nil {
		return AttackSafe, 0, false
	}
	ev := p.Evidence
	conf := math.Min(ev.Average()*persistBoost, MaxEvidenceConfidence)
	if conf < ev.Reported {
		conf = ev.Reported
	}
	ev.Reported = conf
	return ev.Type, conf, true
}

// Clone returns a deep copy safe to hand out of the registry.
func (p *DeviceProfile) Clone() DeviceProfile {
	c := *p
	c.RSSIHistory = append([]int(nil), p.RSSIHistory...)
	c.FrequencyHistory = append([]int(nil), p.FrequencyHistory...)
	if p.Evidence != nil {
		ev := *p.Evidence
		c.Evidence = &ev
	}
	return c
}

// LearnedNetwork is a baseline access point.
type LearnedNetwork struct {
	SSID    string `json:"ssid"`
	Address string `json:"bssid"`
}
