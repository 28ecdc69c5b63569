package domain

import (
	"errors"
	"strings"
	"time"
)

// MaxFilterLimit bounds the number of detections returned by one history query.
const MaxFilterLimit = 1000

// Domain Errors for filtering
var (
	ErrInvalidLimit       = errors.New("limit must be between 0 and 1000")
	ErrInvalidThreatLevel = errors.New("unknown threat level")
)

// DetectionFilter selects stored detections. Zero fields match everything.
type DetectionFilter struct {
	BSSID      string      `json:"bssid"`       // exact match after normalization
	SSID       string      `json:"ssid"`        // partial match (case-insensitive)
	AttackType *AttackType `json:"attack_type"` // nil = any
	MinThreat  ThreatLevel `json:"min_threat"`
	Since      time.Time   `json:"since"`
	Limit      int         `json:"limit"` // 0 = unlimited
}

// NewDetectionFilter initializes a filter returning the 100 newest detections.
func NewDetectionFilter() *DetectionFilter {
	return &DetectionFilter{Limit: 100}
}

func (f *DetectionFilter) WithBSSID(bssid string) *DetectionFilter {
	f.BSSID = bssid
	return f
}

func (f *DetectionFilter) WithSSID(ssid string) *DetectionFilter {
	f.SSID = ssid
	return f
}

func (f *DetectionFilter) WithAttackType(a AttackType) *DetectionFilter {
	f.AttackType = &a
	return f
}

func (f *DetectionFilter) WithMinThreat(level ThreatLevel) *DetectionFilter {
	f.MinThreat = level
	return f
}

func (f *DetectionFilter) WithSince(t time.Time) *DetectionFilter {
	f.Since = t
	return f
}

func (f *DetectionFilter) WithLimit(n int) *DetectionFilter {
	f.Limit = n
	return f
}

// Validate checks the address format, the threat level and the limit.
func (f *DetectionFilter) Validate() error {
	if f.BSSID != "" && !IsValidMAC(f.BSSID) {
		return &ValidationError{Field: "bssid", Value: f.BSSID, Err: ErrInvalidAddress}
	}
	if f.MinThreat > ThreatCritical {
		return &ValidationError{Field: "min_threat", Value: f.MinThreat.String(), Err: ErrInvalidThreatLevel}
	}
	if f.Limit < 0 || f.Limit > MaxFilterLimit {
		return ErrInvalidLimit
	}
	return nil
}

// Match reports whether a result satisfies the filter, ignoring Limit.
// Stored queries apply the same criteria.
func (f DetectionFilter) Match(r DetectionResult) bool {
	if f.BSSID != "" && NormalizeAddress(r.BSSID) != NormalizeAddress(f.BSSID) {
		return false
	}
	if f.SSID != "" && !strings.Contains(strings.ToLower(r.NetworkName), strings.ToLower(f.SSID)) {
		return false
	}
	if f.AttackType != nil && r.AttackType != *f.AttackType {
		return false
	}
	if r.ThreatLevel < f.MinThreat {
		return false
	}
	return f.Since.IsZero() || !r.Timestamp.Before(f.Since)
}
