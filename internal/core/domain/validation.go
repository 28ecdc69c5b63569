package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxScanObservations bounds the size of one submitted scan.
const MaxScanObservations = 512

var (
	ErrTooManyObservations = errors.New("too many observations in one scan")
	ErrInvalidFrequency    = errors.New("frequency must not be negative")
)

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// ScanRequest is the wire form of a submitted scan, shared by the HTTP API,
// the MQTT topic and scan files.
type ScanRequest struct {
	Observations []Observation `json:"observations"`
}

// Validate checks the envelope only. Malformed addresses are left to the
// detector, which reports them per observation without failing the batch.
func (r ScanRequest) Validate() error {
	if len(r.Observations) > MaxScanObservations {
		return &ValidationError{
			Field: "observations",
			Value: fmt.Sprint(len(r.Observations)),
			Err:   ErrTooManyObservations,
		}
	}
	for i, o := range r.Observations {
		if o.Frequency < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("observations[%d].frequency", i),
				Value: fmt.Sprint(o.Frequency),
				Err:   ErrInvalidFrequency,
			}
		}
	}
	return nil
}
