package features

import (
	"strings"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

const (
	bandSplitMHz = 5000

	highRate = 54
	lowRate  = 24

	// Beacon frame constants; a scan result carries no per-frame data.
	beaconFrameLen = 100
	radiotapLen    = 24
	beaconDuration = 44
	beaconSubtype  = 8
	phyOFDM5GHz    = 5
	phyHT24GHz     = 4
)

// protocolMarkers name layers above 802.11 that a scan cannot observe.
var protocolMarkers = []string{"arp", "ip.", "tcp.", "udp.", "data.len", "smb", "dhcp", "dns", "http", "ssh"}

type featureRule struct {
	keys  []string
	value func(o domain.Observation) float64
}

func constant(v float64) func(domain.Observation) float64 {
	return func(domain.Observation) float64 { return v }
}

func byBand(high, low float64) func(domain.Observation) float64 {
	return func(o domain.Observation) float64 {
		if o.Frequency >= bandSplitMHz {
			return high
		}
		return low
	}
}

// rules are evaluated in order; the first rule with a matching key wins.
var rules = []featureRule{
	{keys: []string{"frame.len"}, value: constant(beaconFrameLen)},
	{keys: []string{"frame.time"}, value: constant(0)},
	{keys: []string{"radiotap.channel.flags.cck"}, value: byBand(0, 1)},
	{keys: []string{"radiotap.datarate", "wlan_radio.data_rate"}, value: byBand(highRate, lowRate)},
	{keys: []string{"dbm_antsignal", "signal_dbm"}, value: func(o domain.Observation) float64 { return float64(o.Signal) }},
	{keys: []string{"radiotap.length"}, value: constant(radiotapLen)},
	{keys: []string{"wlan.duration", "wlan_radio.duration"}, value: constant(beaconDuration)},
	{keys: []string{"wlan.fc.type", "wlan.fc.retry"}, value: constant(0)},
	{keys: []string{"wlan.fc.subtype"}, value: constant(beaconSubtype)},
	{keys: []string{"wlan.fixed.reason_code"}, value: constant(0)},
	{keys: []string{"wlan_radio.channel"}, value: func(o domain.Observation) float64 { return float64(o.ResolvedChannel()) }},
	{keys: []string{"wlan_radio.phy"}, value: byBand(phyOFDM5GHz, phyHT24GHz)},
	{keys: []string{"wlan.rsn", "wlan_rsna"}, value: func(o domain.Observation) float64 {
		if strings.Contains(o.Capabilities, "WPA") {
			return 1
		}
		return 0
	}},
}

// Extractor derives a fixed-order numeric vector from an observation.
type Extractor struct {
	names []string
	value []func(domain.Observation) float64
}

// NewExtractor resolves each feature name to its derivation once.
// Names matching no rule, and protocol layer names, always yield 0.
func NewExtractor(names []string) *Extractor {
	e := &Extractor{
		names: append([]string(nil), names...),
		value: make([]func(domain.Observation) float64, len(names)),
	}
	for i, name := range names {
		e.value[i] = resolve(name)
	}
	return e
}

func resolve(name string) func(domain.Observation) float64 {
	lower := strings.ToLower(name)
	for _, m := range protocolMarkers {
		if strings.HasPrefix(lower, m) {
			return constant(0)
		}
	}
	for _, r := range rules {
		for _, k := range r.keys {
			if strings.Contains(lower, k) {
				return r.value
			}
		}
	}
	return constant(0)
}

// Len returns the configured feature count.
func (e *Extractor) Len() int {
	return len(e.names)
}

// Names returns the configured feature names in order.
func (e *Extractor) Names() []string {
	return append([]string(nil), e.names...)
}

// Extract returns one value per configured feature name, in configured order.
func (e *Extractor) Extract(o domain.Observation) []float64 {
	out := make([]float64, len(e.value))
	for i, fn := range e.value {
		out[i] = fn(o)
	}
	return out
}
