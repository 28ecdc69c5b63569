package domain

import (
	"strings"
	"time"
)

// HiddenNetworkName is reported in place of an empty SSID.
const HiddenNetworkName = "<Hidden Network>"

// Observation is a single access point sighting produced by a wireless scan.
type Observation struct {
	SSID         string    `json:"ssid"`
	BSSID        string    `json:"bssid"`
	Frequency    int       `json:"frequency"`    // MHz
	Signal       int       `json:"signal"`       // dBm
	Channel      int       `json:"channel"`      // 0 when the scanner did not report one
	Capabilities string    `json:"capabilities"` // e.g. "[WPA2-PSK-CCMP][ESS]"
	SeenAt       time.Time `json:"seen_at"`
}

// IsHidden reports whether the access point did not broadcast a name.
func (o Observation) IsHidden() bool {
	return o.SSID == ""
}

// DisplayName returns the SSID, or a placeholder for hidden networks.
func (o Observation) DisplayName() string {
	if o.SSID == "" {
		return HiddenNetworkName
	}
	return o.SSID
}

// IsEncrypted reports whether the capability string advertises WPA or WEP.
func (o Observation) IsEncrypted() bool {
	return strings.Contains(o.Capabilities, "WPA") || strings.Contains(o.Capabilities, "WEP")
}

// ResolvedChannel returns the reported channel, deriving it from the
// frequency when the scanner left it empty.
func (o Observation) ResolvedChannel() int {
	if o.Channel != 0 {
		return o.Channel
	}
	return ChannelFromFrequency(o.Frequency)
}

// ChannelFromFrequency maps a center frequency (MHz) to its 802.11 channel.
// Frequencies outside the 2.4 GHz and 5 GHz bands map to 0.
func ChannelFromFrequency(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5
	case freq >= 5170 && freq <= 5825:
		return (freq - 5000) / 5
	default:
		return 0
	}
}
