package domain

import (
	"net"
	"strconv"
	"strings"
)

// Address is a value object representing a validated hardware address (BSSID).
type Address struct {
	hw net.HardwareAddr
}

// ParseAddress parses a hardware address string.
// Supports formats: "xx:xx:xx:xx:xx:xx", "xx-xx-xx-xx-xx-xx", "xxxxxxxxxxxx"
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, ErrEmptyAddress
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		parts := make([]string, 0, 6)
		for i := 0; i < len(normalized); i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return Address{}, &ValidationError{Field: "bssid", Value: s, Err: ErrInvalidAddress}
	}
	return Address{hw: hw}, nil
}

// OUI returns the first three octets as "xx:xx:xx".
func (a Address) OUI() string {
	if len(a.hw) < 3 {
		return ""
	}
	return a.String()[:8]
}

// IsLocallyAdministered reports whether bit 1 of the first octet is set
// (randomized, spoofed or manually configured addresses).
func (a Address) IsLocallyAdministered() bool {
	if len(a.hw) == 0 {
		return false
	}
	return a.hw[0]&0x02 != 0
}

// String returns the address in lowercase colon form.
func (a Address) String() string {
	return strings.ToLower(a.hw.String())
}

// IsValid returns true if the address holds six octets.
func (a Address) IsValid() bool {
	return len(a.hw) == 6
}

// NormalizeAddress returns the canonical key for an address: the parsed
// lowercase colon form when it parses, otherwise the trimmed lowercase input.
func NormalizeAddress(s string) string {
	if a, err := ParseAddress(s); err == nil {
		return a.String()
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ":"))
}

// IsLocallyAdministered checks the LAA bit on a possibly malformed address.
// Only the first octet has to be valid hex.
func IsLocallyAdministered(address string) bool {
	first, _, _ := strings.Cut(NormalizeAddress(address), ":")
	b, err := strconv.ParseUint(first, 16, 8)
	if err != nil {
		return false
	}
	return b&0x02 != 0
}
