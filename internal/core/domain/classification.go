package domain

import "fmt"

// AttackType is the verdict class assigned to an access point.
type AttackType uint8

const (
	AttackSafe AttackType = iota
	AttackEvilTwin
	AttackRogueAP
)

// AttackClasses lists the classes scored by the statistical model, in score order.
var AttackClasses = []AttackType{AttackEvilTwin, AttackRogueAP}

var attackNames = map[AttackType]string{
	AttackSafe:     "Safe",
	AttackEvilTwin: "Evil_Twin",
	AttackRogueAP:  "Rogue_AP",
}

func (a AttackType) String() string {
	if name, ok := attackNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AttackType(%d)", uint8(a))
}

// IsAttack reports whether the class describes a malicious access point.
func (a AttackType) IsAttack() bool {
	return a == AttackEvilTwin || a == AttackRogueAP
}

// MarshalText implements encoding.TextMarshaler.
func (a AttackType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AttackType) UnmarshalText(text []byte) error {
	for k, v := range attackNames {
		if v == string(text) {
			*a = k
			return nil
		}
	}
	return &ValidationError{Field: "attack_type", Value: string(text), Err: fmt.Errorf("unknown attack type")}
}

// ThreatLevel is the ordinal severity derived from a verdict.
type ThreatLevel uint8

const (
	ThreatSafe ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

var threatNames = map[ThreatLevel]string{
	ThreatSafe:     "SAFE",
	ThreatLow:      "LOW",
	ThreatMedium:   "MEDIUM",
	ThreatHigh:     "HIGH",
	ThreatCritical: "CRITICAL",
}

func (t ThreatLevel) String() string {
	if name, ok := threatNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ThreatLevel(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ThreatLevel) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ThreatLevel) UnmarshalText(text []byte) error {
	for k, v := range threatNames {
		if v == string(text) {
			*t = k
			return nil
		}
	}
	return &ValidationError{Field: "threat_level", Value: string(text), Err: fmt.Errorf("unknown threat level")}
}

// DeviceCategory classifies the manufacturer behind an address prefix.
type DeviceCategory uint8

const (
	CategoryUnknown DeviceCategory = iota
	CategoryRouter
	CategoryMobilePhone
	CategoryComputer
	CategoryIoTDevice
	CategoryAttackDevice
)

var categoryNames = map[DeviceCategory]string{
	CategoryUnknown:      "unknown",
	CategoryRouter:       "router",
	CategoryMobilePhone:  "mobile_phone",
	CategoryComputer:     "computer",
	CategoryIoTDevice:    "iot_device",
	CategoryAttackDevice: "attack_device",
}

func (c DeviceCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("DeviceCategory(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c DeviceCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DeviceCategory) UnmarshalText(text []byte) error {
	for k, v := range categoryNames {
		if v == string(text) {
			*c = k
			return nil
		}
	}
	return &ValidationError{Field: "category", Value: string(text), Err: fmt.Errorf("unknown device category")}
}

// VendorRecord describes the manufacturer registered for an address prefix.
type VendorRecord struct {
	Vendor   string         `json:"vendor" yaml:"vendor"`
	Category DeviceCategory `json:"category" yaml:"category"`
	Trusted  bool           `json:"trusted" yaml:"trusted"`
}
