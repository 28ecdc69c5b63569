package rules

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// VendorDirectory is the subset of the vendor directory the rules consult.
type VendorDirectory interface {
	Lookup(address string) domain.VendorRecord
	IsLegitimateRouter(address string) bool
	IsMobileDevice(address string) bool
	IsKnownAttackDevice(address string) bool
	Describe(address string) string
}

// SSIDLookup answers duplicate-name questions about other access points.
type SSIDLookup interface {
	// Peers returns the other addresses broadcasting ssid, in first-seen order.
	Peers(ssid, self string) []string
	// TrustedPeers returns the subset of Peers already learned as baseline.
	TrustedPeers(ssid, self string) []string
}

// Input is the observation being classified, with its normalized address.
type Input struct {
	Observation domain.Observation
	Address     string
}

type evalContext struct {
	in      Input
	ssid    string
	desc    string
	vendor  domain.VendorRecord
	reasons []string
}

func (c *evalContext) verdict(rule string, attack domain.AttackType, conf float64, reasons ...string) domain.RuleVerdict {
	c.reasons = append(c.reasons, reasons...)
	return domain.RuleVerdict{Rule: rule, Attack: attack, Confidence: conf, Reasons: c.reasons}
}

// Rule is one heuristic. Eval reports whether the rule decided the verdict;
// a rule that does not match may still leave informational reasons behind.
type Rule struct {
	Name string
	Eval func(e *Engine, c *evalContext) (domain.RuleVerdict, bool)
}

// Engine evaluates the ordered rule list. The first matching rule wins.
type Engine struct {
	vendors VendorDirectory
	ssids   SSIDLookup
	rules   []Rule
}

// NewEngine creates a rule engine with the default rule order.
func NewEngine(vendors VendorDirectory, ssids SSIDLookup) *Engine {
	return &Engine{vendors: vendors, ssids: ssids, rules: DefaultRules()}
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Apply evaluates the rules against an observation. It is a pure function of
// the observation, the vendor table and the current SSID index.
func (e *Engine) Apply(in Input) domain.RuleVerdict {
	c := &evalContext{
		in:     in,
		ssid:   in.Observation.SSID,
		desc:   e.vendors.Describe(in.Address),
		vendor: e.vendors.Lookup(in.Address),
	}

	for _, r := range e.rules {
		if v, ok := r.Eval(e, c); ok {
			return v
		}
	}
	return domain.RuleVerdict{Attack: domain.AttackSafe, Confidence: 0, Reasons: c.reasons}
}

// DefaultRules returns the built-in heuristics in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "attack_hardware", Eval: attackHardware},
		{Name: "trusted_router", Eval: trustedRouter},
		{Name: "mobile_hotspot", Eval: mobileHotspot},
		{Name: "duplicate_ssid", Eval: duplicateSSID},
		{Name: "hidden_strong_signal", Eval: hiddenStrongSignal},
		{Name: "local_address", Eval: localAddress},
		{Name: "suspicious_name", Eval: suspiciousName},
		{Name: "open_strong_signal", Eval: openStrongSignal},
		{Name: "unknown_strong_signal", Eval: unknownStrongSignal},
	}
}

var attackToolPrefixes = []string{"de:ad:", "be:ef:", "ca:fe:", "ba:be:", "12:34:56:", "aa:bb:cc:"}

// IsAttackToolAddress reports whether the address uses a prefix favored by
// attack tooling for spoofed access points.
func IsAttackToolAddress(address string) bool {
	lower := domain.NormalizeAddress(address)
	for _, p := range attackToolPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func attackHardware(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if !e.vendors.IsKnownAttackDevice(c.in.Address) && !IsAttackToolAddress(c.in.Address) {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("attack_hardware", domain.AttackEvilTwin, 0.95,
		"ATTACK HARDWARE DETECTED: "+c.desc,
		"Known device used for WiFi attacks",
	), true
}

func trustedRouter(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if !e.vendors.IsLegitimateRouter(c.in.Address) {
		return domain.RuleVerdict{}, false
	}
	if c.ssid != "" && len(e.ssids.TrustedPeers(c.ssid, c.in.Address)) > 0 {
		return c.verdict("trusted_router", domain.AttackSafe, 0.30,
			fmt.Sprintf("Duplicate SSID detected: '%s'", c.ssid),
			"Device: "+c.desc,
			"May be legitimate mesh network or range extender",
		), true
	}
	return c.verdict("trusted_router", domain.AttackSafe, 0), true
}

var hotspotPatterns = []string{"iphone", "samsung", "pixel", "oneplus", "'s phone", "'s iphone"}

// IsDefaultHotspotName reports whether a network name looks like a phone's default hotspot name.
func IsDefaultHotspotName(ssid string) bool {
	lower := strings.ToLower(ssid)
	for _, p := range hotspotPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func mobileHotspot(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if !e.vendors.IsMobileDevice(c.in.Address) {
		return domain.RuleVerdict{}, false
	}
	reasons := []string{
		"Mobile Hotspot detected: " + c.desc,
		"Personal hotspots may be legitimate or unauthorized",
	}
	if IsDefaultHotspotName(c.ssid) {
		reasons = append(reasons, "Default hotspot name pattern detected")
	}
	return c.verdict("mobile_hotspot", domain.AttackRogueAP, 0.65, reasons...), true
}

// duplicateSSID leaves informational reasons and falls through when no
// duplicate has been learned yet.
func duplicateSSID(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if c.ssid == "" {
		return domain.RuleVerdict{}, false
	}
	peers := e.ssids.Peers(c.ssid, c.in.Address)
	if len(peers) == 0 {
		return domain.RuleVerdict{}, false
	}

	if trusted := e.ssids.TrustedPeers(c.ssid, c.in.Address); len(trusted) > 0 {
		return c.verdict("duplicate_ssid", domain.AttackEvilTwin, 0.92,
			"EVIL TWIN ATTACK: Duplicate SSID of trusted network",
			"Original network: "+trusted[0],
			"Impersonating device: "+c.desc,
		), true
	}

	c.reasons = append(c.reasons,
		fmt.Sprintf("Multiple access points with same SSID: '%s'", c.ssid),
		"Possible mesh network or evil twin",
	)
	return domain.RuleVerdict{}, false
}

func hiddenStrongSignal(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	rssi := c.in.Observation.Signal
	if (c.ssid != "" && !strings.Contains(c.ssid, "Hidden")) || rssi <= -40 {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("hidden_strong_signal", domain.AttackRogueAP, 0.70,
		fmt.Sprintf("Hidden network with very strong signal (%ddBm)", rssi),
		"Device: "+c.desc,
	), true
}

func localAddress(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if !domain.IsLocallyAdministered(c.in.Address) || e.vendors.IsLegitimateRouter(c.in.Address) {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("local_address", domain.AttackRogueAP, 0.60,
		"Locally administered (spoofed) MAC address",
		"MAC may be manually configured or randomized",
	), true
}

var suspiciousNames = []string{"free", "public", "guest", "open", "wifi", "hotel", "airport"}

// IsSuspiciousName reports whether a network name matches a generic
// honeypot pattern: an exact match, or containment when the name carries no
// '_' or '-' delimiter.
func IsSuspiciousName(ssid string) bool {
	lower := strings.ToLower(ssid)
	if lower == "" {
		return false
	}
	delimited := strings.ContainsAny(lower, "_-")
	for _, p := range suspiciousNames {
		if lower == p || (!delimited && strings.Contains(lower, p)) {
			return true
		}
	}
	return false
}

func suspiciousName(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	if !IsSuspiciousName(c.ssid) {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("suspicious_name", domain.AttackRogueAP, 0.60,
		fmt.Sprintf("Suspicious network name: '%s'", c.ssid),
		"Common honeypot/phishing SSID pattern",
	), true
}

func openStrongSignal(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	rssi := c.in.Observation.Signal
	if c.in.Observation.IsEncrypted() || rssi <= -60 {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("open_strong_signal", domain.AttackRogueAP, 0.55,
		"Unencrypted (open) network",
		fmt.Sprintf("Strong signal: %ddBm", rssi),
		"Potential honeypot or public hotspot",
	), true
}

func unknownStrongSignal(e *Engine, c *evalContext) (domain.RuleVerdict, bool) {
	rssi := c.in.Observation.Signal
	if rssi <= -35 || c.vendor.Category != domain.CategoryUnknown {
		return domain.RuleVerdict{}, false
	}
	return c.verdict("unknown_strong_signal", domain.AttackRogueAP, 0.50,
		fmt.Sprintf("Extremely strong signal from unknown device (%ddBm)", rssi),
		"Device: "+c.desc,
	), true
}
