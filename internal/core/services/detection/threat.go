package detection

import (
	"fmt"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// baselineFloor is the confidence a baseline profile needs before it is reported as a threat.
const baselineFloor = 0.70

// ClassifyThreat derives the ordinal threat level from a final verdict.
func ClassifyThreat(conf float64, attack domain.AttackType, baseline bool) domain.ThreatLevel {
	if baseline && conf < baselineFloor {
		return domain.ThreatSafe
	}

	switch {
	case conf < 0.40:
		return domain.ThreatSafe
	case conf < 0.60:
		return domain.ThreatLow
	case conf < 0.75:
		if attack.IsAttack() {
			return domain.ThreatHigh
		}
		return domain.ThreatMedium
	case conf < 0.85:
		if attack.IsAttack() {
			return domain.ThreatCritical
		}
		return domain.ThreatHigh
	default:
		return domain.ThreatCritical
	}
}

// Advisory returns the recommended action for a verdict.
func Advisory(attack domain.AttackType, level domain.ThreatLevel, baseline bool) string {
	if baseline {
		return fmt.Sprintf("Trusted network (learned from %d+ scans)", domain.BaselineScanThreshold)
	}
	if level == domain.ThreatSafe {
		return "Network appears safe. Monitoring..."
	}

	switch attack {
	case domain.AttackEvilTwin:
		switch level {
		case domain.ThreatCritical:
			return "CRITICAL: Evil Twin Attack! DO NOT CONNECT!"
		case domain.ThreatHigh:
			return "HIGH RISK: Suspected Evil Twin."
		default:
			return "Possible Evil Twin. Verify network."
		}
	case domain.AttackRogueAP:
		return "UNAUTHORIZED ACCESS POINT! Do not connect."
	default:
		return "Potential threat."
	}
}
