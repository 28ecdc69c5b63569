package detection

import (
	"fmt"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

const (
	evilTwinThreshold = 0.65
	rogueAPThreshold  = 0.60
	defaultThreshold  = 0.50

	// modelReasonFloor is the confidence above which a model-driven verdict is explained.
	modelReasonFloor = 0.50
)

// Threshold returns the acceptance threshold for a class.
func Threshold(attack domain.AttackType) float64 {
	switch attack {
	case domain.AttackEvilTwin:
		return evilTwinThreshold
	case domain.AttackRogueAP:
		return rogueAPThreshold
	default:
		return defaultThreshold
	}
}

// Decision is the fused verdict for one scan, before evidence tracking.
type Decision struct {
	Attack     domain.AttackType
	Confidence float64
	Reasons    []string
	// Accepted is set when an attack verdict met its class threshold.
	Accepted bool
}

// Fuse merges the rule verdict with the model distribution and applies the
// acceptance threshold. Baseline profiles are never downgraded here; the
// baseline dampening applied after evidence tracking handles them.
func Fuse(v domain.RuleVerdict, probs domain.Distribution, baseline bool) Decision {
	attack := probs.Argmax()
	if v.Confidence > probs.Max() {
		attack = v.Attack
	}
	modelConf := probs[attack]
	conf := v.Confidence
	if modelConf > conf {
		conf = modelConf
	}

	reasons := append([]string(nil), v.Reasons...)
	if modelConf > v.Confidence && conf > modelReasonFloor {
		reasons = append(reasons, fmt.Sprintf("ML Model detected with %.0f%% confidence", modelConf*100))
	}

	threshold := Threshold(attack)
	if conf < threshold && !baseline {
		return Decision{Attack: domain.AttackSafe, Confidence: 0}
	}

	return Decision{
		Attack:     attack,
		Confidence: conf,
		Reasons:    reasons,
		Accepted:   attack.IsAttack() && conf >= threshold,
	}
}
