package scoring

import (
	"math"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

type band struct {
	match func(rssi, freq int) bool
	score float64
}

var evilTwinBands = []band{
	{func(r, f int) bool { return f < 3000 && r > -40 }, 0.55},
	{func(r, f int) bool { return f < 3000 && r > -50 }, 0.45},
	{func(r, f int) bool { return f < 3000 && r > -60 }, 0.35},
	{func(r, f int) bool { return r > -40 }, 0.45},
}

var rogueAPBands = []band{
	{func(r, f int) bool { return r > -45 }, 0.50},
	{func(r, f int) bool { return r > -60 }, 0.40},
	{func(r, f int) bool { return f >= 5000 && r > -55 }, 0.45},
}

const fallbackScore = 0.25

func pick(bands []band, rssi, freq int) float64 {
	for _, b := range bands {
		if b.match(rssi, freq) {
			return b.score
		}
	}
	return fallbackScore
}

// Scorer produces a probability distribution over the attack classes.
// The standardized vector is accepted for interface stability; the current
// scores depend only on raw signal strength and frequency.
type Scorer struct{}

// NewScorer returns the banded heuristic scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// RawScores returns the banded score of each attack class.
func (s *Scorer) RawScores(rssi, freq int) domain.Distribution {
	return domain.Distribution{
		domain.AttackEvilTwin: pick(evilTwinBands, rssi, freq),
		domain.AttackRogueAP:  pick(rogueAPBands, rssi, freq),
	}
}

// Score returns the softmax of the raw class scores.
func (s *Scorer) Score(standardized []float64, rssi, freq int) domain.Distribution {
	return Softmax(s.RawScores(rssi, freq))
}

// Softmax normalizes scores into a distribution summing to 1.
func Softmax(scores domain.Distribution) domain.Distribution {
	if len(scores) == 0 {
		return domain.Distribution{}
	}

	// Shift by the maximum for numerical stability.
	maxScore := math.Inf(-1)
	for _, v := range scores {
		maxScore = math.Max(maxScore, v)
	}

	sum := 0.0
	out := make(domain.Distribution, len(scores))
	for k, v := range scores {
		e := math.Exp(v - maxScore)
		out[k] = e
		sum += e
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}
