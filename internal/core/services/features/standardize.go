package features

import (
	"fmt"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// Standardize applies per-feature z-score normalization.
// A zero scale falls back to centering only.
func Standardize(x, mean, scale []float64) ([]float64, error) {
	if len(x) != len(mean) || len(x) != len(scale) {
		return nil, fmt.Errorf("%w: vector %d, mean %d, scale %d",
			domain.ErrDimensionMismatch, len(x), len(mean), len(scale))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		centered := v - mean[i]
		if scale[i] != 0 {
			out[i] = centered / scale[i]
		} else {
			out[i] = centered
		}
	}
	return out, nil
}

// Scaler binds standardization parameters to a feature extractor.
type Scaler struct {
	mean  []float64
	scale []float64
}

// NewScaler validates the parameters against the expected feature count.
func NewScaler(p domain.ScalerParams, features int) (*Scaler, error) {
	if len(p.Mean) != features || len(p.Scale) != features {
		return nil, &domain.ConfigError{
			Asset: "scaler_params",
			Err:   fmt.Errorf("%w: want %d, got mean %d scale %d", domain.ErrDimensionMismatch, features, len(p.Mean), len(p.Scale)),
		}
	}
	return &Scaler{
		mean:  append([]float64(nil), p.Mean...),
		scale: append([]float64(nil), p.Scale...),
	}, nil
}

// Transform standardizes a vector extracted with the matching feature list.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	return Standardize(x, s.mean, s.scale)
}
