package domain

import "fmt"

// ScalerParams holds the per-feature standardization parameters.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
	Var   []float64 `json:"var,omitempty"`
}

// ModelPerformance reports the accuracies measured when the model was trained.
type ModelPerformance struct {
	TrainAccuracy float64 `json:"train_accuracy"`
	ValAccuracy   float64 `json:"val_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
}

// DatasetInfo describes the training dataset.
type DatasetInfo struct {
	AttackTypes []string `json:"attack_types"`
	NumFeatures int      `json:"num_features"`
}

// ModelMetadata is informational only; it never affects a verdict.
type ModelMetadata struct {
	ProjectName      string           `json:"project_name"`
	ModelVersion     string           `json:"model_version"`
	Performance      ModelPerformance `json:"performance"`
	DatasetInfo      DatasetInfo      `json:"dataset_info"`
	SelectedFeatures []string         `json:"selected_features"`
}

// ModelParams is the complete configuration consumed by the detection engine.
type ModelParams struct {
	Scaler       ScalerParams
	FeatureNames []string
	Metadata     ModelMetadata
}

// Validate checks that the scaler and feature list agree in length.
func (m ModelParams) Validate() error {
	n := len(m.FeatureNames)
	if n == 0 {
		return &ConfigError{Asset: "feature_names", Err: fmt.Errorf("%w: no features configured", ErrDimensionMismatch)}
	}
	if len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n {
		return &ConfigError{
			Asset: "scaler_params",
			Err: fmt.Errorf("%w: %d features, %d means, %d scales",
				ErrDimensionMismatch, n, len(m.Scaler.Mean), len(m.Scaler.Scale)),
		}
	}
	return nil
}

// TestAccuracyPercent returns the reported test accuracy as a percentage.
func (m ModelParams) TestAccuracyPercent() float64 {
	return m.Metadata.Performance.TestAccuracy * 100
}

// TrackingStats summarizes the engine state for administrative reporting.
type TrackingStats struct {
	Loaded       bool    `json:"loaded"`
	Tracked      int     `json:"tracked_profiles"`
	Baseline     int     `json:"baseline_profiles"`
	Confirmed    int     `json:"confirmed_profiles"`
	Features     int     `json:"features"`
	TestAccuracy float64 `json:"test_accuracy_percent"`
	ModelVersion string  `json:"model_version,omitempty"`
}
