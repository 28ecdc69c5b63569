package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases
var (
	// ErrEmptyAddress indicates an observation carried no device address
	ErrEmptyAddress = errors.New("empty device address")

	// ErrInvalidAddress indicates the device address could not be parsed
	ErrInvalidAddress = errors.New("invalid device address format")

	// ErrModelNotLoaded indicates detection was requested without valid model parameters
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrDimensionMismatch indicates feature, mean and scale vectors disagree in length
	ErrDimensionMismatch = errors.New("feature dimension mismatch")

	// ErrInvalidState indicates an unknown trust state label
	ErrInvalidState = errors.New("invalid trust state")

	// ErrScanNotFound indicates no stored scan matches the requested id
	ErrScanNotFound = errors.New("scan not found")
)

// ConfigError wraps a model configuration failure with the asset that caused it.
type ConfigError struct {
	Asset string // Asset that failed (e.g., "scaler_params.json")
	Err   error  // Underlying error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("model config %s: %v", e.Asset, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError wraps validation errors with the invalid value
type ValidationError struct {
	Field string // Field that failed validation
	Value string // Invalid value
	Err   error  // Underlying error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
