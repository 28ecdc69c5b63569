// Package scanfile reads saved scans for one-shot classification.
package scanfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// ReadFile loads observations from a JSON file.
func ReadFile(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan file: %w", err)
	}
	defer f.Close()

	obs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// Read accepts either a scan request object or a bare array of observations.
func Read(r io.Reader) ([]domain.Observation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var req domain.ScanRequest
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &req.Observations)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req.Observations, nil
}
