// Package model loads detection model assets from disk.
package model

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
)

// Asset file names. Each is also accepted with the legacy "android_" prefix.
const (
	ScalerAsset   = "scaler_params.json"
	FeatureAsset  = "feature_names.json"
	MetadataAsset = "model_metadata.json"

	legacyPrefix = "android_"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// AssetLoader reads and validates the three model assets from a filesystem.
type AssetLoader struct {
	fsys    fs.FS
	schemas map[string]*gojsonschema.Schema
}

var _ ports.ModelLoader = (*AssetLoader)(nil)

// NewDirLoader loads assets from a directory.
func NewDirLoader(dir string) (*AssetLoader, error) {
	return NewAssetLoader(os.DirFS(dir))
}

// NewAssetLoader loads assets from fsys.
func NewAssetLoader(fsys fs.FS) (*AssetLoader, error) {
	schemas := make(map[string]*gojsonschema.Schema, 3)
	for _, name := range []string{ScalerAsset, FeatureAsset, MetadataAsset} {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}
	return &AssetLoader{fsys: fsys, schemas: schemas}, nil
}

// Load reads, validates and decodes every asset. The first failing asset is
// reported as a *domain.ConfigError.
func (l *AssetLoader) Load() (domain.ModelParams, error) {
	var params domain.ModelParams

	if err := l.decode(ScalerAsset, &params.Scaler); err != nil {
		return domain.ModelParams{}, err
	}
	if err := l.decode(FeatureAsset, &params.FeatureNames); err != nil {
		return domain.ModelParams{}, err
	}
	if err := l.decode(MetadataAsset, &params.Metadata); err != nil {
		return domain.ModelParams{}, err
	}

	if err := params.Validate(); err != nil {
		return domain.ModelParams{}, err
	}
	return params, nil
}

func (l *AssetLoader) decode(name string, v any) error {
	data, err := l.read(name)
	if err != nil {
		return &domain.ConfigError{Asset: name, Err: err}
	}

	result, err := l.schemas[name].Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &domain.ConfigError{Asset: name, Err: fmt.Errorf("malformed JSON: %w", err)}
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &domain.ConfigError{Asset: name, Err: fmt.Errorf("schema validation failed: %s", strings.Join(problems, "; "))}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ConfigError{Asset: name, Err: err}
	}
	return nil
}

func (l *AssetLoader) read(name string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return fs.ReadFile(l.fsys, legacyPrefix+name)
	}
	return data, err
}
