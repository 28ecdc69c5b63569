package model

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

func TestDirLoader_Valid(t *testing.T) {
	loader, err := NewDirLoader("testdata/valid")
	require.NoError(t, err)

	params, err := loader.Load()
	require.NoError(t, err)
	assert.Len(t, params.FeatureNames, 6)
	assert.Len(t, params.Scaler.Mean, 6)
	assert.Len(t, params.Scaler.Scale, 6)
	assert.Equal(t, "5.0-two-class", params.Metadata.ModelVersion)
	assert.InDelta(t, 94.87, params.TestAccuracyPercent(), 1e-9)
	assert.Equal(t, []string{"Evil_Twin", "Rogue_AP"}, params.Metadata.DatasetInfo.AttackTypes)
}

func TestDirLoader_LegacyNames(t *testing.T) {
	loader, err := NewDirLoader("testdata/legacy")
	require.NoError(t, err)

	params, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"frame.len", "radiotap.dbm_antsignal"}, params.FeatureNames)
	assert.Equal(t, "4.2", params.Metadata.ModelVersion)
}

func TestAssetLoader_Errors(t *testing.T) {
	valid := fstest.MapFS{
		ScalerAsset:   {Data: []byte(`{"mean":[0,0],"scale":[1,1]}`)},
		FeatureAsset:  {Data: []byte(`["a","b"]`)},
		MetadataAsset: {Data: []byte(`{"model_version":"x"}`)},
	}

	tests := []struct {
		name     string
		replace  string
		data     string
		asset    string
		sentinel error
	}{
		{"missing scaler", ScalerAsset, "", ScalerAsset, nil},
		{"malformed json", FeatureAsset, `["a",`, FeatureAsset, nil},
		{"wrong shape", ScalerAsset, `{"mean":"zero","scale":[1,1]}`, ScalerAsset, nil},
		{"negative scale", ScalerAsset, `{"mean":[0,0],"scale":[-1,1]}`, ScalerAsset, nil},
		{"empty feature list", FeatureAsset, `[]`, FeatureAsset, nil},
		{"accuracy out of range", MetadataAsset, `{"performance":{"test_accuracy":94}}`, MetadataAsset, nil},
		{"length mismatch", ScalerAsset, `{"mean":[0],"scale":[1]}`, "scaler_params", domain.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for k, v := range valid {
				fsys[k] = v
			}
			if tt.data == "" {
				delete(fsys, tt.replace)
			} else {
				fsys[tt.replace] = &fstest.MapFile{Data: []byte(tt.data)}
			}

			loader, err := NewAssetLoader(fsys)
			require.NoError(t, err)

			_, err = loader.Load()
			require.Error(t, err)

			var cfgErr *domain.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.asset, cfgErr.Asset)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}
