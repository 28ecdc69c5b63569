package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

var results = []domain.DetectionResult{
	{
		NetworkName:       "Free, \"Airport\" WiFi",
		BSSID:             "02:00:00:00:00:01",
		AttackType:        domain.AttackRogueAP,
		Confidence:        0.6,
		ThreatLevel:       domain.ThreatHigh,
		IsThreat:          true,
		DetectionCount:    1,
		SignalStrength:    -55,
		Frequency:         2437,
		Channel:           6,
		Timestamp:         time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC),
		RecommendedAction: "UNAUTHORIZED ACCESS POINT! Do not connect.",
		Reasons:           []string{"Locally administered (spoofed) MAC address", "MAC may be manually configured or randomized"},
	},
	{NetworkName: "Home", BSSID: "f4:ec:38:00:00:01", IsBaseline: true, Reasons: []string{}},
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "NetworkName", rows[0][0])
	assert.Len(t, rows[1], len(rows[0]))

	assert.Equal(t, "Free, \"Airport\" WiFi", rows[1][0], "quoting survives a round trip")
	assert.Equal(t, "Rogue_AP", rows[1][2])
	assert.Equal(t, "0.6000", rows[1][3])
	assert.Equal(t, "HIGH", rows[1][4])
	assert.Equal(t, "2025-12-01T12:00:00Z", rows[1][11])
	assert.Equal(t, "Locally administered (spoofed) MAC address | MAC may be manually configured or randomized", rows[1][13])

	assert.Equal(t, "Safe", rows[2][2])
	assert.Equal(t, "true", rows[2][6])
	assert.Equal(t, "", rows[2][13])
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, results))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Rogue_AP", decoded[0]["attack_type"])
	assert.Equal(t, "HIGH", decoded[0]["threat_level"])
}

func TestExportLearnedCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportLearnedCSV(&buf, []domain.LearnedNetwork{{SSID: "Home", Address: "f4:ec:38:00:00:01"}}))
	assert.Equal(t, "SSID,BSSID\nHome,f4:ec:38:00:00:01\n", buf.String())
}
