package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// ExportJSON writes results as a JSON array
func ExportJSON(w io.Writer, results []domain.DetectionResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

// ExportCSV writes results as CSV with headers. Reasons are joined with " | ".
func ExportCSV(w io.Writer, results []domain.DetectionResult) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{
		"NetworkName", "BSSID", "AttackType", "Confidence", "ThreatLevel",
		"IsThreat", "IsBaseline", "DetectionCount",
		"Signal", "Frequency", "Channel",
		"Timestamp", "RecommendedAction", "Reasons",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.NetworkName,
			r.BSSID,
			r.AttackType.String(),
			fmt.Sprintf("%.4f", r.Confidence),
			r.ThreatLevel.String(),
			fmt.Sprintf("%t", r.IsThreat),
			fmt.Sprintf("%t", r.IsBaseline),
			fmt.Sprintf("%d", r.DetectionCount),
			fmt.Sprintf("%d", r.SignalStrength),
			fmt.Sprintf("%d", r.Frequency),
			fmt.Sprintf("%d", r.Channel),
			r.Timestamp.Format(time.RFC3339),
			r.RecommendedAction,
			strings.Join(r.Reasons, " | "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// ExportLearnedCSV writes the baseline networks as CSV
func ExportLearnedCSV(w io.Writer, learned []domain.LearnedNetwork) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"SSID", "BSSID"}); err != nil {
		return err
	}
	for _, n := range learned {
		if err := writer.Write([]string{n.SSID, n.Address}); err != nil {
			return err
		}
	}
	return writer.Error()
}
