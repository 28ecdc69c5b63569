package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lcalzada-xor/nettrust/internal/adapters/reporting"
	"github.com/lcalzada-xor/nettrust/internal/adapters/scanfile"
	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/services/scan"
)

// RunOnce classifies the configured scan file, prints the results to w and
// optionally writes a PDF report.
func (app *Application) RunOnce(ctx context.Context, w io.Writer) (domain.Scan, error) {
	if !app.Engine.IsLoaded() {
		return domain.Scan{}, fmt.Errorf("%w: %v", domain.ErrModelNotLoaded, app.Engine.LoadError())
	}

	obs, err := scanfile.ReadFile(app.Config.ScanFile)
	if err != nil {
		return domain.Scan{}, err
	}

	result, err := app.Scans.Process(scan.WithSource(ctx, "file"), obs)
	if err != nil {
		return domain.Scan{}, err
	}

	if err := PrintResults(w, result); err != nil {
		return result, err
	}

	if app.Config.PDFPath != "" {
		if err := app.writePDF(result); err != nil {
			return result, err
		}
		fmt.Fprintf(w, "\nPDF report written to %s\n", app.Config.PDFPath)
	}
	return result, nil
}

func (app *Application) writePDF(sc domain.Scan) error {
	data, err := app.PDF.ExportScan(sc, app.Engine.LearnedNetworks(), reporting.ReportMeta{
		Title:        "Wireless Trust Report",
		GeneratedAt:  time.Now(),
		GeneratedBy:  "nettrust cli",
		ModelVersion: app.Engine.Params().Metadata.ModelVersion,
	})
	if err != nil {
		return fmt.Errorf("generate PDF: %w", err)
	}
	if err := os.WriteFile(app.Config.PDFPath, data, 0o644); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	return nil
}

// PrintResults writes a table of results, most severe first, and the scan summary.
func PrintResults(w io.Writer, sc domain.Scan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tNETWORK\tBSSID\tVERDICT\tCONF\tSIGNAL\tCH\tACTION")
	for _, r := range domain.SortByThreat(sc.Results) {
		name := r.NetworkName
		if r.IsBaseline {
			name += " (trusted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%d dBm\t%d\t%s\n",
			r.ThreatLevel, name, r.BSSID, r.AttackType, r.Confidence*100,
			r.SignalStrength, r.Channel, r.RecommendedAction)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := sc.Summary
	_, err := fmt.Fprintf(w, "\n%d networks, %d threats (%d rogue, %d critical)\n", s.Total, s.Threats, s.RogueAPs, s.Critical)
	return err
}
