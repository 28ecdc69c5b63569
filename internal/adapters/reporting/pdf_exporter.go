package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// ReportMeta describes the context a scan report was produced in.
type ReportMeta struct {
	Title        string
	GeneratedAt  time.Time
	GeneratedBy  string
	ModelVersion string
}

// PDFExporter exports scan reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportScan renders one scan, most severe networks first, followed by the
// detection reasons of every threat and the learned baseline networks.
func (e *PDFExporter) ExportScan(scan domain.Scan, learned []domain.LearnedNetwork, meta ReportMeta) ([]byte, error) {
	if meta.Title == "" {
		meta.Title = "Wireless Trust Report"
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, scan, meta)
	e.addVerdict(pdf, scan.Summary)
	e.addStatistics(pdf, scan)
	results := domain.SortByThreat(scan.Results)
	e.addNetworks(pdf, tr, results)
	e.addFindings(pdf, tr, results)
	e.addLearned(pdf, tr, learned)
	e.addFooter(pdf, scan, meta)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, scan domain.Scan, meta ReportMeta) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, meta.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", meta.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	if !scan.StartedAt.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Scan started: %s (%s)",
			scan.StartedAt.Format("2006-01-02 15:04:05"), scan.Duration.Round(time.Microsecond)), "", 1, "L", false, 0, "")
	}
	if meta.ModelVersion != "" {
		pdf.CellFormat(0, 6, "Detection model: "+meta.ModelVersion, "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
}

// addVerdict draws the overall verdict box.
func (e *PDFExporter) addVerdict(pdf *gofpdf.Fpdf, s domain.ScanSummary) {
	level, text := domain.ThreatSafe, "No threats detected"
	switch {
	case s.Critical > 0:
		level, text = domain.ThreatCritical, fmt.Sprintf("%d critical threat(s). Do not connect.", s.Critical)
	case s.Threats > 0:
		level, text = domain.ThreatHigh, fmt.Sprintf("%d suspicious network(s)", s.Threats)
	}

	r, g, b := threatColor(level)
	pdf.SetFillColor(r, g, b)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 24, "F")

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(160, 14, text, "", 0, "L", false, 0, "")

	pdf.SetY(y + 29)
	pdf.Ln(3)
}

// threatColor returns RGB color based on threat level
func threatColor(level domain.ThreatLevel) (r, g, b int) {
	switch level {
	case domain.ThreatCritical:
		return 220, 53, 69 // Red
	case domain.ThreatHigh:
		return 255, 149, 0 // Orange
	case domain.ThreatMedium:
		return 255, 204, 0 // Yellow
	case domain.ThreatLow:
		return 0, 102, 204 // Blue
	default:
		return 52, 199, 89 // Green
	}
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, scan domain.Scan) {
	sectionTitle(pdf, "Scan Overview")

	baseline := 0
	for _, r := range scan.Results {
		if r.IsBaseline {
			baseline++
		}
	}

	stats := []struct {
		label string
		value int
		level domain.ThreatLevel
	}{
		{"Networks", scan.Summary.Total, domain.ThreatLow},
		{"Threats", scan.Summary.Threats, domain.ThreatHigh},
		{"Rogue / Evil Twin", scan.Summary.RogueAPs, domain.ThreatHigh},
		{"Critical", scan.Summary.Critical, domain.ThreatCritical},
		{"Trusted (baseline)", baseline, domain.ThreatSafe},
	}

	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		r, g, b := threatColor(stat.level)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(colWidth-50, 7, fmt.Sprintf("%d", stat.value), "", 0, "R", false, 0, "")

		if i%2 == 1 || i == len(stats)-1 {
			pdf.Ln(7)
		}
	}

	pdf.Ln(8)
}

func (e *PDFExporter) addNetworks(pdf *gofpdf.Fpdf, tr func(string) string, results []domain.DetectionResult) {
	sectionTitle(pdf, "Networks")

	if len(results) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No networks in this scan", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	header := func() {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 8, "Network", "1", 0, "L", true, 0, "")
		pdf.CellFormat(35, 8, "BSSID", "1", 0, "L", true, 0, "")
		pdf.CellFormat(15, 8, "Signal", "1", 0, "C", true, 0, "")
		pdf.CellFormat(10, 8, "Ch", "1", 0, "C", true, 0, "")
		pdf.CellFormat(22, 8, "Verdict", "1", 0, "C", true, 0, "")
		pdf.CellFormat(18, 8, "Conf.", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 8, "Threat", "1", 1, "C", true, 0, "")
	}
	header()

	pdf.SetFont("Arial", "", 8)
	for _, r := range results {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 8)
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 7, truncate(tr(r.NetworkName), 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, r.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", r.SignalStrength), "1", 0, "C", false, 0, "")
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", r.Channel), "1", 0, "C", false, 0, "")

		cr, cg, cb := threatColor(r.ThreatLevel)
		pdf.SetTextColor(cr, cg, cb)
		pdf.CellFormat(22, 7, r.AttackType.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%.0f%%", r.Confidence*100), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, r.ThreatLevel.String(), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(8)
}

// addFindings lists the reasons and advice for every threat.
func (e *PDFExporter) addFindings(pdf *gofpdf.Fpdf, tr func(string) string, results []domain.DetectionResult) {
	var threats []domain.DetectionResult
	for _, r := range results {
		if r.IsThreat {
			threats = append(threats, r)
		}
	}
	if len(threats) == 0 {
		return
	}

	sectionTitle(pdf, "Findings")
	for _, r := range threats {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		cr, cg, cb := threatColor(r.ThreatLevel)
		pdf.SetFillColor(cr, cg, cb)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, r.ThreatLevel.String(), "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 6, fmt.Sprintf("  %s (%s)", tr(r.NetworkName), r.BSSID), "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		for _, reason := range r.Reasons {
			pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 5, "- "+tr(reason), "", "L", false)
		}
		if r.DetectionCount > 1 {
			pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, fmt.Sprintf("Seen as %s in %d scans", r.AttackType, r.DetectionCount), "", 1, "L", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(cr, cg, cb)
		pdf.CellFormat(0, 6, r.RecommendedAction, "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}
}

func (e *PDFExporter) addLearned(pdf *gofpdf.Fpdf, tr func(string) string, learned []domain.LearnedNetwork) {
	if len(learned) == 0 {
		return
	}
	if pdf.GetY() > 240 {
		pdf.AddPage()
	}

	sectionTitle(pdf, "Trusted Networks")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	for _, n := range learned {
		name := n.SSID
		if name == "" {
			name = domain.HiddenNetworkName
		}
		pdf.CellFormat(80, 6, truncate(tr(name), 45), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, n.Address, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, scan domain.Scan, meta ReportMeta) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := scan.ID
	if len(id) > 8 {
		id = id[:8]
	}
	generatedBy := meta.GeneratedBy
	if generatedBy == "" {
		generatedBy = "nettrust"
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s | Scan ID: %s", generatedBy, id), "", 1, "C", false, 0, "")
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
