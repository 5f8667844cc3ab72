package reporting

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// Ensure interface compliance
var _ ports.AttackReporter = (*PDFExporter)(nil)

// PDFExporter renders finished attacks as PDF reports
type PDFExporter struct {
	// RevealCredential prints the recovered passphrase instead of a masked form.
	RevealCredential bool
	// GeneratedBy is printed in the footer.
	GeneratedBy string
	recommender ports.Recommender
	now         func() time.Time
}

// NewPDFExporter creates a new PDF exporter instance. A nil recommender
// leaves the recommendations section out.
func NewPDFExporter(recommender ports.Recommender) *PDFExporter {
	return &PDFExporter{GeneratedBy: "wbrute", recommender: recommender, now: time.Now}
}

// ExportAttack generates the report of one attack
func (e *PDFExporter) ExportAttack(record domain.AttackRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, tr, record)
	e.addOutcome(pdf, record)
	e.addDetails(pdf, tr, record)
	e.addRecommendations(pdf, tr, record)
	e.addFooter(pdf, record)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, tr func(string) string, record domain.AttackRecord) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Wi-Fi Credential Audit", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, tr("Target: "+record.Target), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Generated: "+e.now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

// addOutcome draws the colored outcome banner
func (e *PDFExporter) addOutcome(pdf *gofpdf.Fpdf, record domain.AttackRecord) {
	r, g, b := outcomeColor(record.Outcome)
	y := pdf.GetY()
	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, y, 170, 24, "F")

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(90, 14, outcomeTitle(record.Outcome), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetXY(115, y+5)
	pdf.CellFormat(70, 14, fmt.Sprintf("%d / %d attempts", record.Completed, record.TotalAttempts), "", 0, "R", false, 0, "")

	pdf.SetY(y + 30)
}

func (e *PDFExporter) addDetails(pdf *gofpdf.Fpdf, tr func(string) string, record domain.AttackRecord) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Attack Details", "", 1, "L", false, 0, "")

	hidden := "no"
	if record.Hidden {
		hidden = "yes"
	}
	rows := [][2]string{
		{"Attack ID", record.ID},
		{"Target SSID", record.Target},
		{"Hidden network", hidden},
		{"Adapter mode", string(record.Mode)},
		{"Adapters", strings.Join(record.Adapters, ", ")},
		{"Candidate list", record.CandidateSource},
		{"Started by", record.StartedBy},
		{"Started", record.StartTime.Format(time.RFC3339)},
		{"Finished", record.EndTime.Format(time.RFC3339)},
		{"Duration", record.Duration().Round(time.Second).String()},
	}
	if record.Outcome == domain.OutcomeSuccess {
		rows = append(rows,
			[2]string{"Winning adapter", record.WinningAdapter},
			[2]string{"Passphrase", e.credential(record.Credential)},
		)
	}

	pdf.SetFillColor(240, 240, 240)
	for i, row := range rows {
		fill := i%2 == 0
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(50, 7, row[0], "", 0, "L", fill, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(120, 7, tr(row[1]), "", 1, "L", fill, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addRecommendations(pdf *gofpdf.Fpdf, tr func(string) string, record domain.AttackRecord) {
	if e.recommender == nil {
		return
	}
	recs := e.recommender.ForAttack(record)
	if len(recs) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Recommendations", "", 1, "L", false, 0, "")

	for i, rec := range recs {
		r, g, b := priorityColor(rec.Priority)
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(rec.Priority), rec.Title)), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, tr(rec.Description), "", "L", false)
		for _, action := range rec.Actions {
			pdf.SetX(25)
			pdf.MultiCell(0, 5, tr("- "+action), "", "L", false)
		}
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr("Effort: "+rec.EstimatedEffort), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, record domain.AttackRecord) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := record.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s | Attack ID: %s", e.GeneratedBy, id), "", 1, "C", false, 0, "")
}

// credential masks all but the first and last characters unless reveal is enabled
func (e *PDFExporter) credential(c string) string {
	if e.RevealCredential || c == "" {
		return c
	}
	r := []rune(c)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

func outcomeTitle(kind domain.OutcomeKind) string {
	switch kind {
	case domain.OutcomeSuccess:
		return "CREDENTIAL FOUND"
	case domain.OutcomeExhausted:
		return "LIST EXHAUSTED"
	case domain.OutcomeCancelled:
		return "CANCELLED"
	}
	return strings.ToUpper(string(kind))
}

func outcomeColor(kind domain.OutcomeKind) (r, g, b int) {
	switch kind {
	case domain.OutcomeSuccess:
		return 220, 53, 69 // Red: the network is weak
	case domain.OutcomeExhausted:
		return 52, 199, 89 // Green
	default:
		return 150, 150, 150 // Gray
	}
}

func priorityColor(priority string) (r, g, b int) {
	switch priority {
	case domain.PriorityCritical:
		return 220, 53, 69
	case domain.PriorityHigh:
		return 255, 140, 0
	case domain.PriorityMedium:
		return 0, 102, 204
	default:
		return 90, 90, 90
	}
}
