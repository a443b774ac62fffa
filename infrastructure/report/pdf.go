// Package report renders evidence maps as PDF documents.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

const (
	fontFamily  = "Helvetica"
	pageWidth   = 170.0
	lineHeight  = 6.0
	maxCellText = 60
)

// PDFRenderer implements ports.ReportRenderer with fpdf
type PDFRenderer struct {
	title    string
	compress bool
	now      func() time.Time
	logger   *zap.Logger
}

// NewPDFRenderer creates a new PDFRenderer
func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	return &PDFRenderer{
		title:    "Evidence Map Report",
		compress: true,
		now:      time.Now,
		logger:   logger,
	}
}

// Render lays out the claims with their tallies, one section per remaining
// node kind, and the relationships table.
func (r *PDFRenderer) Render(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(r.title, true)
	pdf.SetCreationDate(r.now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, tr(r.title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, lineHeight, tr("Case: "+caseID.String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Generated: "+r.now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("%d elements, %d relationships", len(nodes), len(edges)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeClaims(pdf, tr, services.SummarizeClaims(nodes, edges))
	for _, kind := range valueobjects.AllNodeKinds {
		if kind == valueobjects.KindClaim {
			continue
		}
		writeKindSection(pdf, tr, kind, nodes)
	}
	writeRelationships(pdf, tr, nodes, edges)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("Failed to render report",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to render report").WithCause(err)
	}

	r.logger.Debug("Rendered report",
		zap.String("caseID", caseID.String()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 9, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, titles []string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(226, 232, 240)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 9)
}

func writeClaims(pdf *fpdf.Fpdf, tr func(string) string, claims []services.ClaimSummary) {
	sectionTitle(pdf, "Claims")
	if len(claims) == 0 {
		pdf.SetFont(fontFamily, "I", 10)
		pdf.CellFormat(0, lineHeight, "No claims recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	widths := []float64{90, 26, 27, 27}
	tableHeader(pdf, widths, []string{"Claim", "Proven", "Supports", "Contradicts"})
	for _, c := range claims {
		attrs, _ := c.Claim.Claim()
		proven := "No"
		if attrs.IsProven {
			proven = "Yes"
		}
		pdf.CellFormat(widths[0], 7, tr(truncate(c.Claim.Label())), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, proven, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprint(c.Stats.Supports), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprint(c.Stats.Contradicts), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeKindSection(pdf *fpdf.Fpdf, tr func(string) string, kind valueobjects.NodeKind, nodes []entities.Node) {
	var members []entities.Node
	for _, n := range nodes {
		if n.IsKind(kind) {
			members = append(members, n)
		}
	}
	if len(members) == 0 {
		return
	}

	sectionTitle(pdf, kind.DisplayName())
	for _, n := range members {
		pdf.SetFont(fontFamily, "B", 10)
		pdf.MultiCell(pageWidth, lineHeight, tr(n.Label()), "", "L", false)
		pdf.SetFont(fontFamily, "", 9)
		if ev, ok := n.Evidence(); ok {
			meta := fmt.Sprintf("Exhibit %s | authenticated: %t | %s",
				orDash(ev.ExhibitNumber), ev.IsAuthenticated, ev.Admission)
			pdf.MultiCell(pageWidth, 5, tr(meta), "", "L", false)
		}
		if content := strings.TrimSpace(n.Content()); content != "" {
			pdf.MultiCell(pageWidth, 5, tr(content), "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(2)
}

func writeRelationships(pdf *fpdf.Fpdf, tr func(string) string, nodes []entities.Node, edges []entities.Edge) {
	sectionTitle(pdf, "Relationships")
	if len(edges) == 0 {
		pdf.SetFont(fontFamily, "I", 10)
		pdf.CellFormat(0, lineHeight, "No relationships recorded.", "", 1, "L", false, 0, "")
		return
	}

	labels := make(map[valueobjects.NodeID]string, len(nodes))
	for _, n := range nodes {
		labels[n.ID()] = n.Label()
	}
	endpoint := func(id valueobjects.NodeID) string {
		if label, ok := labels[id]; ok {
			return truncate(label)
		}
		return id.String() + " (missing)"
	}

	widths := []float64{65, 40, 65}
	tableHeader(pdf, widths, []string{"From", "Relation", "To"})
	for _, e := range edges {
		relation := e.Type().String()
		if e.Label() != "" {
			relation = e.Label()
		}
		pdf.CellFormat(widths[0], 7, tr(endpoint(e.Source())), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(truncate(relation)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(endpoint(e.Target())), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellText {
		return s
	}
	return string(r[:maxCellText-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
