// Package export renders a chat history as a paginated PDF transcript.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"docchat/internal/models"
)

const (
	title      = "Multi-Doc RAG Chat"
	pageMargin = 40.0
	lineHeight = 14.0
	bodySize   = 11.0
)

// Render produces an A4 PDF of the full history in chronological order:
// title, generation timestamp, then one labeled block per turn with line
// breaks preserved. Failures are fatal to the export only, never to the
// session.
func Render(history []models.Turn) ([]byte, error) {
	return renderAt(history, time.Now())
}

func renderAt(history []models.Turn, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 24, title, "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	dateStr := now.Format("02 January 2006, 3:04 PM")
	pdf.CellFormat(0, lineHeight, "Generated on: "+dateStr, "", 1, "L", false, 0, "")
	pdf.Ln(20)

	for _, turn := range history {
		label := "Question:"
		if turn.Role == models.RoleAssistant {
			label = "Answer:"
		}
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(0, lineHeight, label, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.MultiCell(0, lineHeight, tr(turn.Content), "", "L", false)
		pdf.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render transcript: %w", err)
	}
	return buf.Bytes(), nil
}
