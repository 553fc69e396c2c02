package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 277.0
	pdfRowHeight = 7.0
)

// PDFExporter renders tables into a paginated landscape PDF.
type PDFExporter struct {
	maxRows int
}

// NewPDFExporter constructs a PDF exporter. Tables longer than maxRows are truncated;
// a non-positive maxRows disables the cap.
func NewPDFExporter(maxRows int) *PDFExporter {
	return &PDFExporter{maxRows: maxRows}
}

// MaxRows reports the configured row cap.
func (e *PDFExporter) MaxRows() int {
	return e.maxRows
}

// Render creates a landscape PDF document. The table header is repeated on every page
// and each page carries a "Page x of y" footer.
func (e *PDFExporter) Render(table Table, title string) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	rows := table.Rows
	truncated := false
	if e.maxRows > 0 && len(rows) > e.maxRows {
		rows = rows[:e.maxRows]
		truncated = true
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := columnWidths(table.Columns, pdfPageWidth)
	drawHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], 8, tr(col.Title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			drawHeader()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	drawHeader()

	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(fit(pdf, cell, widths[i]-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if truncated {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Showing first %d of %d records. Use CSV for the full list.", len(rows), len(table.Rows)), "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column, total float64) []float64 {
	sum := 0.0
	weights := make([]float64, len(cols))
	for i, col := range cols {
		weights[i] = col.Weight
		if weights[i] <= 0 {
			weights[i] = 1
		}
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = total * weights[i] / sum
	}
	return weights
}

// fit shortens value with an ellipsis until it fits within width millimetres.
func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
