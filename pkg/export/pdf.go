package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders the table as a portrait A4 document: the title centered above
// a bordered grid with a shaded label row. Spanish names and labels carry
// accents, so every string goes through gofpdf's cp1252 translator.
func PDF(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(12, 14, 12)
	doc.AddPage()

	if t.Title != "" {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 9, tr(t.Title), "", 1, "C", false, 0, "")
		doc.Ln(3)
	}

	width := 186.0 / float64(len(t.Columns))
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	for _, label := range t.Columns {
		doc.CellFormat(width, 7, tr(label), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, row := range t.Rows {
		for i := range t.Columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			doc.CellFormat(width, 6, tr(cell), "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
