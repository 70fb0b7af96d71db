package infra

// pdf.go renders the slip printed when a receipt is parked: receipt number,
// client, lines (guarantee lines flagged SGR) and the total. The file is
// written to storagePath/bon_asteptare_{id}.pdf on 74mm thermal-sized paper.

import (
	"fmt"
	"os"
	"path/filepath"

	"sysmanager/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateBonAsteptarePDF writes the slip for a parked receipt and returns
// the path of the generated file.
func GenerateBonAsteptarePDF(b *model.BonAsteptare, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("bon_asteptare_%d.pdf", b.ID))

	// height grows with the number of lines so long receipts are not cut
	height := 70 + float64(len(b.Detalii))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "BON IN ASTEPTARE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Nr. "+b.NrBon, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr(b.DisplayInfo()), "", 1, "C", false, 0, "")
	if b.Observatii != nil && *b.Observatii != "" {
		pdf.CellFormat(contentW, 4, tr(*b.Observatii), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.18
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produs", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Valoare", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, d := range b.Detalii {
		nume := d.DenumireProdus
		if d.EsteGarantie {
			nume = "  (SGR) " + nume
		}
		if len(nume) > 26 {
			nume = nume[:25] + "."
		}
		pdf.CellFormat(col1, 5, tr(nume), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "x"+d.Cantitate.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, d.Valoare.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, b.Total.StringFixed(2)+" LEI", "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Prezentati acest bon la casa", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
