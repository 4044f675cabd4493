package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"waterlog/internal/models"
)

// ManifestHeader identifies the plant and day printed on the manifest
type ManifestHeader struct {
	PlantName string
	Date      time.Time
	Generated time.Time
}

// BuildDailyManifestPDF renders the day's routes as a printable A4 manifest.
// Returns the document bytes and a suggested filename.
func BuildDailyManifestPDF(h ManifestHeader, routes []models.RouteResponse) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Manifiesto de rutas", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("MANIFIESTO DE RUTAS"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr("Planta : "+h.PlantName))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Fecha  : "+h.Date.Format(models.DateFormat))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Emitido: "+h.Generated.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	widths := []float64{12, 42, 34, 16, 16, 18, 26, 26}
	headers := []string{"#", "Chofer", "Camioneta", "Salida", "Entrada", "Llenos", "Estado", "Deuda"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 236, 245)
	for i, head := range headers {
		pdf.CellFormat(widths[i], 7, head, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var totalBottles int
	var totalDebt float64
	for _, r := range routes {
		cells := []string{
			fmt.Sprintf("%d", r.ID),
			tr(r.DriverName),
			tr(r.TruckName),
			r.CheckoutTime,
			r.CheckinTime,
			fmt.Sprintf("%d", r.InitialFullBottles),
			tr(StatusLabel(r.Status)),
			fmt.Sprintf("$%.2f", r.DebtAmount),
		}
		for i, c := range cells {
			align := "L"
			if i == 0 || i >= 3 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		totalBottles += r.InitialFullBottles
		totalDebt += r.DebtAmount
	}

	if len(routes) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 8, "Sin rutas registradas para esta fecha.")
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Rutas: %d   Garrafones: %d   Deuda total: $%.2f", len(routes), totalBottles, totalDebt))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr("Firma del supervisor: ______________________________"), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("MANIFIESTO_%s.pdf", h.Date.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// StatusLabel is the Spanish label shown for a route status
func StatusLabel(s models.AuditStatus) string {
	switch s {
	case models.StatusCleared:
		return "Limpio"
	case models.StatusDebt, models.StatusLockedDebt:
		return "Con Deuda"
	case models.StatusInProgress:
		return "En Curso"
	default:
		return "Pendiente"
	}
}
