// Package report turns materialized dashboard data into exportable
// documents. Exporters are pure transforms over snapshots the caller
// already holds; they never query the store.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mxcollect/cobradash/internal/models"
)

// Exporter renders snapshots into an opaque binary document.
type Exporter interface {
	KPIReport(kpis []models.KPI) ([]byte, error)
	IssueReport(issues []models.Issue) ([]byte, error)
}

// PDFExporter renders A4 portrait PDF reports.
type PDFExporter struct {
	now func() time.Time
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

func (e *PDFExporter) KPIReport(kpis []models.KPI) ([]byte, error) {
	pdf, tr := e.newDoc("Reporte de Indicadores")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(70, 8, tr("Indicador"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, tr("Valor"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, tr("Estado"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 8, tr("Descripción"), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, k := range kpis {
		pdf.CellFormat(70, 7, tr(k.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, tr(k.Value), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, string(k.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, tr(k.Description), "1", 1, "L", false, 0, "")
	}

	return e.output(pdf)
}

func (e *PDFExporter) IssueReport(issues []models.Issue) ([]byte, error) {
	pdf, tr := e.newDoc("Reporte de Incidencias")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(12, 8, "ID", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 8, tr("Título"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(28, 8, tr("Prioridad"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, tr("Estado"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, tr("Asignado a"), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, i := range issues {
		assignee := ""
		if i.AssignedTo != nil {
			assignee = *i.AssignedTo
		}
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, tr(i.Title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, string(i.Priority), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, string(i.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, tr(assignee), "1", 1, "L", false, 0, "")
	}

	return e.output(pdf)
}

// newDoc starts a titled page and returns the cp1252 translator the core
// fonts need for accented text.
func (e *PDFExporter) newDoc(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generado: "+e.now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func (e *PDFExporter) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
