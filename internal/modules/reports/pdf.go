package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF renders the document as a printable PDF, embedding the daily
// activity chart when one can be drawn. Accented text goes through the
// cp1252 translator since the built-in fonts are not Unicode.
func RenderPDF(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Relatório de Análise Financeira"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Relatório de Análise Financeira"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Caso: "+doc.Case.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr("Gerado em: "+doc.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if doc.Narrative != "" {
		sectionTitle(pdf, tr, "Sumário Executivo")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(doc.Narrative), "", "L", false)
		pdf.Ln(4)
	}

	sectionTitle(pdf, tr, "Métricas")
	m := doc.Metrics
	metricRow(pdf, tr, "Transações", fmt.Sprintf("%d", m.Count))
	metricRow(pdf, tr, "Créditos (R$)", m.TotalCredits.StringFixed(2))
	metricRow(pdf, tr, "Débitos (R$)", m.TotalDebits.StringFixed(2))
	metricRow(pdf, tr, "Saldo (R$)", m.Balance.StringFixed(2))
	metricRow(pdf, tr, "Tíquete médio (R$)", m.AverageTicket.StringFixed(2))
	if m.FirstDate != "" {
		metricRow(pdf, tr, "Período", m.FirstDate+" a "+m.LastDate)
	}
	pdf.Ln(4)

	if png, err := RenderDailyChart(doc); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("daily_chart", opts, bytes.NewReader(png))
		pdf.ImageOptions("daily_chart", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	sectionTitle(pdf, tr, fmt.Sprintf("Alertas (%d)", doc.AlertCount()))
	if doc.AlertCount() == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr("Nenhum indicador de alerta identificado nos parâmetros vigentes."), "", "L", false)
	}
	for _, group := range doc.AlertGroups {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Severidade: "+string(group.Severity)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, a := range group.Alerts {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("- [%s] %s: %s (%d transações de evidência)",
				a.Type, a.Title, a.Description, len(a.EvidenceTransactionIDs))), "", "L", false)
		}
		pdf.Ln(2)
	}

	if len(doc.Transactions) > 0 {
		pdf.AddPage()
		sectionTitle(pdf, tr, "Extrato Normalizado")
		pdf.SetFont("Helvetica", "B", 8)
		widths := []float64{22, 14, 28, 70, 28, 28}
		headers := []string{"Data", "Tipo", "Valor (R$)", "Contraparte", "Meio", "Documento"}
		for i, h := range headers {
			pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for _, tx := range doc.Transactions {
			cells := []string{
				tx.Date.Format("02/01/2006"),
				string(tx.Type),
				tx.Amount.StringFixed(2),
				tx.Counterparty,
				tx.Method,
				tx.CounterpartyDocument,
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 5, tr(c), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
}

func metricRow(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(60, 6, tr(label), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, tr(value), "1", 1, "R", false, 0, "")
}
