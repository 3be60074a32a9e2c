package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// RenderXLSX exports the document as a workbook: one summary sheet, one
// alert sheet and the full normalized transaction sheet. Amounts are written
// as exact decimal strings, never floats.
func RenderXLSX(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Resumo"
	// the default sheet becomes the summary
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	m := doc.Metrics
	summaryRows := [][]interface{}{
		{"Caso", doc.Case.Title},
		{"Gerado em", doc.GeneratedAt.Format("02/01/2006 15:04")},
		{"Transações", m.Count},
		{"Créditos (R$)", m.TotalCredits.StringFixed(2)},
		{"Débitos (R$)", m.TotalDebits.StringFixed(2)},
		{"Saldo (R$)", m.Balance.StringFixed(2)},
		{"Tíquete médio (R$)", m.AverageTicket.StringFixed(2)},
		{"Alertas", doc.AlertCount()},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := writeAlertSheet(f, doc); err != nil {
		return nil, err
	}
	if err := writeTransactionSheet(f, doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAlertSheet(f *excelize.File, doc *Document) error {
	const sheet = "Alertas"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create alert sheet: %w", err)
	}

	header := []interface{}{"Severidade", "Tipo", "Título", "Sujeito", "Evidências", "Descrição"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rowNum := 2
	for _, group := range doc.AlertGroups {
		for _, a := range group.Alerts {
			row := []interface{}{
				string(a.Severity), string(a.Type), a.Title, a.Subject,
				len(a.EvidenceTransactionIDs), a.Description,
			}
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write alert row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}

func writeTransactionSheet(f *excelize.File, doc *Document) error {
	const sheet = "Transações"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create transaction sheet: %w", err)
	}

	header := []interface{}{
		"Data", "Tipo", "Valor (R$)", "Contraparte", "Documento",
		"Descrição", "Meio", "Banco", "Agência", "Conta",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, tx := range doc.Transactions {
		row := []interface{}{
			tx.Date.Format("02/01/2006"),
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.Counterparty,
			tx.CounterpartyDocument,
			tx.Description,
			tx.Method,
			tx.Bank,
			tx.Agency,
			tx.Account,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write transaction row: %w", err)
		}
	}
	return nil
}
