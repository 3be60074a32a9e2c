package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RenderCSV exports the normalized transaction table. Amounts keep their
// exact decimal representation; dates use ISO format so spreadsheets import
// them unambiguously.
func RenderCSV(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "data", "tipo", "valor", "contraparte", "documento_contraparte",
		"documento_titular", "descricao", "meio", "banco", "agencia", "conta",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range doc.Transactions {
		record := []string{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Amount.String(),
			tx.Counterparty,
			tx.CounterpartyDocument,
			tx.HolderDocument,
			tx.Description,
			tx.Method,
			tx.Bank,
			tx.Agency,
			tx.Account,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
