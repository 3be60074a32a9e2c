package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a spreadsheet export. The first row is
// the header and goes through the same alias-based column resolution as CSV.
// A sheet with fewer than two rows (no data under the header) is rejected.
func (p *Parser) parseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			p.log.Warn().Err(closeErr).Msg("Failed to close spreadsheet")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	// First sheet only; additional sheets in RIF exports hold pivot tables
	// and summaries, never ledger rows
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	cm, err := ResolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, accounting for the header row
		if isEmptyRow(row) {
			continue
		}
		result.Stats.TotalRows++

		if tx := p.buildTransaction(cm, row, rowNum, &result.Stats); tx != nil {
			result.Transactions = append(result.Transactions, *tx)
			result.Stats.ParsedRows++
		}
	}

	return result, nil
}
