package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// parseCSV reads a header-driven CSV export. The delimiter is sniffed from
// the header line (Brazilian exports routinely use semicolons), then columns
// are resolved once via the alias table. A missing required column rejects
// the whole file; malformed data rows are dropped individually.
func (p *Parser) parseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-row
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &MissingColumnError{Field: string(FieldDate)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Semicolon-delimited export: the whole header landed in one field
	if len(header) == 1 && strings.Contains(header[0], ";") {
		reader.Comma = ';'
		header = strings.Split(header[0], ";")
	}

	// Strip a UTF-8 BOM left behind by Excel
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	cm, err := ResolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	rowNum := 1 // header was row 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			// csv.Reader returns per-record errors for quoting problems;
			// treat them as skipped rows, not file failures
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Stats.TotalRows++
				result.Stats.SkippedRows++
				result.Stats.warn("row %d: %v", rowNum, err)
				p.log.Warn().Int("row", rowNum).Err(err).Msg("Skipping malformed CSV row")
				continue
			}
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum, err)
		}

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

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
