package ingest

import (
	"bufio"
	"io"
	"strings"
)

// txtColumns is the fixed column order of the pipe-delimited TXT export:
// date|type|amount|counterparty|document|description|method
// There is no header row and no implicit column inference.
var txtColumns = ColumnMap{
	FieldDate:                 0,
	FieldType:                 1,
	FieldAmount:               2,
	FieldCounterparty:         3,
	FieldCounterpartyDocument: 4,
	FieldDescription:          5,
	FieldMethod:               6,
}

// minTXTFields - lines with fewer pipe-separated fields are skipped with a
// warning (date, type, amount and counterparty are the useful minimum).
const minTXTFields = 4

func (p *Parser) parseTXT(r io.Reader) (*Result, error) {
	result := &Result{}
	scanner := bufio.NewScanner(r)
	// Some exports concatenate long description fields; the default 64KB
	// token limit is not enough for them.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	rowNum := 0
	for scanner.Scan() {
		rowNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result.Stats.TotalRows++

		fields := strings.Split(line, "|")
		if len(fields) < minTXTFields {
			result.Stats.SkippedRows++
			result.Stats.warn("row %d: expected at least %d pipe-separated fields, got %d", rowNum, minTXTFields, len(fields))
			p.log.Warn().Int("row", rowNum).Int("fields", len(fields)).Msg("Skipping malformed TXT line")
			continue
		}

		if tx := p.buildTransaction(txtColumns, fields, rowNum, &result.Stats); tx != nil {
			result.Transactions = append(result.Transactions, *tx)
			result.Stats.ParsedRows++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
