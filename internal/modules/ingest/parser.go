// Package ingest implements the ledger normalizer: it parses raw RIF export
// files (pipe-delimited TXT, CSV, XLSX) into the canonical transaction schema,
// resolving per-format ambiguities (date formats, decimal separators,
// credit/debit markers) in one place.
//
// Error taxonomy: unsupported extension, missing required column and empty
// sheet abort the whole file. Everything that goes wrong on a single row
// (unparseable date, unparseable or zero amount, unrecognized type) drops
// only that row, counts it in ParseStats and logs a warning - row-level
// failures never escalate to file-level aborts.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
)

// ParseStats tracks per-row accounting for one file, including rows that
// were dropped before reaching the ledger. Validation uses the pre-drop
// counts to warn about rows the user will not see in the output.
type ParseStats struct {
	TotalRows      int      `json:"total_rows"`
	ParsedRows     int      `json:"parsed_rows"`
	SkippedRows    int      `json:"skipped_rows"`
	BadDateRows    int      `json:"bad_date_rows"`
	BadAmountRows  int      `json:"bad_amount_rows"`
	BadTypeRows    int      `json:"bad_type_rows"`
	ZeroAmountRows int      `json:"zero_amount_rows"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (s *ParseStats) warn(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Result is the outcome of parsing one file. Transactions carry no IDs yet;
// identity is assigned when the upload service persists them, so parsing the
// same bytes twice yields identical sequences.
type Result struct {
	Transactions []domain.Transaction
	Stats        ParseStats
}

// Parser normalizes raw RIF export files into canonical transactions.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a new parser
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log: log.With().Str("component", "ingest").Logger(),
	}
}

// Parse dispatches on the file extension and normalizes the content.
// Unsupported extensions are rejected before any read.
func (p *Parser) Parse(filename string, r io.Reader) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return p.parseTXT(r)
	case ".csv":
		return p.parseCSV(r)
	case ".xlsx", ".xls":
		return p.parseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// buildTransaction normalizes one resolved row into a Transaction.
// rowNum is 1-based and includes the header, matching what a user sees when
// they open the file. A nil return with a nil error means the row was
// dropped and accounted for in stats.
func (p *Parser) buildTransaction(cm ColumnMap, row []string, rowNum int, stats *ParseStats) *domain.Transaction {
	date, err := parseDate(cm.cell(row, FieldDate))
	if err != nil {
		stats.BadDateRows++
		stats.warn("row %d: %v", rowNum, err)
		p.log.Warn().Int("row", rowNum).Err(err).Msg("Dropping row with unparseable date")
		return nil
	}

	amount, err := parseAmount(cm.cell(row, FieldAmount))
	if err != nil {
		if err == errZeroAmount {
			stats.ZeroAmountRows++
		} else {
			stats.BadAmountRows++
		}
		stats.warn("row %d: %v", rowNum, err)
		p.log.Warn().Int("row", rowNum).Err(err).Msg("Dropping row with invalid amount")
		return nil
	}

	txType, err := parseType(cm.cell(row, FieldType))
	if err != nil {
		stats.BadTypeRows++
		stats.warn("row %d: %v", rowNum, err)
		p.log.Warn().Int("row", rowNum).Err(err).Msg("Dropping row with unresolvable type")
		return nil
	}

	return &domain.Transaction{
		Date:                 date,
		Amount:               amount,
		Type:                 txType,
		Counterparty:         normalizeCounterparty(cm.cell(row, FieldCounterparty)),
		CounterpartyDocument: normalizeDocument(cm.cell(row, FieldCounterpartyDocument)),
		HolderDocument:       normalizeDocument(cm.cell(row, FieldHolderDocument)),
		Description:          cm.cell(row, FieldDescription),
		Method:               cm.cell(row, FieldMethod),
		Bank:                 cm.cell(row, FieldBank),
		Agency:               cm.cell(row, FieldAgency),
		Account:              cm.cell(row, FieldAccount),
		Channel:              cm.cell(row, FieldChannel),
		Country:              cm.cell(row, FieldCountry),
		Currency:             cm.cell(row, FieldCurrency),
	}
}
