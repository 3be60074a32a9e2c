package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// dateLayouts are tried in order. Brazilian day-first layouts come before
// ISO; the trailing entries are the generic fallback for exports that went
// through Excel or some intermediate tool.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	// generic fallbacks
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"02.01.2006",
	"2006/01/02",
}

// parseDate resolves a raw date cell to a concrete UTC timestamp.
// Unparseable dates are a row-level error; the caller drops the row and
// keeps going (never defaulted to "now").
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// amountCleaner strips anything that is neither a digit, a sign nor a
// decimal point after separator normalization.
var amountCleaner = regexp.MustCompile(`[^0-9.\-]`)

// parseAmount converts a raw amount cell into an exact non-negative decimal.
//
// Cleanup order: currency symbols and whitespace go first, then separators
// are disambiguated. A comma anywhere means Brazilian notation (dots are
// thousands separators, comma is the decimal mark); without a comma a single
// dot followed by at most two digits is a decimal point and any other dots
// are thousands separators. The magnitude is always kept absolute - the sign
// belongs to the type column, never to the amount.
//
// A zero or unparseable result is a row-level error (row dropped).
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	// Currency symbols and whitespace (including NBSP from spreadsheet exports)
	s = strings.NewReplacer("R$", "", "US$", "", "$", "", "€", "", " ", "", " ", "").Replace(s)

	if strings.Contains(s, ",") {
		// Brazilian notation: 1.234.567,89
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if dots := strings.Count(s, "."); dots > 0 {
		lastDot := strings.LastIndex(s, ".")
		decimals := len(s) - lastDot - 1
		if dots > 1 || decimals > 2 {
			// 1.234.567 or 1.500 style thousands grouping
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	// Strip any remaining non-numeric/non-sign characters
	s = amountCleaner.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", raw)
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}

	value = value.Abs()
	if value.IsZero() {
		return decimal.Zero, errZeroAmount
	}

	return value, nil
}

// errZeroAmount distinguishes zero-amount rows from unparseable ones so
// ParseStats can count them separately (validation reports them later).
var errZeroAmount = fmt.Errorf("zero amount")

var (
	creditTokens = regexp.MustCompile(`(?i)cr[eé]dito|entrada|recebimento|positivo|recebido|deposito|dep[oó]sito`)
	debitTokens  = regexp.MustCompile(`(?i)d[eé]bito|sa[ií]da|pagamento|negativo|enviado|saque|retirada`)
)

// parseType resolves the credit/debit marker. Single-character markers
// (C/D, +/-) are matched exactly; everything else goes through the token
// regexes. A marker matching neither direction - or both - is a row-level
// error, never a silent guess.
func parseType(raw string) (domain.TransactionType, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty transaction type")
	}

	switch strings.ToUpper(s) {
	case "C", "+", "CR":
		return domain.TypeCredit, nil
	case "D", "-", "DB", "DR":
		return domain.TypeDebit, nil
	}

	isCredit := creditTokens.MatchString(s)
	isDebit := debitTokens.MatchString(s)

	switch {
	case isCredit && isDebit:
		return "", fmt.Errorf("ambiguous transaction type %q", raw)
	case isCredit:
		return domain.TypeCredit, nil
	case isDebit:
		return domain.TypeDebit, nil
	default:
		return "", fmt.Errorf("unrecognized transaction type %q", raw)
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizeDocument strips all non-digit characters from a tax ID
// (CPF/CNPJ), so "123.456.789-00" becomes "12345678900".
func normalizeDocument(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// normalizeCounterparty trims the name and applies the sentinel for empty
// values - a Transaction never carries an empty counterparty.
func normalizeCounterparty(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.UnknownCounterparty
	}
	return s
}
