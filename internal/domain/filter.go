package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a ledger to an analysis window. The zero value
// matches everything. The same predicate set is applied by the SQL layer and
// by the in-memory aggregator, so filtered API queries and pure-function
// analytics agree on membership.
type TransactionFilter struct {
	From         *time.Time       `json:"from,omitempty"`
	To           *time.Time       `json:"to,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	Method       string           `json:"method,omitempty"`
	Counterparty string           `json:"counterparty,omitempty"`
}

// Matches reports whether the transaction passes every set predicate.
func (f *TransactionFilter) Matches(t *Transaction) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	if f.MinAmount != nil && t.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.Method != "" && !strings.EqualFold(t.Method, f.Method) {
		return false
	}
	if f.Counterparty != "" && !strings.Contains(
		strings.ToLower(t.Counterparty), strings.ToLower(f.Counterparty)) {
		return false
	}
	return true
}

// IsZero reports whether no predicate is set.
func (f *TransactionFilter) IsZero() bool {
	return f.From == nil && f.To == nil && f.MinAmount == nil &&
		f.Method == "" && f.Counterparty == ""
}
