// Package domain contains the core types shared across caseledger modules.
// The domain layer is pure: no database, HTTP, or client dependencies.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCounterparty is the sentinel used when a source row carries no
// counterparty name. Transactions never have an empty counterparty.
const UnknownCounterparty = "DESCONHECIDO"

// TransactionType is the direction of a transaction. Direction is orthogonal
// to magnitude: Amount is always non-negative.
type TransactionType string

const (
	// TypeCredit - funds entering the account
	TypeCredit TransactionType = "credit"
	// TypeDebit - funds leaving the account
	TypeDebit TransactionType = "debit"
)

// Transaction is the canonical normalized unit of the per-case ledger.
// One Transaction is created per successfully parsed source row at upload
// time and is immutable thereafter (append-only ledger).
//
// Field availability depends on the source format: TXT carries only the
// seven fixed columns, CSV/XLSX carry whatever the header alias map resolved.
type Transaction struct {
	ID       string `json:"id"`
	CaseID   string `json:"case_id"`
	UploadID string `json:"upload_id"`

	// Date is always resolved to a concrete point in time; rows whose date
	// cannot be parsed never become Transactions.
	Date time.Time `json:"date"`

	// Amount is an exact decimal, always >= 0. Sign is never encoded here.
	Amount decimal.Decimal `json:"amount"`

	Type TransactionType `json:"type"`

	// Counterparty is never empty (falls back to UnknownCounterparty).
	Counterparty string `json:"counterparty"`

	// CounterpartyDocument and HolderDocument are normalized tax IDs:
	// digits only, no punctuation. Empty when the source had none.
	CounterpartyDocument string `json:"counterparty_document,omitempty"`
	HolderDocument       string `json:"holder_document,omitempty"`

	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"` // e.g. TED, PIX, DINHEIRO
	Bank        string `json:"bank,omitempty"`
	Agency      string `json:"agency,omitempty"`
	Account     string `json:"account,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Country     string `json:"country,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// IsCredit reports whether the transaction moves funds into the account.
func (t *Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// SignedAmount returns the amount with direction applied: positive for
// credits, negative for debits. Used only for balance arithmetic; stored
// amounts stay unsigned.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
