package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSignedAmount(t *testing.T) {
	credit := Transaction{Type: TypeCredit, Amount: decimal.NewFromFloat(1500.50)}
	debit := Transaction{Type: TypeDebit, Amount: decimal.NewFromFloat(1500.50)}

	assert.True(t, credit.SignedAmount().Equal(decimal.NewFromFloat(1500.50)))
	assert.True(t, debit.SignedAmount().Equal(decimal.NewFromFloat(-1500.50)))

	// Stored magnitude stays unsigned regardless of direction
	assert.True(t, debit.Amount.GreaterThanOrEqual(decimal.Zero))
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
}

func TestTransactionFilterMatches(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tx := Transaction{
		Date:         date,
		Amount:       decimal.NewFromInt(500),
		Type:         TypeCredit,
		Counterparty: "João Silva",
		Method:       "PIX",
	}

	t.Run("zero filter matches everything", func(t *testing.T) {
		f := TransactionFilter{}
		assert.True(t, f.IsZero())
		assert.True(t, f.Matches(&tx))
	})

	t.Run("date range", func(t *testing.T) {
		from := date.AddDate(0, 0, -1)
		to := date.AddDate(0, 0, 1)
		f := TransactionFilter{From: &from, To: &to}
		assert.True(t, f.Matches(&tx))

		outside := date.AddDate(0, 1, 0)
		f = TransactionFilter{From: &outside}
		assert.False(t, f.Matches(&tx))
	})

	t.Run("minimum amount", func(t *testing.T) {
		min := decimal.NewFromInt(1000)
		f := TransactionFilter{MinAmount: &min}
		assert.False(t, f.Matches(&tx))

		min = decimal.NewFromInt(500)
		f = TransactionFilter{MinAmount: &min}
		assert.True(t, f.Matches(&tx))
	})

	t.Run("method is case-insensitive", func(t *testing.T) {
		f := TransactionFilter{Method: "pix"}
		assert.True(t, f.Matches(&tx))

		f = TransactionFilter{Method: "TED"}
		assert.False(t, f.Matches(&tx))
	})

	t.Run("counterparty is a substring match", func(t *testing.T) {
		f := TransactionFilter{Counterparty: "silva"}
		assert.True(t, f.Matches(&tx))

		f = TransactionFilter{Counterparty: "souza"}
		assert.False(t, f.Matches(&tx))
	})
}
