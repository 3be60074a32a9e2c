package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencoaf/caseledger/internal/domain"
)

func tx(day int, amount string, typ domain.TransactionType, counterparty, method string) domain.Transaction {
	amt, _ := decimal.NewFromString(amount)
	return domain.Transaction{
		Date:         time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
		Amount:       amt,
		Type:         typ,
		Counterparty: counterparty,
		Method:       method,
	}
}

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil)
	assert.Zero(t, m.Count)
	assert.True(t, m.Balance.IsZero())
	assert.Empty(t, m.DailySeries)
	assert.Empty(t, m.TopCounterparties)
}

func TestAggregateTotals(t *testing.T) {
	m := Aggregate([]domain.Transaction{
		tx(1, "1000.00", domain.TypeCredit, "A", "PIX"),
		tx(1, "250.50", domain.TypeDebit, "B", "TED"),
		tx(2, "100.10", domain.TypeCredit, "A", "PIX"),
	})

	assert.Equal(t, 3, m.Count)
	assert.Equal(t, 2, m.CreditCount)
	assert.Equal(t, 1, m.DebitCount)
	assert.Equal(t, "1100.1", m.TotalCredits.String())
	assert.Equal(t, "250.5", m.TotalDebits.String())
	assert.Equal(t, "849.6", m.Balance.String())
	assert.Equal(t, "2024-01-01", m.FirstDate)
	assert.Equal(t, "2024-01-02", m.LastDate)

	// (1000.00 + 250.50 + 100.10) / 3 = 450.20
	assert.Equal(t, "450.2", m.AverageTicket.String())
}

// The balance identity must hold exactly, including amounts that misbehave
// in binary floating point.
func TestAggregateBalanceExactness(t *testing.T) {
	var txs []domain.Transaction
	for i := 0; i < 100; i++ {
		txs = append(txs, tx(1+i%28, "0.10", domain.TypeCredit, "A", "PIX"))
		txs = append(txs, tx(1+i%28, "0.10", domain.TypeDebit, "B", "PIX"))
	}
	m := Aggregate(txs)

	assert.Equal(t, "10", m.TotalCredits.String())
	assert.True(t, m.Balance.IsZero(), "expected exact zero, got %s", m.Balance)
}

func TestAggregateDailySeries(t *testing.T) {
	m := Aggregate([]domain.Transaction{
		tx(3, "300.00", domain.TypeCredit, "A", "PIX"),
		tx(1, "100.00", domain.TypeCredit, "A", "PIX"),
		tx(1, "40.00", domain.TypeDebit, "B", "PIX"),
	})

	require.Len(t, m.DailySeries, 2)
	assert.Equal(t, "2024-01-01", m.DailySeries[0].Date)
	assert.Equal(t, "60", m.DailySeries[0].Net.String())
	assert.Equal(t, 2, m.DailySeries[0].Count)
	assert.Equal(t, "2024-01-03", m.DailySeries[1].Date)
}

func TestAggregateRankings(t *testing.T) {
	m := Aggregate([]domain.Transaction{
		tx(1, "500.00", domain.TypeCredit, "Alice", "PIX"),
		tx(2, "500.00", domain.TypeDebit, "Alice", "TED"),
		tx(3, "2000.00", domain.TypeCredit, "Bob", "TED"),
		tx(4, "100.00", domain.TypeDebit, "Carol", ""),
	})

	require.Len(t, m.TopCounterparties, 3)
	assert.Equal(t, "Bob", m.TopCounterparties[0].Name)
	assert.Equal(t, "Alice", m.TopCounterparties[1].Name)
	assert.Equal(t, "1000", m.TopCounterparties[1].Total.String())
	assert.Equal(t, "500", m.TopCounterparties[1].Credits.String())
	assert.Equal(t, "500", m.TopCounterparties[1].Debits.String())

	require.Len(t, m.ByMethod, 3)
	assert.Equal(t, "TED", m.ByMethod[0].Method)
	assert.Equal(t, "2500", m.ByMethod[0].Total.String())
	// missing method is bucketed, not dropped
	assert.Equal(t, "(não informado)", m.ByMethod[2].Method)
}

// Equal totals must break ties deterministically: count, then name.
func TestAggregateDeterministicOrder(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, "100.00", domain.TypeCredit, "Zeta", "PIX"),
		tx(2, "100.00", domain.TypeCredit, "Alfa", "PIX"),
	}

	first := Aggregate(txs)
	for i := 0; i < 10; i++ {
		again := Aggregate(txs)
		assert.Equal(t, first.TopCounterparties, again.TopCounterparties)
	}
	assert.Equal(t, "Alfa", first.TopCounterparties[0].Name)
}
