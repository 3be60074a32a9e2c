package redflags

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencoaf/caseledger/internal/domain"
)

var testBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tx(id string, day int, amount string, typ domain.TransactionType, counterparty string) domain.Transaction {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return domain.Transaction{
		ID:           id,
		CaseID:       "case-1",
		UploadID:     "upload-1",
		Date:         testBase.AddDate(0, 0, day-1),
		Amount:       amt,
		Type:         typ,
		Counterparty:         counterparty,
		CounterpartyDocument: "doc-" + counterparty,
		HolderDocument:       "holder-1",
	}
}

func alertsOfType(alerts []domain.RedFlagAlert, typ domain.AlertType) []domain.RedFlagAlert {
	var out []domain.RedFlagAlert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestDetectEmptyLedger(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	assert.Empty(t, d.Detect(nil, domain.DefaultThresholds()))
}

func TestFractioning(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds() // threshold 10000, limit 10000, window 30d

	t.Run("sub-threshold cluster summing past the limit fires", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "4000.00", domain.TypeCredit, "Fulano"),
			tx("tx-02", 3, "4000.00", domain.TypeCredit, "Fulano"),
			tx("tx-03", 5, "4000.00", domain.TypeCredit, "Fulano"),
		}, th)

		fires := alertsOfType(alerts, domain.AlertFractioning)
		require.Len(t, fires, 1)
		assert.Equal(t, "Fulano", fires[0].Subject)
		assert.ElementsMatch(t, []string{"tx-01", "tx-02", "tx-03"}, fires[0].EvidenceTransactionIDs)
		assert.Equal(t, th.WindowDays, fires[0].Parameters.WindowDays)
	})

	t.Run("single transaction of twice the threshold never fires", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "20000.00", domain.TypeCredit, "Fulano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertFractioning))
	})

	t.Run("cluster outside the window stays silent", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "6000.00", domain.TypeCredit, "Fulano"),
			tx("tx-02", 60, "6000.00", domain.TypeCredit, "Fulano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertFractioning))
	})

	t.Run("sub-limit cluster stays silent", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "2000.00", domain.TypeCredit, "Fulano"),
			tx("tx-02", 2, "2000.00", domain.TypeCredit, "Fulano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertFractioning))
	})

	t.Run("multiple clusters escalate severity", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "6000.00", domain.TypeCredit, "Fulano"),
			tx("tx-02", 2, "6000.00", domain.TypeCredit, "Fulano"),
			tx("tx-03", 100, "6000.00", domain.TypeCredit, "Fulano"),
			tx("tx-04", 101, "6000.00", domain.TypeCredit, "Fulano"),
		}, th)

		fires := alertsOfType(alerts, domain.AlertFractioning)
		require.Len(t, fires, 1)
		assert.Equal(t, domain.SeverityHigh, fires[0].Severity)
		assert.Len(t, fires[0].EvidenceTransactionIDs, 4)
	})
}

// Scenario from COAF guidance: 15 distinct outbound counterparties in a
// 30-day window with threshold 10 must produce a fan-out alert whose
// evidence covers all 15 transactions.
func TestFanOut(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds()

	var txs []domain.Transaction
	for i := 0; i < 15; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("tx-%02d", i), 1+i, "500.00",
			domain.TypeDebit, fmt.Sprintf("Destinatário %02d", i)))
	}

	alerts := d.Detect(txs, th)
	fires := alertsOfType(alerts, domain.AlertFanInOut)
	require.Len(t, fires, 1)
	assert.Len(t, fires[0].EvidenceTransactionIDs, 15)
}

func TestFanInAndFanOutAreSeparateAlerts(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds()
	th.FanInOutThreshold = 3

	var txs []domain.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, tx(fmt.Sprintf("in-%02d", i), 1+i, "100.00",
			domain.TypeCredit, fmt.Sprintf("Remetente %d", i)))
		txs = append(txs, tx(fmt.Sprintf("out-%02d", i), 1+i, "100.00",
			domain.TypeDebit, fmt.Sprintf("Destinatário %d", i)))
	}

	fires := alertsOfType(d.Detect(txs, th), domain.AlertFanInOut)
	require.Len(t, fires, 2, "fan-in and fan-out are distinct leads, never merged")
}

func TestFanInOutUnderThresholdSilent(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds() // threshold 10

	var txs []domain.Transaction
	for i := 0; i < 10; i++ { // exactly at threshold, not above
		txs = append(txs, tx(fmt.Sprintf("tx-%02d", i), 1+i, "100.00",
			domain.TypeDebit, fmt.Sprintf("D%d", i)))
	}
	assert.Empty(t, alertsOfType(d.Detect(txs, th), domain.AlertFanInOut))
}

func TestCircularity(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds() // window 15d, floor 1000

	t.Run("direct round trip fires", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "5000.00", domain.TypeDebit, "Beltrano"),
			tx("tx-02", 5, "4800.00", domain.TypeCredit, "Beltrano"),
		}, th)

		fires := alertsOfType(alerts, domain.AlertCircularity)
		require.Len(t, fires, 1)
		assert.ElementsMatch(t, []string{"tx-01", "tx-02"}, fires[0].EvidenceTransactionIDs)
	})

	t.Run("round trip below the materiality floor stays silent", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "200.00", domain.TypeDebit, "Beltrano"),
			tx("tx-02", 5, "180.00", domain.TypeCredit, "Beltrano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertCircularity))
	})

	t.Run("return outside the window stays silent", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "5000.00", domain.TypeDebit, "Beltrano"),
			tx("tx-02", 40, "4800.00", domain.TypeCredit, "Beltrano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertCircularity))
	})

	t.Run("one-way flow stays silent", func(t *testing.T) {
		alerts := d.Detect([]domain.Transaction{
			tx("tx-01", 1, "5000.00", domain.TypeDebit, "Beltrano"),
			tx("tx-02", 5, "4800.00", domain.TypeDebit, "Beltrano"),
		}, th)
		assert.Empty(t, alertsOfType(alerts, domain.AlertCircularity))
	})
}

func TestIncompatibleProfile(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds() // multiplier 5

	t.Run("outlier against baseline fires", func(t *testing.T) {
		var txs []domain.Transaction
		for i := 0; i < 20; i++ {
			txs = append(txs, tx(fmt.Sprintf("tx-%02d", i), 1+i, "100.00",
				domain.TypeCredit, "A"))
		}
		// baseline ~= 2476 with the outlier included; ceiling ~= 12380
		txs = append(txs, tx("tx-out", 21, "50000.00", domain.TypeCredit, "F"))

		fires := alertsOfType(d.Detect(txs, th), domain.AlertIncompatibleProfile)
		require.Len(t, fires, 1)
		assert.Equal(t, []string{"tx-out"}, fires[0].EvidenceTransactionIDs)
		assert.Equal(t, domain.SeverityHigh, fires[0].Severity)
	})

	t.Run("too few transactions establish no baseline", func(t *testing.T) {
		txs := []domain.Transaction{
			tx("tx-01", 1, "100.00", domain.TypeCredit, "A"),
			tx("tx-02", 2, "50000.00", domain.TypeCredit, "B"),
		}
		assert.Empty(t, alertsOfType(d.Detect(txs, th), domain.AlertIncompatibleProfile))
	})

	t.Run("uniform activity stays silent", func(t *testing.T) {
		var txs []domain.Transaction
		for i := 0; i < 20; i++ {
			txs = append(txs, tx(fmt.Sprintf("tx-%02d", i), 1+i, "100.00",
				domain.TypeCredit, "A"))
		}
		assert.Empty(t, alertsOfType(d.Detect(txs, th), domain.AlertIncompatibleProfile))
	})
}

// Identical inputs must yield identical alert lists: same members, same
// evidence, same order.
func TestDetectDeterminism(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	th := domain.DefaultThresholds()
	th.FanInOutThreshold = 3

	var txs []domain.Transaction
	for i := 0; i < 6; i++ {
		txs = append(txs, tx(fmt.Sprintf("f-%02d", i), 1+i, "3000.00",
			domain.TypeCredit, "Fulano"))
		txs = append(txs, tx(fmt.Sprintf("o-%02d", i), 1+i, "2000.00",
			domain.TypeDebit, fmt.Sprintf("Dest %d", i)))
	}
	txs = append(txs,
		tx("c-01", 2, "5000.00", domain.TypeDebit, "Beltrano"),
		tx("c-02", 6, "4900.00", domain.TypeCredit, "Beltrano"),
	)

	first := d.Detect(txs, th)
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, d.Detect(txs, th))
	}

	// canonical order: rule order is fixed
	lastRule := -1
	for _, a := range first {
		r := ruleOrder[a.Type]
		assert.GreaterOrEqual(t, r, lastRule)
		lastRule = r
	}
}

func TestRunStateGuard(t *testing.T) {
	s := newRunState()
	require.NoError(t, s.begin("case-1"))
	assert.ErrorIs(t, s.begin("case-1"), ErrRunInProgress)
	require.NoError(t, s.begin("case-2"), "other cases are unaffected")
	s.end("case-1")
	assert.NoError(t, s.begin("case-1"))
}
