// Package analytics computes descriptive metrics over a case ledger: totals,
// balance, time series and distributions. Aggregation is pure and
// deterministic; all money math goes through decimal so the balance identity
// (credits - debits) holds exactly.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// topCounterpartyLimit bounds the counterparty ranking in Metrics.
const topCounterpartyLimit = 10

// DailyPoint is one day of ledger activity.
type DailyPoint struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// MethodBreakdown is the activity attributed to one payment method.
type MethodBreakdown struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// CounterpartySummary ranks one counterparty by moved volume.
type CounterpartySummary struct {
	Name     string          `json:"name"`
	Document string          `json:"document,omitempty"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Credits  decimal.Decimal `json:"credits"`
	Debits   decimal.Decimal `json:"debits"`
}

// Metrics is the aggregated view of a (possibly filtered) case ledger.
type Metrics struct {
	Count         int             `json:"count"`
	CreditCount   int             `json:"credit_count"`
	DebitCount    int             `json:"debit_count"`
	TotalCredits  decimal.Decimal `json:"total_credits"`
	TotalDebits   decimal.Decimal `json:"total_debits"`
	Balance       decimal.Decimal `json:"balance"` // credits - debits, exact
	AverageTicket decimal.Decimal `json:"average_ticket"`
	FirstDate     string          `json:"first_date,omitempty"` // YYYY-MM-DD
	LastDate      string          `json:"last_date,omitempty"`

	DailySeries       []DailyPoint          `json:"daily_series"`
	ByMethod          []MethodBreakdown     `json:"by_method"`
	TopCounterparties []CounterpartySummary `json:"top_counterparties"`
}

// Aggregate computes metrics over an already-filtered transaction slice.
// Output ordering is canonical: the daily series ascends by date, methods
// and counterparties descend by total with name as the final tiebreak, so
// the same ledger always yields byte-identical metrics.
func Aggregate(transactions []domain.Transaction) Metrics {
	m := Metrics{
		TotalCredits:  decimal.Zero,
		TotalDebits:   decimal.Zero,
		Balance:       decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	if len(transactions) == 0 {
		return m
	}

	type dayAcc struct {
		credits, debits decimal.Decimal
		count           int
	}
	type methodAcc struct {
		count int
		total decimal.Decimal
	}
	type cpAcc struct {
		document        string
		count           int
		credits, debits decimal.Decimal
	}

	days := make(map[string]*dayAcc)
	methods := make(map[string]*methodAcc)
	counterparties := make(map[string]*cpAcc)

	var first, last time.Time
	total := decimal.Zero

	for _, tx := range transactions {
		m.Count++
		total = total.Add(tx.Amount)

		if tx.IsCredit() {
			m.CreditCount++
			m.TotalCredits = m.TotalCredits.Add(tx.Amount)
		} else {
			m.DebitCount++
			m.TotalDebits = m.TotalDebits.Add(tx.Amount)
		}

		if first.IsZero() || tx.Date.Before(first) {
			first = tx.Date
		}
		if tx.Date.After(last) {
			last = tx.Date
		}

		day := tx.Date.Format("2006-01-02")
		d, ok := days[day]
		if !ok {
			d = &dayAcc{credits: decimal.Zero, debits: decimal.Zero}
			days[day] = d
		}
		d.count++
		if tx.IsCredit() {
			d.credits = d.credits.Add(tx.Amount)
		} else {
			d.debits = d.debits.Add(tx.Amount)
		}

		method := tx.Method
		if method == "" {
			method = "(não informado)"
		}
		mk, ok := methods[method]
		if !ok {
			mk = &methodAcc{total: decimal.Zero}
			methods[method] = mk
		}
		mk.count++
		mk.total = mk.total.Add(tx.Amount)

		cp, ok := counterparties[tx.Counterparty]
		if !ok {
			cp = &cpAcc{credits: decimal.Zero, debits: decimal.Zero}
			counterparties[tx.Counterparty] = cp
		}
		cp.count++
		if cp.document == "" {
			cp.document = tx.CounterpartyDocument
		}
		if tx.IsCredit() {
			cp.credits = cp.credits.Add(tx.Amount)
		} else {
			cp.debits = cp.debits.Add(tx.Amount)
		}
	}

	m.Balance = m.TotalCredits.Sub(m.TotalDebits)
	m.AverageTicket = total.DivRound(decimal.NewFromInt(int64(m.Count)), 2)
	m.FirstDate = first.Format("2006-01-02")
	m.LastDate = last.Format("2006-01-02")

	for day, d := range days {
		m.DailySeries = append(m.DailySeries, DailyPoint{
			Date:    day,
			Credits: d.credits,
			Debits:  d.debits,
			Net:     d.credits.Sub(d.debits),
			Count:   d.count,
		})
	}
	sort.Slice(m.DailySeries, func(i, j int) bool {
		return m.DailySeries[i].Date < m.DailySeries[j].Date
	})

	for method, acc := range methods {
		m.ByMethod = append(m.ByMethod, MethodBreakdown{
			Method: method,
			Count:  acc.count,
			Total:  acc.total,
		})
	}
	sort.Slice(m.ByMethod, func(i, j int) bool {
		a, b := m.ByMethod[i], m.ByMethod[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Method < b.Method
	})

	for name, acc := range counterparties {
		m.TopCounterparties = append(m.TopCounterparties, CounterpartySummary{
			Name:     name,
			Document: acc.document,
			Count:    acc.count,
			Total:    acc.credits.Add(acc.debits),
			Credits:  acc.credits,
			Debits:   acc.debits,
		})
	}
	sort.Slice(m.TopCounterparties, func(i, j int) bool {
		a, b := m.TopCounterparties[i], m.TopCounterparties[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(m.TopCounterparties) > topCounterpartyLimit {
		m.TopCounterparties = m.TopCounterparties[:topCounterpartyLimit]
	}

	return m
}
