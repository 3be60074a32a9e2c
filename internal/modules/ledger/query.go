package ledger

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// FilterFromQuery parses the transaction filter query parameters shared by
// the ledger, metrics, analysis and report endpoints:
//
//	from=2024-01-01  to=2024-03-31  min_amount=1000.00
//	method=PIX       counterparty=fulano
//
// Dates are whole days; "to" is inclusive through the end of its day.
func FilterFromQuery(values url.Values) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	if raw := values.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'from' date %q (expected YYYY-MM-DD)", raw)
		}
		filter.From = &t
	}
	if raw := values.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'to' date %q (expected YYYY-MM-DD)", raw)
		}
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.To = &endOfDay
	}
	if raw := values.Get("min_amount"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'min_amount' %q", raw)
		}
		filter.MinAmount = &min
	}
	filter.Method = values.Get("method")
	filter.Counterparty = values.Get("counterparty")

	return filter, nil
}
