package redflags

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// detectFractioning finds structuring: per counterparty, clusters of two or
// more sub-threshold transactions inside the rolling window whose sum would
// have triggered the reporting limit as a single transaction.
//
// A single large transaction never fires this rule - it would already have
// been caught by standard reporting, which is the opposite of structuring.
func detectFractioning(txs []domain.Transaction, th domain.Thresholds) []domain.RedFlagAlert {
	// Only sub-threshold transactions participate; input order (date asc)
	// is preserved per counterparty.
	byCounterparty := make(map[string][]domain.Transaction)
	var order []string
	for _, tx := range txs {
		if tx.Amount.GreaterThanOrEqual(th.FractioningThreshold) {
			continue
		}
		if _, seen := byCounterparty[tx.Counterparty]; !seen {
			order = append(order, tx.Counterparty)
		}
		byCounterparty[tx.Counterparty] = append(byCounterparty[tx.Counterparty], tx)
	}

	var alerts []domain.RedFlagAlert
	for _, counterparty := range order {
		candidates := byCounterparty[counterparty]
		clusters := slideClusters(candidates, th)
		if len(clusters) == 0 {
			continue
		}

		var evidence []domain.Transaction
		total := decimal.Zero
		for _, cluster := range clusters {
			evidence = append(evidence, cluster...)
			for _, tx := range cluster {
				total = total.Add(tx.Amount)
			}
		}

		severity := domain.SeverityMedium
		if len(clusters) > 1 {
			severity = domain.SeverityHigh
		}

		alerts = append(alerts, domain.RedFlagAlert{
			Type:     domain.AlertFractioning,
			Severity: severity,
			Subject:  counterparty,
			Title:    fmt.Sprintf("Possível fracionamento envolvendo %s", counterparty),
			Description: fmt.Sprintf(
				"%d transações abaixo de %s somando %s em janela(s) de %d dias (%d agrupamento(s))",
				len(evidence), th.FractioningThreshold.StringFixed(2),
				total.StringFixed(2), th.WindowDays, len(clusters)),
			EvidenceTransactionIDs: evidenceIDs(evidence),
		})
	}

	return alerts
}

// slideClusters scans date-ordered sub-threshold transactions with a rolling
// window and returns non-overlapping clusters of size >= 2 whose sum reaches
// the reporting limit. Greedy: once a window qualifies it is extended as far
// as the window allows, then the scan resumes after it.
func slideClusters(txs []domain.Transaction, th domain.Thresholds) [][]domain.Transaction {
	var clusters [][]domain.Transaction

	i := 0
	for i < len(txs) {
		start := txs[i].Date.Unix()
		sum := decimal.Zero
		j := i
		for j < len(txs) && withinDays(start, txs[j].Date.Unix(), th.WindowDays) {
			sum = sum.Add(txs[j].Amount)
			j++
		}

		if j-i >= 2 && sum.GreaterThanOrEqual(th.ReportingLimit) {
			cluster := make([]domain.Transaction, j-i)
			copy(cluster, txs[i:j])
			clusters = append(clusters, cluster)
			i = j
			continue
		}
		i++
	}

	return clusters
}
