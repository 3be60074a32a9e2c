package redflags

import (
	"fmt"

	"github.com/opencoaf/caseledger/internal/domain"
)

// detectFanInOut flags accounts with an unusually large number of distinct
// counterparties in one direction within the rolling window. Credits are
// fan-in (many senders), debits are fan-out (many recipients).
//
// An account over the threshold in both directions raises two separate
// alerts - they are distinct investigative leads, never merged.
func detectFanInOut(txs []domain.Transaction, th domain.Thresholds) []domain.RedFlagAlert {
	// Transactions from different holder accounts can share one case
	// ledger; each holder is evaluated on its own.
	byHolder := make(map[string][]domain.Transaction)
	var holders []string
	for _, tx := range txs {
		h := tx.HolderDocument
		if _, seen := byHolder[h]; !seen {
			holders = append(holders, h)
		}
		byHolder[h] = append(byHolder[h], tx)
	}

	var alerts []domain.RedFlagAlert
	for _, holder := range holders {
		for _, direction := range []domain.TransactionType{domain.TypeCredit, domain.TypeDebit} {
			var directional []domain.Transaction
			for _, tx := range byHolder[holder] {
				if tx.Type == direction {
					directional = append(directional, tx)
				}
			}

			window := bestFanWindow(directional, th.WindowDays)
			distinct := distinctCounterparties(window)
			if distinct <= th.FanInOutThreshold {
				continue
			}

			label := "fan-in"
			phrase := "recebeu de"
			if direction == domain.TypeDebit {
				label = "fan-out"
				phrase = "enviou para"
			}

			subject := holder
			if subject == "" {
				subject = "titular"
			}

			severity := domain.SeverityMedium
			if distinct > 2*th.FanInOutThreshold {
				severity = domain.SeverityHigh
			}

			alerts = append(alerts, domain.RedFlagAlert{
				Type:     domain.AlertFanInOut,
				Severity: severity,
				Subject:  subject,
				Title:    fmt.Sprintf("Padrão %s na conta %s", label, subject),
				Description: fmt.Sprintf(
					"Conta %s %d contrapartes distintas em %d dias (limite: %d)",
					phrase, distinct, th.WindowDays, th.FanInOutThreshold),
				EvidenceTransactionIDs: evidenceIDs(window),
			})
		}
	}

	return alerts
}

// bestFanWindow slides a window of windowDays over date-ordered transactions
// and returns the span holding the most distinct counterparties. Ties go to
// the earliest window so results stay deterministic.
func bestFanWindow(txs []domain.Transaction, windowDays int) []domain.Transaction {
	var best []domain.Transaction
	bestDistinct := 0

	for i := range txs {
		start := txs[i].Date.Unix()
		j := i
		for j < len(txs) && withinDays(start, txs[j].Date.Unix(), windowDays) {
			j++
		}
		if d := distinctCounterparties(txs[i:j]); d > bestDistinct {
			bestDistinct = d
			best = txs[i:j]
		}
	}

	return best
}

func distinctCounterparties(txs []domain.Transaction) int {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		seen[tx.Counterparty] = struct{}{}
	}
	return len(seen)
}
