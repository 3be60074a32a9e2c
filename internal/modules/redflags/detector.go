// Package redflags implements the COAF red-flag detector: a fixed battery of
// money-laundering indicator rules (structuring/fractioning, fan-in/fan-out,
// circularity, incompatible profile) run over a normalized case ledger.
//
// Detection is deterministic: the same transactions and thresholds always
// produce the same alerts in the same canonical order, because a regulator
// must be able to reproduce any alert from the same inputs.
package redflags

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
)

// Detector runs the red-flag rule battery.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a new detector
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		log: log.With().Str("component", "redflags").Logger(),
	}
}

// ruleOrder fixes the canonical ordering of alert types in results.
var ruleOrder = map[domain.AlertType]int{
	domain.AlertFractioning:         0,
	domain.AlertFanInOut:            1,
	domain.AlertCircularity:         2,
	domain.AlertIncompatibleProfile: 3,
}

// Detect runs every rule over the transactions and returns the combined
// alerts in canonical order: rule, then severity (high first), then subject,
// then first evidence ID. Alerts come back without ID, CaseID, RunID or
// CreatedAt; the service fills those in when persisting.
func (d *Detector) Detect(transactions []domain.Transaction, thresholds domain.Thresholds) []domain.RedFlagAlert {
	if len(transactions) == 0 {
		return nil
	}

	// Rules assume chronological input. Sort defensively; ID as tiebreak
	// keeps same-instant transactions in a stable order.
	txs := make([]domain.Transaction, len(transactions))
	copy(txs, transactions)
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})

	var alerts []domain.RedFlagAlert
	alerts = append(alerts, detectFractioning(txs, thresholds)...)
	alerts = append(alerts, detectFanInOut(txs, thresholds)...)
	alerts = append(alerts, detectCircularity(txs, thresholds)...)
	alerts = append(alerts, detectIncompatibleProfile(txs, thresholds)...)

	for i := range alerts {
		alerts[i].Parameters = thresholds
	}

	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if ruleOrder[a.Type] != ruleOrder[b.Type] {
			return ruleOrder[a.Type] < ruleOrder[b.Type]
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return firstEvidence(a) < firstEvidence(b)
	})

	d.log.Debug().Int("transactions", len(txs)).Int("alerts", len(alerts)).Msg("Detection complete")
	return alerts
}

func firstEvidence(a domain.RedFlagAlert) string {
	if len(a.EvidenceTransactionIDs) == 0 {
		return ""
	}
	return a.EvidenceTransactionIDs[0]
}

// evidenceIDs extracts transaction IDs preserving the chronological input order.
func evidenceIDs(txs []domain.Transaction) []string {
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}

// withinDays reports whether b still falls inside a window of days starting at a.
func withinDays(a, b int64, days int) bool {
	return b-a <= int64(days)*86400
}
