package domain

import "time"

// AlertType identifies which red-flag rule fired.
type AlertType string

const (
	// AlertFractioning - structuring: multiple sub-threshold transactions
	// with the same counterparty summing past the reporting limit
	AlertFractioning AlertType = "fractioning"
	// AlertFanInOut - unusually many distinct inbound or outbound counterparties
	AlertFanInOut AlertType = "fan-in-out"
	// AlertCircularity - funds returning to their origin within the window
	AlertCircularity AlertType = "circularity"
	// AlertIncompatibleProfile - volume incompatible with the account baseline
	AlertIncompatibleProfile AlertType = "incompatible-profile"
)

// Severity is ordinal: low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityRank maps severities to their ordinal value for sorting.
var severityRank = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
}

// Rank returns the ordinal value of the severity (low=0, medium=1, high=2).
func (s Severity) Rank() int {
	return severityRank[s]
}

// RedFlagAlert is a single detector finding. Alerts are derived data:
// recomputed from scratch on every analysis run and superseded (not merged)
// by subsequent runs over the same case.
//
// EvidenceTransactionIDs contains exactly the transactions that satisfied
// the rule's predicate - no over-inclusion of unrelated nearby transactions.
// Parameters snapshots the thresholds in effect when the rule fired so a
// regulator can reproduce the alert from the same inputs.
type RedFlagAlert struct {
	ID                     string     `json:"id"`
	CaseID                 string     `json:"case_id"`
	RunID                  string     `json:"run_id"`
	Type                   AlertType  `json:"type"`
	Severity               Severity   `json:"severity"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Subject                string     `json:"subject"` // counterparty or account the alert is about
	EvidenceTransactionIDs []string   `json:"evidence_transaction_ids"`
	Parameters             Thresholds `json:"parameters"`
	CreatedAt              time.Time  `json:"created_at"`
}
