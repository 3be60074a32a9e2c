// Package reports compiles case analysis results (metrics, red-flag alerts,
// ledger excerpts) into a structured document and renders it to downloadable
// artifacts: plain text, CSV, XLSX and PDF.
//
// The compiler itself produces only numeric and tabular sections. Narrative
// prose comes from the GROQ collaborator and is spliced in afterwards; when
// that collaborator is unavailable the report ships without it.
package reports

import (
	"sort"
	"time"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// AlertGroup holds one severity band of alerts, highest severity first in
// Document.AlertGroups.
type AlertGroup struct {
	Severity domain.Severity       `json:"severity"`
	Alerts   []domain.RedFlagAlert `json:"alerts"`
}

// Document is the structured report model, ready for any renderer.
type Document struct {
	Case         *cases.Case           `json:"case"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Uploads      []uploads.Upload      `json:"uploads"`
	Metrics      *analytics.Metrics    `json:"metrics"`
	AlertGroups  []AlertGroup          `json:"alert_groups"`
	Transactions []domain.Transaction  `json:"transactions"`
	Thresholds   *domain.Thresholds    `json:"thresholds,omitempty"`

	// Narrative is the optional AI-drafted executive summary.
	Narrative string `json:"narrative,omitempty"`
}

// AlertCount returns the total number of alerts across all groups.
func (d *Document) AlertCount() int {
	n := 0
	for _, g := range d.AlertGroups {
		n += len(g.Alerts)
	}
	return n
}

// Compile organizes analysis outputs into the report document. Pure: no
// I/O, no narrative generation. Alerts are grouped by severity, high first;
// inside a group the detector's canonical order is preserved.
func Compile(c *cases.Case, ups []uploads.Upload, metrics *analytics.Metrics, alerts []domain.RedFlagAlert, transactions []domain.Transaction, thresholds *domain.Thresholds) *Document {
	groups := make(map[domain.Severity][]domain.RedFlagAlert)
	for _, a := range alerts {
		groups[a.Severity] = append(groups[a.Severity], a)
	}

	var alertGroups []AlertGroup
	for severity, members := range groups {
		alertGroups = append(alertGroups, AlertGroup{Severity: severity, Alerts: members})
	}
	sort.Slice(alertGroups, func(i, j int) bool {
		return alertGroups[i].Severity.Rank() > alertGroups[j].Severity.Rank()
	})

	return &Document{
		Case:         c,
		GeneratedAt:  time.Now().UTC(),
		Uploads:      ups,
		Metrics:      metrics,
		AlertGroups:  alertGroups,
		Transactions: transactions,
		Thresholds:   thresholds,
	}
}
