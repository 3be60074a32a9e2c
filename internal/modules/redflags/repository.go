package redflags

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/database"
	"github.com/opencoaf/caseledger/internal/domain"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one detection run over a case ledger. A completed run supersedes
// every earlier run for the same case.
type Run struct {
	ID         string            `json:"id"`
	CaseID     string            `json:"case_id"`
	Status     string            `json:"status"`
	Thresholds domain.Thresholds `json:"thresholds"`
	AlertCount int               `json:"alert_count"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Repository handles analysis run and alert database operations
type Repository struct {
	db  *sql.DB // analysis.db - analysis_runs and alerts tables
	log zerolog.Logger
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "redflags").Logger(),
	}
}

// CreateRun inserts a run in the running state.
func (r *Repository) CreateRun(run *Run) error {
	thresholds, err := json.Marshal(run.Thresholds)
	if err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO analysis_runs (id, case_id, status, thresholds_json, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CaseID, run.Status, string(thresholds), run.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// CompleteRun stores the alerts and marks the run completed in one database
// transaction, so a run is never half-visible.
func (r *Repository) CompleteRun(runID string, alerts []domain.RedFlagAlert) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(
			`INSERT INTO alerts (id, case_id, run_id, type, severity, title,
			 description, subject, evidence_json, parameters_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare alert insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range alerts {
			evidence, err := json.Marshal(a.EvidenceTransactionIDs)
			if err != nil {
				return fmt.Errorf("failed to encode evidence: %w", err)
			}
			parameters, err := json.Marshal(a.Parameters)
			if err != nil {
				return fmt.Errorf("failed to encode parameters: %w", err)
			}
			_, err = stmt.Exec(
				a.ID, a.CaseID, a.RunID, string(a.Type), string(a.Severity),
				a.Title, a.Description, a.Subject, string(evidence),
				string(parameters), a.CreatedAt.Unix(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert alert %s: %w", a.ID, err)
			}
		}

		_, err = tx.Exec(
			"UPDATE analysis_runs SET status = ?, alert_count = ?, finished_at = ? WHERE id = ?",
			RunStatusCompleted, len(alerts), time.Now().Unix(), runID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete run %s: %w", runID, err)
		}
		return nil
	})
}

// FailRun marks a run failed with its error message.
func (r *Repository) FailRun(runID string, runErr error) error {
	_, err := r.db.Exec(
		"UPDATE analysis_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		RunStatusFailed, runErr.Error(), time.Now().Unix(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
	}
	return nil
}

// LatestCompletedRun returns the newest completed run for a case, or nil
// when the case has never been analyzed.
func (r *Repository) LatestCompletedRun(caseID string) (*Run, error) {
	row := r.db.QueryRow(
		`SELECT id, case_id, status, thresholds_json, alert_count, error, started_at, finished_at
		 FROM analysis_runs WHERE case_id = ? AND status = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`,
		caseID, RunStatusCompleted,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run for case %s: %w", caseID, err)
	}
	return run, nil
}

// AlertsByRun returns a run's alerts in their canonical stored order.
func (r *Repository) AlertsByRun(runID string) ([]domain.RedFlagAlert, error) {
	rows, err := r.db.Query(
		`SELECT id, case_id, run_id, type, severity, title, description,
		        subject, evidence_json, parameters_json, created_at
		 FROM alerts WHERE run_id = ? ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.RedFlagAlert
	for rows.Next() {
		var a domain.RedFlagAlert
		var typeStr, severityStr, evidence, parameters string
		var createdAt int64

		err := rows.Scan(&a.ID, &a.CaseID, &a.RunID, &typeStr, &severityStr,
			&a.Title, &a.Description, &a.Subject, &evidence, &parameters, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		a.Type = domain.AlertType(typeStr)
		a.Severity = domain.Severity(severityStr)
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		if err := json.Unmarshal([]byte(evidence), &a.EvidenceTransactionIDs); err != nil {
			return nil, fmt.Errorf("corrupt evidence for alert %s: %w", a.ID, err)
		}
		if err := json.Unmarshal([]byte(parameters), &a.Parameters); err != nil {
			return nil, fmt.Errorf("corrupt parameters for alert %s: %w", a.ID, err)
		}

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var thresholds string
	var startedAt int64
	var finishedAt sql.NullInt64

	err := row.Scan(&run.ID, &run.CaseID, &run.Status, &thresholds,
		&run.AlertCount, &run.Error, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(thresholds), &run.Thresholds); err != nil {
		return nil, fmt.Errorf("corrupt thresholds for run %s: %w", run.ID, err)
	}
	run.StartedAt = time.Unix(startedAt, 0).UTC()
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0).UTC()
		run.FinishedAt = &t
	}
	return &run, nil
}
