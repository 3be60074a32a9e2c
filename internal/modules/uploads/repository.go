// Package uploads tracks uploaded RIF export files and orchestrates their
// ingestion: store the raw blob, normalize rows into the ledger, record
// per-row accounting.
package uploads

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/ingest"
)

// Upload status values.
const (
	StatusIngested = "ingested"
	StatusFailed   = "failed"
	StatusDeleted  = "deleted"
)

// Upload is the metadata record for one uploaded source file. The parse
// statistics are kept so validation warnings about dropped rows remain
// reproducible after the original file is gone.
type Upload struct {
	ID         string            `json:"id"`
	CaseID     string            `json:"case_id"`
	Filename   string            `json:"filename"`
	SizeBytes  int64             `json:"size_bytes"`
	StorageKey string            `json:"storage_key,omitempty"`
	Status     string            `json:"status"`
	Stats      ingest.ParseStats `json:"stats"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Repository handles upload metadata database operations
type Repository struct {
	db  *sql.DB // cases.db - uploads table
	log zerolog.Logger
}

// NewRepository creates a new upload repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "uploads").Logger(),
	}
}

// Insert persists a new upload record.
func (r *Repository) Insert(u *Upload) error {
	_, err := r.db.Exec(
		`INSERT INTO uploads
		 (id, case_id, filename, size_bytes, storage_key, status,
		  total_rows, parsed_rows, skipped_rows, bad_date_rows,
		  bad_amount_rows, bad_type_rows, zero_amount_rows, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.CaseID, u.Filename, u.SizeBytes, u.StorageKey, u.Status,
		u.Stats.TotalRows, u.Stats.ParsedRows, u.Stats.SkippedRows,
		u.Stats.BadDateRows, u.Stats.BadAmountRows, u.Stats.BadTypeRows,
		u.Stats.ZeroAmountRows, u.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// GetByCase returns a case's uploads, newest first.
func (r *Repository) GetByCase(caseID string) ([]Upload, error) {
	rows, err := r.db.Query(
		`SELECT id, case_id, filename, size_bytes, storage_key, status,
		        total_rows, parsed_rows, skipped_rows, bad_date_rows,
		        bad_amount_rows, bad_type_rows, zero_amount_rows, created_at
		 FROM uploads WHERE case_id = ? ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		var createdAt int64
		err := rows.Scan(
			&u.ID, &u.CaseID, &u.Filename, &u.SizeBytes, &u.StorageKey,
			&u.Status, &u.Stats.TotalRows, &u.Stats.ParsedRows,
			&u.Stats.SkippedRows, &u.Stats.BadDateRows, &u.Stats.BadAmountRows,
			&u.Stats.BadTypeRows, &u.Stats.ZeroAmountRows, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

// Get returns one upload by ID, or nil when it does not exist.
func (r *Repository) Get(id string) (*Upload, error) {
	row := r.db.QueryRow(
		`SELECT id, case_id, filename, size_bytes, storage_key, status,
		        total_rows, parsed_rows, skipped_rows, bad_date_rows,
		        bad_amount_rows, bad_type_rows, zero_amount_rows, created_at
		 FROM uploads WHERE id = ?`, id)

	var u Upload
	var createdAt int64
	err := row.Scan(
		&u.ID, &u.CaseID, &u.Filename, &u.SizeBytes, &u.StorageKey,
		&u.Status, &u.Stats.TotalRows, &u.Stats.ParsedRows,
		&u.Stats.SkippedRows, &u.Stats.BadDateRows, &u.Stats.BadAmountRows,
		&u.Stats.BadTypeRows, &u.Stats.ZeroAmountRows, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload %s: %w", id, err)
	}

	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// MarkDeleted flags an upload whose blob and ledger rows were removed.
func (r *Repository) MarkDeleted(id string) error {
	_, err := r.db.Exec("UPDATE uploads SET status = ? WHERE id = ?", StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("failed to mark upload %s deleted: %w", id, err)
	}
	return nil
}
