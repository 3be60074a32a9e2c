// Package cases provides case management: an investigation case owns its
// uploads, its ledger, its analysis runs and its alerts.
package cases

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status values for a case.
const (
	StatusOpen     = "open"
	StatusArchived = "archived"
)

// Case is one investigation.
type Case struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit,omitempty"` // investigating unit / precinct
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository handles case database operations
type Repository struct {
	db  *sql.DB // cases.db - cases table
	log zerolog.Logger
}

// NewRepository creates a new case repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cases").Logger(),
	}
}

// Create inserts a new open case and returns it with its generated ID.
func (r *Repository) Create(title, description, unit string) (*Case, error) {
	now := time.Now().UTC()
	c := &Case{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Unit:        unit,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.Exec(
		`INSERT INTO cases (id, title, description, unit, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.Unit, c.Status, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	r.log.Info().Str("case_id", c.ID).Str("title", title).Msg("Case created")
	return c, nil
}

// Get returns a case by ID, or nil when it does not exist.
func (r *Repository) Get(id string) (*Case, error) {
	row := r.db.QueryRow(
		`SELECT id, title, description, unit, status, created_at, updated_at
		 FROM cases WHERE id = ?`, id)

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s: %w", id, err)
	}
	return c, nil
}

// List returns cases, optionally filtered by status, newest first.
func (r *Repository) List(status string) ([]Case, error) {
	query := `SELECT id, title, description, unit, status, created_at, updated_at FROM cases`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

// SetStatus transitions a case between open and archived.
func (r *Repository) SetStatus(id, status string) error {
	if status != StatusOpen && status != StatusArchived {
		return fmt.Errorf("invalid case status %q", status)
	}

	result, err := r.db.Exec(
		"UPDATE cases SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update case %s status: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %s not found", id)
	}

	return nil
}

// ListArchivedBefore returns IDs of archived cases last updated before the
// cutoff. Used by the retention cleanup job.
func (r *Repository) ListArchivedBefore(cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(
		"SELECT id FROM cases WHERE status = ? AND updated_at < ?",
		StatusArchived, cutoff.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived cases: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan case id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row rowScanner) (*Case, error) {
	var c Case
	var createdAt, updatedAt int64

	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Unit, &c.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &c, nil
}
