// Package ledger provides the repository for the per-case append-only
// transaction ledger. Transactions are immutable after insert; the only
// removal path is deleting a whole upload, which exists so a mistaken file
// can be backed out before analysis.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/database"
	"github.com/opencoaf/caseledger/internal/domain"
)

// Repository handles transaction ledger database operations
type Repository struct {
	db  *sql.DB // ledger.db - transactions table
	log zerolog.Logger
}

// NewRepository creates a new ledger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

const insertTransactionSQL = `INSERT INTO transactions
	(id, case_id, upload_id, date, amount, type, counterparty,
	 counterparty_document, holder_document, description, method,
	 bank, agency, account, channel, country, currency)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertBatch persists a parsed upload's transactions in a single database
// transaction, so an upload is either fully in the ledger or not at all.
func (r *Repository) InsertBatch(transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertTransactionSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range transactions {
			_, err := stmt.Exec(
				t.ID, t.CaseID, t.UploadID, t.Date.Unix(),
				t.Amount.String(), string(t.Type), t.Counterparty,
				t.CounterpartyDocument, t.HolderDocument, t.Description,
				t.Method, t.Bank, t.Agency, t.Account, t.Channel,
				t.Country, t.Currency,
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// GetByCase returns the case's transactions matching the filter, ordered by
// date then ID so repeated queries return identical sequences.
func (r *Repository) GetByCase(caseID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT id, case_id, upload_id, date, amount, type, counterparty,
		counterparty_document, holder_document, description, method,
		bank, agency, account, channel, country, currency
		FROM transactions WHERE case_id = ?`
	args := []interface{}{caseID}

	if filter.From != nil {
		query += " AND date >= ?"
		args = append(args, filter.From.Unix())
	}
	if filter.To != nil {
		query += " AND date <= ?"
		args = append(args, filter.To.Unix())
	}
	if filter.Method != "" {
		query += " AND method = ? COLLATE NOCASE"
		args = append(args, filter.Method)
	}
	if filter.Counterparty != "" {
		query += " AND counterparty LIKE ? COLLATE NOCASE"
		args = append(args, "%"+filter.Counterparty+"%")
	}

	query += " ORDER BY date ASC, id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		// MinAmount is applied in Go: amounts are stored as exact decimal
		// strings, and SQLite would compare them lexicographically
		if filter.MinAmount != nil && tx.Amount.LessThan(*filter.MinAmount) {
			continue
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CountByCase returns the number of ledger rows for a case.
func (r *Repository) CountByCase(caseID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions WHERE case_id = ?", caseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteByUpload removes all transactions that came from one upload.
// Returns the number of rows removed.
func (r *Repository) DeleteByUpload(uploadID string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM transactions WHERE upload_id = ?", uploadID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions for upload %s: %w", uploadID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	r.log.Info().Str("upload_id", uploadID).Int64("rows", affected).Msg("Deleted upload transactions")
	return affected, nil
}

// rowScanner lets scanTransaction work for both Query and QueryRow results.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var t domain.Transaction
	var dateUnix int64
	var amountStr, typeStr string

	err := row.Scan(
		&t.ID, &t.CaseID, &t.UploadID, &dateUnix, &amountStr, &typeStr,
		&t.Counterparty, &t.CounterpartyDocument, &t.HolderDocument,
		&t.Description, &t.Method, &t.Bank, &t.Agency, &t.Account,
		&t.Channel, &t.Country, &t.Currency,
	)
	if err != nil {
		return t, err
	}

	t.Date = time.Unix(dateUnix, 0).UTC()
	t.Type = domain.TransactionType(typeStr)

	t.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return t, fmt.Errorf("corrupt amount %q for transaction %s: %w", amountStr, t.ID, err)
	}

	return t, nil
}
