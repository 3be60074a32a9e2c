package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

func setupCacheDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE snapshots (
			scope       TEXT NOT NULL,
			key         TEXT NOT NULL,
			data        BLOB NOT NULL,
			created_at  INTEGER NOT NULL,
			ttl_seconds INTEGER NOT NULL,
			PRIMARY KEY (scope, key)
		)
	`)
	require.NoError(t, err)
	return db
}

func setupLedgerDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE transactions (
			id                    TEXT PRIMARY KEY,
			case_id               TEXT NOT NULL,
			upload_id             TEXT NOT NULL,
			date                  INTEGER NOT NULL,
			amount                TEXT NOT NULL,
			type                  TEXT NOT NULL,
			counterparty          TEXT NOT NULL,
			counterparty_document TEXT NOT NULL DEFAULT '',
			holder_document       TEXT NOT NULL DEFAULT '',
			description           TEXT NOT NULL DEFAULT '',
			method                TEXT NOT NULL DEFAULT '',
			bank                  TEXT NOT NULL DEFAULT '',
			agency                TEXT NOT NULL DEFAULT '',
			account               TEXT NOT NULL DEFAULT '',
			channel               TEXT NOT NULL DEFAULT '',
			country               TEXT NOT NULL DEFAULT '',
			currency              TEXT NOT NULL DEFAULT ''
		)
	`)
	require.NoError(t, err)
	return db
}

func seedLedger(t *testing.T, repo *ledger.Repository, caseID string, n int) {
	var txs []domain.Transaction
	for i := 0; i < n; i++ {
		txs = append(txs, domain.Transaction{
			ID:           uuid.NewString(),
			CaseID:       caseID,
			UploadID:     "u",
			Date:         time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Amount:       decimal.NewFromInt(100),
			Type:         domain.TypeCredit,
			Counterparty: "A",
			Method:       "PIX",
		})
	}
	require.NoError(t, repo.InsertBatch(txs))
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewCacheRepository(setupCacheDB(t), zerolog.Nop())

	in := Metrics{Count: 2, TotalCredits: decimal.RequireFromString("10.50")}
	require.NoError(t, repo.Put("metrics", "case|all", &in, time.Minute))

	var out Metrics
	hit, err := repo.Get("metrics", "case|all", &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.TotalCredits.Equal(in.TotalCredits))

	t.Run("miss on unknown key", func(t *testing.T) {
		hit, err := repo.Get("metrics", "other", &out)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("invalidate by prefix", func(t *testing.T) {
		require.NoError(t, repo.InvalidateScope("metrics", "case|"))
		hit, err := repo.Get("metrics", "case|all", &out)
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestCacheExpiry(t *testing.T) {
	db := setupCacheDB(t)
	repo := NewCacheRepository(db, zerolog.Nop())

	require.NoError(t, repo.Put("metrics", "k", &Metrics{Count: 1}, time.Second))

	// age the entry past its TTL
	_, err := db.Exec("UPDATE snapshots SET created_at = created_at - 120")
	require.NoError(t, err)

	var out Metrics
	hit, err := repo.Get("metrics", "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	purged, err := repo.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestServiceCaching(t *testing.T) {
	ledgerRepo := ledger.NewRepository(setupLedgerDB(t), zerolog.Nop())
	cache := NewCacheRepository(setupCacheDB(t), zerolog.Nop())
	svc := NewService(ledgerRepo, cache, zerolog.Nop())

	seedLedger(t, ledgerRepo, "case-1", 3)

	m1, err := svc.CaseMetrics("case-1", domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, m1.Count)

	// new rows are invisible until invalidation because the snapshot serves
	seedLedger(t, ledgerRepo, "case-1", 1)
	m2, err := svc.CaseMetrics("case-1", domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, m2.Count)

	svc.Invalidate("case-1")
	m3, err := svc.CaseMetrics("case-1", domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, m3.Count)
}

func TestSnapshotKeyDistinguishesFilters(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	min := decimal.NewFromInt(100)

	base := snapshotKey("c", domain.TransactionFilter{})
	withFrom := snapshotKey("c", domain.TransactionFilter{From: &from})
	withMin := snapshotKey("c", domain.TransactionFilter{MinAmount: &min})

	assert.Equal(t, "c|all", base)
	assert.NotEqual(t, base, withFrom)
	assert.NotEqual(t, withFrom, withMin)
}
