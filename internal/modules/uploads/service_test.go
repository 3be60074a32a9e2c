package uploads

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/ingest"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

func setupCasesDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE cases (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			unit        TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'open',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE TABLE uploads (
			id               TEXT PRIMARY KEY,
			case_id          TEXT NOT NULL,
			filename         TEXT NOT NULL,
			size_bytes       INTEGER NOT NULL DEFAULT 0,
			storage_key      TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			total_rows       INTEGER NOT NULL DEFAULT 0,
			parsed_rows      INTEGER NOT NULL DEFAULT 0,
			skipped_rows     INTEGER NOT NULL DEFAULT 0,
			bad_date_rows    INTEGER NOT NULL DEFAULT 0,
			bad_amount_rows  INTEGER NOT NULL DEFAULT 0,
			bad_type_rows    INTEGER NOT NULL DEFAULT 0,
			zero_amount_rows INTEGER NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL
		);
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
			type                  TEXT NOT NULL CHECK (type IN ('credit', 'debit')),
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

// fakeStore records puts and deletes in memory.
type fakeStore struct {
	objects map[string][]byte
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PutUpload(_ context.Context, caseID, uploadID, filename string, data []byte) (string, error) {
	if f.failPut {
		return "", assert.AnError
	}
	key := "cases/" + caseID + "/uploads/" + uploadID + "/" + filename
	f.objects[key] = data
	return key, nil
}

func (f *fakeStore) DeleteUpload(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func setupService(t *testing.T, store BlobStore) (*Service, *ledger.Repository, *cases.Repository) {
	casesDB := setupCasesDB(t)
	ledgerDB := setupLedgerDB(t)

	caseRepo := cases.NewRepository(casesDB, zerolog.Nop())
	uploadRepo := NewRepository(casesDB, zerolog.Nop())
	ledgerRepo := ledger.NewRepository(ledgerDB, zerolog.Nop())
	parser := ingest.NewParser(zerolog.Nop())

	svc := NewService(uploadRepo, caseRepo, ledgerRepo, parser, store, zerolog.Nop())
	return svc, ledgerRepo, caseRepo
}

func TestIngest(t *testing.T) {
	store := newFakeStore()
	svc, ledgerRepo, caseRepo := setupService(t, store)

	c, err := caseRepo.Create("Operação Teste", "", "DEIC")
	require.NoError(t, err)

	content := []byte("15/01/2024|credito|1500,00|João Silva|12345678900|Pagamento|PIX\n" +
		"16/01/2024|debito|250,50|Mercado Central|98765432100|Compra|TED\n" +
		"17/01/2024|credito|0,00|Zerado|11111111111|Ignorar|PIX\n")

	res, err := svc.Ingest(context.Background(), c.ID, "extrato.txt", content)
	require.NoError(t, err)
	require.NotNil(t, res.Upload)

	assert.Equal(t, StatusIngested, res.Upload.Status)
	assert.Equal(t, 3, res.Upload.Stats.TotalRows)
	assert.Equal(t, 2, res.Upload.Stats.ParsedRows)
	assert.Equal(t, 1, res.Upload.Stats.ZeroAmountRows)
	assert.NotEmpty(t, res.Upload.StorageKey)
	assert.Contains(t, store.objects, res.Upload.StorageKey)

	// zero-amount drop makes validation advisory-invalid
	assert.False(t, res.Validation.Valid)

	txs, err := ledgerRepo.GetByCase(c.ID, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, res.Upload.ID, tx.UploadID)
		assert.Equal(t, c.ID, tx.CaseID)
	}
}

func TestIngestRejectsFileLevelFailures(t *testing.T) {
	svc, ledgerRepo, caseRepo := setupService(t, nil)

	c, err := caseRepo.Create("Case", "", "")
	require.NoError(t, err)

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.Ingest(context.Background(), c.ID, "extrato.pdf", []byte("data"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
	})

	t.Run("missing required column", func(t *testing.T) {
		_, err := svc.Ingest(context.Background(), c.ID, "extrato.csv", []byte("nome,valor\na,1\n"))
		require.Error(t, err)
		assert.True(t, ingest.IsMissingColumn(err))
	})

	// nothing reached the ledger
	count, err := ledgerRepo.CountByCase(c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestRejectsArchivedCase(t *testing.T) {
	svc, _, caseRepo := setupService(t, nil)

	c, err := caseRepo.Create("Old", "", "")
	require.NoError(t, err)
	require.NoError(t, caseRepo.SetStatus(c.ID, cases.StatusArchived))

	_, err = svc.Ingest(context.Background(), c.ID, "extrato.txt", []byte("15/01/2024|C|100,00|A\n"))
	assert.Error(t, err)
}

func TestIngestSurvivesStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failPut = true
	svc, ledgerRepo, caseRepo := setupService(t, store)

	c, err := caseRepo.Create("Case", "", "")
	require.NoError(t, err)

	res, err := svc.Ingest(context.Background(), c.ID, "extrato.txt",
		[]byte("15/01/2024|C|100,00|A|123|x|PIX\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Upload.StorageKey)

	count, err := ledgerRepo.CountByCase(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteUpload(t *testing.T) {
	store := newFakeStore()
	svc, ledgerRepo, caseRepo := setupService(t, store)

	c, err := caseRepo.Create("Case", "", "")
	require.NoError(t, err)

	res, err := svc.Ingest(context.Background(), c.ID, "extrato.txt",
		[]byte("15/01/2024|C|100,00|A|123|x|PIX\n16/01/2024|D|50,00|B|456|y|TED\n"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), res.Upload.ID))

	count, err := ledgerRepo.CountByCase(c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, store.objects)

	got, err := svc.repo.Get(res.Upload.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, got.Status)

	t.Run("unknown upload errors", func(t *testing.T) {
		assert.Error(t, svc.Delete(context.Background(), "missing"))
	})
}
