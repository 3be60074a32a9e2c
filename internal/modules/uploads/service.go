package uploads

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/ingest"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

// BlobStore archives the raw uploaded files. Implemented by the S3 object
// store client; a nil store means archival is not configured and ingestion
// proceeds with only the normalized ledger rows.
type BlobStore interface {
	PutUpload(ctx context.Context, caseID, uploadID, filename string, data []byte) (string, error)
	DeleteUpload(ctx context.Context, key string) error
}

// MetricsInvalidator drops cached analytics snapshots for a case after its
// ledger changes. Implemented by the analytics service.
type MetricsInvalidator interface {
	Invalidate(caseID string)
}

// IngestResult is what the handler returns to the client after an upload:
// the stored metadata plus the advisory validation outcome.
type IngestResult struct {
	Upload     *Upload                 `json:"upload"`
	Validation ingest.ValidationResult `json:"validation"`
}

// Service orchestrates upload ingestion: parse, validate, assign identity,
// persist ledger rows, archive the original file.
type Service struct {
	repo        *Repository
	caseRepo    *cases.Repository
	ledger      *ledger.Repository
	parser      *ingest.Parser
	store       BlobStore
	invalidator MetricsInvalidator
	log         zerolog.Logger
}

// NewService creates a new upload service. store may be nil when object
// storage is not configured.
func NewService(repo *Repository, caseRepo *cases.Repository, ledgerRepo *ledger.Repository, parser *ingest.Parser, store BlobStore, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		caseRepo: caseRepo,
		ledger:   ledgerRepo,
		parser:   parser,
		store:    store,
		log:      log.With().Str("service", "uploads").Logger(),
	}
}

// SetInvalidator wires the analytics snapshot invalidator. Set during DI
// wiring; left nil in tests that do not care about caching.
func (s *Service) SetInvalidator(inv MetricsInvalidator) {
	s.invalidator = inv
}

// Ingest runs the full pipeline for one uploaded file. File-level parse
// failures (unsupported format, missing required column, empty sheet) return
// an error and leave no trace in the ledger. Row-level failures are absorbed
// into ParseStats and surfaced as validation warnings.
//
// The ledger rows and the upload record are written before this returns, so
// a success response always refers to durable data. Note that two
// simultaneous uploads of the same file to the same case will both land;
// there is no cross-upload deduplication.
func (s *Service) Ingest(ctx context.Context, caseID, filename string, content []byte) (*IngestResult, error) {
	c, err := s.caseRepo.Get(caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("case %s not found", caseID)
	}
	if c.Status != cases.StatusOpen {
		return nil, fmt.Errorf("case %s is archived", caseID)
	}

	result, err := s.parser.Parse(filename, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	uploadID := uuid.NewString()

	// Identity is assigned here, not in the parser, so parsing stays
	// deterministic and repeatable.
	for i := range result.Transactions {
		result.Transactions[i].ID = uuid.NewString()
		result.Transactions[i].CaseID = caseID
		result.Transactions[i].UploadID = uploadID
	}

	if err := s.ledger.InsertBatch(result.Transactions); err != nil {
		return nil, fmt.Errorf("failed to persist transactions: %w", err)
	}

	storageKey := ""
	if s.store != nil {
		key, err := s.store.PutUpload(ctx, caseID, uploadID, filename, content)
		if err != nil {
			// The normalized ledger is the source of truth; losing the
			// archived original is reported but does not fail the upload.
			s.log.Warn().Err(err).Str("upload_id", uploadID).Msg("Failed to archive original file")
		} else {
			storageKey = key
		}
	}

	upload := &Upload{
		ID:         uploadID,
		CaseID:     caseID,
		Filename:   filename,
		SizeBytes:  int64(len(content)),
		StorageKey: storageKey,
		Status:     StatusIngested,
		Stats:      result.Stats,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(upload); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(caseID)
	}

	validation := ingest.Validate(result.Transactions, &result.Stats)

	s.log.Info().
		Str("case_id", caseID).
		Str("upload_id", uploadID).
		Str("filename", filename).
		Int("parsed", result.Stats.ParsedRows).
		Int("total", result.Stats.TotalRows).
		Bool("valid", validation.Valid).
		Msg("Upload ingested")

	return &IngestResult{Upload: upload, Validation: validation}, nil
}

// ListByCase returns a case's upload records, newest first.
func (s *Service) ListByCase(caseID string) ([]Upload, error) {
	return s.repo.GetByCase(caseID)
}

// Delete backs an upload out: its ledger rows, its archived blob and its
// metadata status. This is the only removal path for ledger rows.
func (s *Service) Delete(ctx context.Context, uploadID string) error {
	upload, err := s.repo.Get(uploadID)
	if err != nil {
		return err
	}
	if upload == nil {
		return fmt.Errorf("upload %s not found", uploadID)
	}

	removed, err := s.ledger.DeleteByUpload(uploadID)
	if err != nil {
		return err
	}

	if s.store != nil && upload.StorageKey != "" {
		if err := s.store.DeleteUpload(ctx, upload.StorageKey); err != nil {
			s.log.Warn().Err(err).Str("upload_id", uploadID).Msg("Failed to delete archived file")
		}
	}

	if err := s.repo.MarkDeleted(uploadID); err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(upload.CaseID)
	}

	s.log.Info().Str("upload_id", uploadID).Int64("rows_removed", removed).Msg("Upload deleted")
	return nil
}
