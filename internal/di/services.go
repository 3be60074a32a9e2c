package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/clients/groq"
	"github.com/opencoaf/caseledger/internal/clients/objstore"
	"github.com/opencoaf/caseledger/internal/config"
	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/ingest"
	"github.com/opencoaf/caseledger/internal/modules/redflags"
	"github.com/opencoaf/caseledger/internal/modules/reports"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// InitializeServices creates external clients and all services. Requires
// InitializeRepositories to have run.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Settings stored in the config DB override environment variables
	// (GROQ credentials, retention). Merge them before clients are built.
	if err := cfg.UpdateFromSettings(container.SettingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to update config from settings DB, using environment variables")
	}

	// GROQ text-generation client. Always constructed; an empty API key
	// leaves it unconfigured and reports ship without a narrative.
	container.GroqClient = groq.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, log)

	// S3-compatible object storage for raw upload blobs. Optional.
	if cfg.Storage.Configured() {
		store, err := objstore.NewClient(context.Background(), cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage client: %w", err)
		}
		container.ObjectStore = store
	} else {
		log.Warn().Msg("Object storage not configured - uploaded files will not be archived")
	}

	parser := ingest.NewParser(log)
	detector := redflags.NewDetector(log)

	// A nil *objstore.Client must stay a nil interface for the upload
	// service's "is archival configured" check.
	var blobStore uploads.BlobStore
	if container.ObjectStore != nil {
		blobStore = container.ObjectStore
	}

	container.UploadService = uploads.NewService(
		container.UploadRepo,
		container.CaseRepo,
		container.LedgerRepo,
		parser,
		blobStore,
		log,
	)

	container.AnalyticsService = analytics.NewService(container.LedgerRepo, container.CacheRepo, log)
	container.UploadService.SetInvalidator(container.AnalyticsService)

	// The settings repository doubles as the detector's threshold source,
	// so parameter edits take effect on the next run without a restart.
	container.RedFlagService = redflags.NewService(
		container.AnalysisRepo,
		container.LedgerRepo,
		detector,
		container.SettingsRepo,
		log,
	)

	container.ReportService = reports.NewService(
		container.CaseRepo,
		container.UploadService,
		container.AnalyticsService,
		container.RedFlagService,
		container.LedgerRepo,
		container.GroqClient,
		log,
	)

	log.Info().
		Bool("groq_configured", container.GroqClient.Configured()).
		Bool("storage_configured", container.ObjectStore != nil).
		Msg("All services initialized")

	return nil
}
