package di

import (
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/config"
	"github.com/opencoaf/caseledger/internal/modules/cleanup"
)

// RegisterJobs creates the background job instances. Requires
// InitializeServices to have run. The jobs are registered with the
// scheduler in main.go.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.CleanupJob = cleanup.NewJob(
		container.CaseRepo,
		container.UploadService,
		container.CacheRepo,
		cfg.RetentionDays,
		log,
	)

	log.Info().Int("retention_days", cfg.RetentionDays).Msg("Background jobs registered")
}
