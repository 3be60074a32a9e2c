// Package cleanup implements the retention job: archived cases past the
// retention window lose their uploaded files and ledger rows, and expired
// analysis snapshots are purged.
package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// Job purges data past its retention window. Registered with the scheduler;
// also runnable on demand.
type Job struct {
	cases         *cases.Repository
	uploads       *uploads.Service
	cache         *analytics.CacheRepository
	retentionDays int
	log           zerolog.Logger
}

// NewJob creates the retention cleanup job.
func NewJob(caseRepo *cases.Repository, uploadSvc *uploads.Service, cache *analytics.CacheRepository, retentionDays int, log zerolog.Logger) *Job {
	return &Job{
		cases:         caseRepo,
		uploads:       uploadSvc,
		cache:         cache,
		retentionDays: retentionDays,
		log:           log.With().Str("component", "cleanup").Logger(),
	}
}

// Name implements scheduler.Job
func (j *Job) Name() string {
	return "retention-cleanup"
}

// Run implements scheduler.Job. Failures on individual uploads are logged
// and skipped so one bad record cannot stall the whole sweep.
func (j *Job) Run() error {
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	ids, err := j.cases.ListArchivedBefore(cutoff)
	if err != nil {
		return err
	}

	purgedUploads := 0
	for _, caseID := range ids {
		ups, err := j.uploads.ListByCase(caseID)
		if err != nil {
			j.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to list uploads for cleanup")
			continue
		}
		for _, u := range ups {
			if u.Status == uploads.StatusDeleted {
				continue
			}
			if err := j.uploads.Delete(ctx, u.ID); err != nil {
				j.log.Error().Err(err).Str("upload_id", u.ID).Msg("Failed to purge upload")
				continue
			}
			purgedUploads++
		}
	}

	var purgedSnapshots int64
	if j.cache != nil {
		purgedSnapshots, err = j.cache.PurgeExpired()
		if err != nil {
			j.log.Error().Err(err).Msg("Failed to purge expired snapshots")
		}
	}

	if purgedUploads > 0 || purgedSnapshots > 0 {
		j.log.Info().
			Int("cases", len(ids)).
			Int("uploads", purgedUploads).
			Int64("snapshots", purgedSnapshots).
			Msg("Retention cleanup completed")
	}
	return nil
}
