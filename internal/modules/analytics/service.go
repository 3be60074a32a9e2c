package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

const (
	scopeMetrics = "metrics"
	snapshotTTL  = 15 * time.Minute
)

// Service computes case metrics on demand, caching results per
// (case, filter) in the snapshot store.
type Service struct {
	ledger *ledger.Repository
	cache  *CacheRepository
	log    zerolog.Logger
}

// NewService creates a new analytics service. cache may be nil to disable
// snapshot caching (tests do this).
func NewService(ledgerRepo *ledger.Repository, cache *CacheRepository, log zerolog.Logger) *Service {
	return &Service{
		ledger: ledgerRepo,
		cache:  cache,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

// CaseMetrics returns the aggregated metrics for a case under the given
// filter, serving from the snapshot cache when a fresh entry exists.
func (s *Service) CaseMetrics(caseID string, filter domain.TransactionFilter) (*Metrics, error) {
	key := snapshotKey(caseID, filter)

	if s.cache != nil {
		var cached Metrics
		hit, err := s.cache.Get(scopeMetrics, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("case_id", caseID).Msg("Snapshot cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	transactions, err := s.ledger.GetByCase(caseID, filter)
	if err != nil {
		return nil, err
	}

	metrics := Aggregate(transactions)

	if s.cache != nil {
		if err := s.cache.Put(scopeMetrics, key, &metrics, snapshotTTL); err != nil {
			s.log.Warn().Err(err).Str("case_id", caseID).Msg("Snapshot cache write failed")
		}
	}

	return &metrics, nil
}

// Invalidate drops every cached snapshot for a case. Called after uploads
// land or are deleted.
func (s *Service) Invalidate(caseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateScope(scopeMetrics, caseID+"|"); err != nil {
		s.log.Warn().Err(err).Str("case_id", caseID).Msg("Snapshot invalidation failed")
	}
}

// snapshotKey builds a stable cache key from the case ID and the filter.
// The filter portion is hashed so the key stays short regardless of filter
// contents.
func snapshotKey(caseID string, filter domain.TransactionFilter) string {
	if filter.IsZero() {
		return caseID + "|all"
	}

	var from, to, min string
	if filter.From != nil {
		from = filter.From.Format(time.RFC3339)
	}
	if filter.To != nil {
		to = filter.To.Format(time.RFC3339)
	}
	if filter.MinAmount != nil {
		min = filter.MinAmount.String()
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s", from, to, min, filter.Method, filter.Counterparty)))
	return caseID + "|" + hex.EncodeToString(sum[:8])
}
