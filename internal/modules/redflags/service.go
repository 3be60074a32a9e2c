package redflags

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

// ThresholdSource supplies the detector parameter set, merging configured
// overrides onto defaults. Implemented by the settings repository.
type ThresholdSource interface {
	Thresholds() domain.Thresholds
}

// Service runs detections over case ledgers and persists the results.
type Service struct {
	repo       *Repository
	ledger     *ledger.Repository
	detector   *Detector
	thresholds ThresholdSource
	state      *runState
	log        zerolog.Logger
}

// NewService creates a new red-flag analysis service
func NewService(repo *Repository, ledgerRepo *ledger.Repository, detector *Detector, thresholds ThresholdSource, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		ledger:     ledgerRepo,
		detector:   detector,
		thresholds: thresholds,
		state:      newRunState(),
		log:        log.With().Str("service", "redflags").Logger(),
	}
}

// AnalysisResult is a completed run with its alerts.
type AnalysisResult struct {
	Run    *Run                  `json:"run"`
	Alerts []domain.RedFlagAlert `json:"alerts"`
}

// Run executes a full detection run for a case. At most one run per case is
// active at a time; a concurrent request gets ErrRunInProgress. The filter
// restricts which ledger rows the detector sees (analysis window).
func (s *Service) Run(caseID string, filter domain.TransactionFilter) (*AnalysisResult, error) {
	if err := s.state.begin(caseID); err != nil {
		return nil, err
	}
	defer s.state.end(caseID)

	thresholds := s.thresholds.Thresholds()

	run := &Run{
		ID:         uuid.NewString(),
		CaseID:     caseID,
		Status:     RunStatusRunning,
		Thresholds: thresholds,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateRun(run); err != nil {
		return nil, err
	}

	transactions, err := s.ledger.GetByCase(caseID, filter)
	if err != nil {
		s.failRun(run.ID, err)
		return nil, err
	}

	alerts := s.detector.Detect(transactions, thresholds)

	now := time.Now().UTC()
	for i := range alerts {
		alerts[i].ID = uuid.NewString()
		alerts[i].CaseID = caseID
		alerts[i].RunID = run.ID
		alerts[i].CreatedAt = now
	}

	if err := s.repo.CompleteRun(run.ID, alerts); err != nil {
		s.failRun(run.ID, err)
		return nil, err
	}

	run.Status = RunStatusCompleted
	run.AlertCount = len(alerts)
	run.FinishedAt = &now

	s.log.Info().
		Str("case_id", caseID).
		Str("run_id", run.ID).
		Int("transactions", len(transactions)).
		Int("alerts", len(alerts)).
		Msg("Analysis run completed")

	return &AnalysisResult{Run: run, Alerts: alerts}, nil
}

// Latest returns the newest completed run and its alerts, or nil when the
// case has never been analyzed.
func (s *Service) Latest(caseID string) (*AnalysisResult, error) {
	run, err := s.repo.LatestCompletedRun(caseID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	alerts, err := s.repo.AlertsByRun(run.ID)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Run: run, Alerts: alerts}, nil
}

func (s *Service) failRun(runID string, cause error) {
	if err := s.repo.FailRun(runID, cause); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("Failed to record run failure")
	}
}
