package redflags

import (
	"errors"
	"sync"
)

// ErrRunInProgress is returned when a detection run is requested for a case
// that already has one running.
var ErrRunInProgress = errors.New("analysis run already in progress for this case")

// runState serializes detection runs per case. A second run request while
// one is active is rejected, not queued: the caller retries once the first
// finishes and sees its superseding results anyway.
type runState struct {
	mu      sync.Mutex
	running map[string]bool
}

func newRunState() *runState {
	return &runState{running: make(map[string]bool)}
}

// begin marks the case as running. Returns ErrRunInProgress when it already is.
func (s *runState) begin(caseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[caseID] {
		return ErrRunInProgress
	}
	s.running[caseID] = true
	return nil
}

// end releases the case. Safe to call for a case that is not running.
func (s *runState) end(caseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, caseID)
}
