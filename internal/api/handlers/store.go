package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pv-battery-sim/internal/dispatch"
	"pv-battery-sim/internal/model"
)

// StoredRun is a finished simulation kept for ledger and report downloads.
type StoredRun struct {
	ID            string
	CreatedAt     time.Time
	Result        *dispatch.Result
	System        *model.SystemParams
	FullThreshold float64
}

// RunStore keeps the most recent runs in memory, dropping the oldest once
// max is reached.
type RunStore struct {
	mu    sync.RWMutex
	max   int
	runs  map[string]*StoredRun
	order []string
}

func NewRunStore(max int) *RunStore {
	if max <= 0 {
		max = 100
	}
	return &RunStore{max: max, runs: make(map[string]*StoredRun)}
}

// Put stores run under a new ID and returns it.
func (s *RunStore) Put(run *StoredRun) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = uuid.NewString()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	for len(s.order) > s.max {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return run.ID
}

func (s *RunStore) Get(id string) (*StoredRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
