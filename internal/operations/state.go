package operations

import (
	"time"

	"conflictpanel/internal/dataprocessing"
	"conflictpanel/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunStats collects the counters reported by each step
type RunStats struct {
	Episodes dataprocessing.EpisodeStats `json:"episodes"`
	Revenue  dataprocessing.RevenueStats `json:"revenue"`
	Market   dataprocessing.MarketStats  `json:"market"`
	News     dataprocessing.NewsStats    `json:"news"`
	Matches  dataprocessing.MatchStats   `json:"matches"`
}

// RunState is the state of one pipeline run, including the tables handed
// from step to step. It is owned by the pipeline goroutine.
type RunState struct {
	RunID     string                `json:"run_id"`
	Status    RunStatus             `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Steps     map[string]*StepState `json:"steps"`
	Error     error                 `json:"-"`

	Episodes      []domain.ConflictEpisode   `json:"-"`
	Qualified     domain.CompanySet          `json:"-"`
	Market        *dataprocessing.MarketData `json:"-"`
	News          domain.NewsTable           `json:"-"`
	Matches       []domain.MatchedEpisode    `json:"-"`
	ConflictPanel []domain.ConflictPanelRow  `json:"-"`
	NewsPanel     []domain.NewsPanelRow      `json:"-"`
	Outputs       map[string]int             `json:"outputs,omitempty"`

	Stats RunStats `json:"stats"`
}

// NewRunState creates a new run state
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID:     runID,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err
}

// Step returns the state of a step, creating it on first use
func (s *RunState) Step(id, name string) *StepState {
	st, ok := s.Steps[id]
	if !ok {
		st = NewStepState(id, name)
		s.Steps[id] = st
	}
	return st
}

// IsStepCompleted reports whether step id finished successfully
func (s *RunState) IsStepCompleted(id string) bool {
	st, ok := s.Steps[id]
	return ok && st.Status == StepStatusCompleted
}

// Duration returns the run's elapsed time
func (s *RunState) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
