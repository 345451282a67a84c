package operations

import (
	"fmt"
	"os"
	"time"

	"conflictpanel/internal/config"
	"conflictpanel/internal/exporter"
)

// RunManifest is the persisted record of one pipeline run
type RunManifest struct {
	ID         string     `json:"id"`
	RunID      string     `json:"run_id"`
	AppVersion string     `json:"app_version"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   string     `json:"duration,omitempty"`

	Inputs  []InputFile    `json:"inputs"`
	Outputs map[string]int `json:"outputs,omitempty"`
	Stats   *RunStats      `json:"stats,omitempty"`

	CompletedStages []StageExecution `json:"completed_stages"`

	Status string `json:"status"` // "running", "completed", "failed"
	Error  string `json:"error,omitempty"`
}

// InputFile describes one input as it was found at the start of the run
type InputFile struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  string                 `json:"duration"`
	Status    string                 `json:"status"` // "running", "completed", "failed"
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest creates a manifest for runID and records the inputs
func NewRunManifest(runID string, inputs []string) *RunManifest {
	m := &RunManifest{
		ID:              fmt.Sprintf("manifest-%s", runID),
		RunID:           runID,
		AppVersion:      config.AppVersion,
		StartTime:       time.Now(),
		Inputs:          make([]InputFile, 0, len(inputs)),
		CompletedStages: []StageExecution{},
		Status:          "running",
	}
	for _, path := range inputs {
		in := InputFile{Path: path}
		if info, err := os.Stat(path); err == nil {
			in.Size = info.Size()
			in.ModTime = info.ModTime().UTC()
		}
		m.Inputs = append(m.Inputs, in)
	}
	return m
}

// RecordStageStart records the start of a stage execution
func (m *RunManifest) RecordStageStart(stageID, stageName string) {
	m.CompletedStages = append(m.CompletedStages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    "running",
	})
}

// RecordStageCompletion records the completion of a stage
func (m *RunManifest) RecordStageCompletion(stageID string, metadata map[string]interface{}) {
	if st := m.stage(stageID); st != nil {
		st.EndTime = time.Now()
		st.Duration = st.EndTime.Sub(st.StartTime).String()
		st.Status = "completed"
		st.Metadata = metadata
	}
}

// RecordStageFailure records a stage failure and fails the run
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	if st := m.stage(stageID); st != nil {
		st.EndTime = time.Now()
		st.Duration = st.EndTime.Sub(st.StartTime).String()
		st.Status = "failed"
		st.Error = err.Error()
	}
	m.Fail(fmt.Errorf("stage %s failed: %w", stageID, err))
}

// Complete closes the manifest of a successful run
func (m *RunManifest) Complete(state *RunState) {
	now := time.Now()
	m.EndTime = &now
	m.Duration = now.Sub(m.StartTime).String()
	m.Status = "completed"
	m.Outputs = state.Outputs
	stats := state.Stats
	m.Stats = &stats
}

// Fail closes the manifest of a failed run
func (m *RunManifest) Fail(err error) {
	now := time.Now()
	m.EndTime = &now
	m.Duration = now.Sub(m.StartTime).String()
	m.Status = "failed"
	if err != nil {
		m.Error = err.Error()
	}
}

// IsStageCompleted checks if a stage has been completed
func (m *RunManifest) IsStageCompleted(stageID string) bool {
	st := m.stage(stageID)
	return st != nil && st.Status == "completed"
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	return exporter.WriteJSON(path, m)
}

func (m *RunManifest) stage(stageID string) *StageExecution {
	for i := range m.CompletedStages {
		if m.CompletedStages[i].StageID == stageID {
			return &m.CompletedStages[i]
		}
	}
	return nil
}
