package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"shipgate/internal/vcs"
	"shipgate/pkg/pipeline"
)

// StepStatus is the lifecycle status of a single pipeline step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// RunStatus is the terminal status of the whole run.
type RunStatus string

const (
	RunInProgress RunStatus = "in-progress"
	RunCompleted  RunStatus = "completed"
	RunAborted    RunStatus = "aborted"
)

// StepState records the status of one step within a run.
type StepState struct {
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ExecutionState represents the state of a shipgate deploy run.
type ExecutionState struct {
	SchemaVersion string        `json:"schema_version"`
	RunID         string        `json:"run_id"`
	Pipeline      string        `json:"pipeline"`
	ManifestPath  string        `json:"manifest_path,omitempty"`
	Revision      *vcs.Revision `json:"revision,omitempty"`
	Status        RunStatus     `json:"status"`
	Steps         []StepState   `json:"steps"`
	CreatedAt     time.Time     `json:"created_at"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
}

const (
	StateFileName      = ".shipgate.state.json"
	StateSchemaVersion = "1.0"
)

// loadState attempts to load the execution state from the state file.
// Returns nil if the file doesn't exist (fresh start).
func loadState() (*ExecutionState, error) {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil, nil // Fresh start - no state file exists
	}

	data, err := os.ReadFile(StateFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state ExecutionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return &state, nil
}

// saveState persists the execution state to the state file.
func saveState(state *ExecutionState) error {
	state.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.WriteFile(StateFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// newState creates a new execution state for a fresh run.
func newState(p *pipeline.Pipeline, manifestPath, runID string) *ExecutionState {
	now := time.Now()
	steps := make([]StepState, len(p.Spec.Steps))
	for i, step := range p.Spec.Steps {
		steps[i] = StepState{Name: step.Name, Status: StepPending}
	}

	return &ExecutionState{
		SchemaVersion: StateSchemaVersion,
		RunID:         runID,
		Pipeline:      p.Metadata.Name,
		ManifestPath:  manifestPath,
		Status:        RunInProgress,
		Steps:         steps,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// matchesPipeline reports whether the recorded step list still matches the
// pipeline. A stale state file from an edited manifest must not be resumed.
func (s *ExecutionState) matchesPipeline(p *pipeline.Pipeline) bool {
	if s == nil || s.Pipeline != p.Metadata.Name || len(s.Steps) != len(p.Spec.Steps) {
		return false
	}
	for i, step := range p.Spec.Steps {
		if s.Steps[i].Name != step.Name {
			return false
		}
	}
	return true
}

// stepState returns the recorded state for the named step, or nil.
func (s *ExecutionState) stepState(name string) *StepState {
	for i := range s.Steps {
		if s.Steps[i].Name == name {
			return &s.Steps[i]
		}
	}
	return nil
}

// shouldSkipStep determines if a step already succeeded in a previous run.
func (s *ExecutionState) shouldSkipStep(name string) bool {
	if s == nil {
		return false
	}
	if step := s.stepState(name); step != nil {
		return step.Status == StepSucceeded
	}
	return false
}

// markStep transitions the named step to the given status, stamping start and
// finish times.
func (s *ExecutionState) markStep(name string, status StepStatus) {
	step := s.stepState(name)
	if step == nil {
		return
	}

	now := time.Now()
	switch status {
	case StepRunning:
		step.StartedAt = &now
	case StepSucceeded, StepFailed:
		step.FinishedAt = &now
	}
	step.Status = status
}

// nextStep returns the name of the first step that has not succeeded yet, or
// an empty string when every step is done.
func (s *ExecutionState) nextStep() string {
	for _, step := range s.Steps {
		if step.Status != StepSucceeded {
			return step.Name
		}
	}
	return ""
}

// removeStateFile removes the state file after successful completion.
func removeStateFile() error {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil // File doesn't exist, nothing to remove
	}

	if err := os.Remove(StateFileName); err != nil {
		return fmt.Errorf("failed to remove state file: %w", err)
	}

	return nil
}
