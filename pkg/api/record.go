package api

import "time"

// Status represents the outcome of a chain run.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// RunRecord holds one terminal transition of a chain: either all tasks
// succeeded or a task failed and the rest were discarded. Records are
// written by the executor when a recorder is configured; queued tasks
// themselves are never persisted.
type RunRecord struct {
	ID     string
	Chain  string
	Status Status

	// Tasks is the number of tasks the run executed, including the
	// failing one on FAILED runs. Discarded tasks are not counted.
	Tasks int

	// Results holds the outputs delivered to the terminal handler:
	// the full sequence on COMPLETED runs, the partial sequence on
	// FAILED runs.
	Results []any

	// Error is the text of the triggering StepError on FAILED runs.
	Error string

	StartedAt  time.Time
	FinishedAt time.Time
}

// RunFilter selects run records from a RunStore.
// Empty string / zero status mean "no filter" for that field.
type RunFilter struct {
	Chain  string
	Status Status
}

// RunStore persists terminal transitions of chain runs. Only outcomes
// are stored; queued tasks are never persisted.
type RunStore interface {
	SaveRun(rec *RunRecord) error
	GetRun(id string) (*RunRecord, error)
	ListRuns(filter RunFilter) ([]*RunRecord, error)
}
