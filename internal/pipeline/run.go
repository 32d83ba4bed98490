package pipeline

import (
	"time"
)

// RunStatus is the state of a loader run.
type RunStatus string

const (
	StatusStarting  RunStatus = "starting"
	StatusDropping  RunStatus = "dropping"
	StatusLoading   RunStatus = "loading"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run tracks one execution of the loader. The pipeline is single threaded,
// so a Run is only touched from one goroutine.
type Run struct {
	ID        string
	Status    RunStatus
	Progress  Progress
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Progress counts what a run has processed so far.
type Progress struct {
	Files       int    `json:"files"`
	CurrentFile string `json:"current_file,omitempty"`
	Rows        int64  `json:"rows"`
	Documents   int64  `json:"documents"`
	Batches     int    `json:"batches"`
}

// RunSnapshot is a JSON-safe copy of a run.
type RunSnapshot struct {
	ID       string    `json:"run_id"`
	Status   RunStatus `json:"status"`
	Progress Progress  `json:"progress"`
	Error    string    `json:"error,omitempty"`
	Elapsed  string    `json:"elapsed"`
}

func NewRun() *Run {
	now := time.Now()
	return &Run{
		ID:        generateULID(),
		Status:    StatusStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Run) SetStatus(status RunStatus) {
	r.Status = status
	r.UpdatedAt = time.Now()
}

// StartFile records that path is being read.
func (r *Run) StartFile(path string) {
	r.Progress.Files++
	r.Progress.CurrentFile = path
	r.UpdatedAt = time.Now()
}

func (r *Run) IncrRows() {
	r.Progress.Rows++
}

// SetLoaded records what the loader persisted.
func (r *Run) SetLoaded(documents int64, batches int) {
	r.Progress.Documents = documents
	r.Progress.Batches = batches
	r.UpdatedAt = time.Now()
}

// Fail marks the run failed and returns its final snapshot.
func (r *Run) Fail(err error) RunSnapshot {
	r.Error = err.Error()
	r.SetStatus(StatusFailed)
	return r.Snapshot()
}

func (r *Run) Snapshot() RunSnapshot {
	return RunSnapshot{
		ID:       r.ID,
		Status:   r.Status,
		Progress: r.Progress,
		Error:    r.Error,
		Elapsed:  r.UpdatedAt.Sub(r.CreatedAt).Round(time.Millisecond).String(),
	}
}
