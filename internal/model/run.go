package model

import "time"

// RunStatus represents the current state of a normalization run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary is the audit summary of one batch run: how many records came
// in, how many survived, and per-reason rejection counts so data loss can
// be reviewed.
type RunSummary struct {
	InputRecords  int                  `json:"input_records"`
	OutputRecords int                  `json:"output_records"`
	Outliers      int                  `json:"outliers"`
	Rejections    map[RejectReason]int `json:"rejections"`
}

// Rejected returns the total number of rejected records across all reasons.
func (s RunSummary) Rejected() int {
	var n int
	for _, c := range s.Rejections {
		n += c
	}
	return n
}

// Run represents a single normalization batch run.
type Run struct {
	ID         string      `json:"id"`
	Status     RunStatus   `json:"status"`
	InputFiles []string    `json:"input_files"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
