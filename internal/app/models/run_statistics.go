package models

import "time"

// RunStatistics accumulates outcomes for one run. A run owns its
// accumulator; it is never shared between concurrent runs.
type RunStatistics struct {
	Processed    int `json:"processed"`
	Inserted     int `json:"inserted"`
	Updated      int `json:"updated"`
	Errors       int `json:"errors"`
	DeadLettered int `json:"deadLettered"`
}

func NewRunStatistics() *RunStatistics {
	return &RunStatistics{}
}

// Add folds other into s.
func (s *RunStatistics) Add(other RunStatistics) {
	s.Processed += other.Processed
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Errors += other.Errors
	s.DeadLettered += other.DeadLettered
}

func (s *RunStatistics) Snapshot() RunStatistics {
	return *s
}

// RunSnapshot is the externally readable state of a run.
type RunSnapshot struct {
	RunID      string        `json:"runId"`
	Source     string        `json:"source"`
	State      string        `json:"state"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	Statistics RunStatistics `json:"statistics"`
}

// CollectionCount is one row of the collection summary.
type CollectionCount struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}
