package models

import "time"

// Status strings shown to the operator.
const (
	StatusRunning     = "Running..."
	StatusDone        = "Done!"
	StatusNoSelection = "No entities selected."
)

// RunState is the lifecycle of a sync run: idle → running → done.
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StateDone    RunState = "done"
)

// OutcomeStatus classifies what happened to one extracted link.
type OutcomeStatus string

const (
	OutcomeUploaded OutcomeStatus = "uploaded"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Selection names the characters a run should process.
// When All is set, Names is ignored and every known character is processed.
type Selection struct {
	Names []string `json:"names"`
	All   bool     `json:"all"`
}

// Empty reports whether the selection picks nothing.
func (s Selection) Empty() bool {
	return !s.All && len(s.Names) == 0
}

// Includes reports whether name is part of the selection.
func (s Selection) Includes(name string) bool {
	if s.All {
		return true
	}
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Outcome is the result of processing one link.
type Outcome struct {
	Character string        `json:"character"`
	URL       string        `json:"url"`
	Filename  string        `json:"filename"`
	Status    OutcomeStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// Report is the terminal result of a sync run.
type Report struct {
	RunID      string    `json:"run_id"`
	State      RunState  `json:"state"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Characters []string  `json:"characters"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Event types emitted while a run progresses.
const (
	EventRunStarted  = "run.started"
	EventOutcome     = "run.outcome"
	EventRunFinished = "run.finished"
)

// Event is emitted by the sync orchestrator to observers.
type Event struct {
	Type    string   `json:"type"`
	RunID   string   `json:"run_id"`
	Status  string   `json:"status,omitempty"`
	Outcome *Outcome `json:"outcome,omitempty"`
}
