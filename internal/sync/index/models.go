package index

import "time"

// Run is one recorded `gdsync sync` invocation
type Run struct {
	ID         string     `json:"id"`
	Profile    string     `json:"profile"`
	Mode       string     `json:"mode"`
	Pairs      int        `json:"pairs"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	ItemsDone  int        `json:"itemsDone"`
	ItemsTotal int        `json:"itemsTotal"`
	Cancelled  bool       `json:"cancelled"`
	DryRun     bool       `json:"dryRun"`
	ErrorCount int        `json:"errorCount"`
}

// Status renders the run outcome the way the sync command reports it
func (r Run) Status() string {
	switch {
	case r.FinishedAt == nil:
		return "running"
	case r.Cancelled:
		return "cancelled"
	case r.ErrorCount > 0:
		return "completed with errors"
	}
	return "completed"
}

// Outcome is what FinishRun stores
type Outcome struct {
	ItemsDone  int
	ItemsTotal int
	Cancelled  bool
	Errors     []string
}
