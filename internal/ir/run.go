package ir

// ItemStatus is the outcome of one batch target.
type ItemStatus string

const (
	StatusOK         ItemStatus = "ok"
	StatusNoSolution ItemStatus = "no_solution"
	StatusFailed     ItemStatus = "failed" // compiled, but an expectation did not hold
	StatusError      ItemStatus = "error"
)

// Run is one batch execution.
//
// Seq is a logical clock assigned by the store. Runs are ordered by Seq,
// never by wall time.
type Run struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Source  string `json:"source"`
	Seq     int64  `json:"seq"`
	Targets int    `json:"targets"`
	Failed  int    `json:"failed"`
}

// RunItem records what happened to one target of a run.
type RunItem struct {
	RunID    string     `json:"run_id"`
	Index    int        `json:"index"`
	TargetID string     `json:"target_id"`
	Status   ItemStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}
