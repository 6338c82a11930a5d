package testutil

import "fmt"

// SequentialRunIDs generates run IDs of the form "<prefix>-0001",
// "<prefix>-0002", ... so that batch runs produce byte-identical reports
// and golden snapshots.
//
// Safe for concurrent use.
type SequentialRunIDs struct {
	prefix  string
	counter Counter
}

// NewSequentialRunIDs creates a generator. An empty prefix means "run".
func NewSequentialRunIDs(prefix string) *SequentialRunIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialRunIDs{prefix: prefix}
}

// Generate returns the next run ID.
func (g *SequentialRunIDs) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter.Next())
}

// Reset restarts the sequence at 1.
func (g *SequentialRunIDs) Reset() {
	g.counter.Reset()
}
