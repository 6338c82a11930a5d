package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/cliffordt/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult returns the result for the HT gate string.
func createTestResult(targetID string) ir.Result {
	return ir.Result{
		TargetID:   targetID,
		Target:     ir.Target{Kind: ir.KindGates, Gates: "HT"},
		Gates:      "HT",
		Length:     2,
		TCount:     1,
		HCount:     1,
		SDE:        2,
		Phase:      5,
		Exact:      true,
		Components: [12]string{"1", "0", "1", "0", "0", "0", "1", "0", "1", "0", "0", "0"},
	}
}
