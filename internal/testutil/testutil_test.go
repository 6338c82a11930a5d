package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cliffordt/internal/ring"
)

func TestCounter(t *testing.T) {
	var c Counter
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())

	c.Reset()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
}

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), c.Current())
}

func TestSequentialRunIDs(t *testing.T) {
	gen := NewSequentialRunIDs("")
	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())

	gen.Reset()
	assert.Equal(t, "run-0001", gen.Generate())

	assert.Equal(t, "batch-0001", NewSequentialRunIDs("batch").Generate())
}

func TestRandomGateStrings(t *testing.T) {
	a := RandomGateStrings(7, 20, 1, 30)
	b := RandomGateStrings(7, 20, 1, 30)
	require.Equal(t, a, b, "same seed gives same strings")

	for _, s := range a {
		assert.GreaterOrEqual(t, len(s), 1)
		assert.LessOrEqual(t, len(s), 30)
		_, err := ring.ParseGates(s)
		assert.NoError(t, err, s)
	}

	assert.Len(t, RandomGateString(rand.New(rand.NewSource(1)), 12), 12)
}

func TestPrunedGateStrings(t *testing.T) {
	assert.Equal(t,
		[]string{"", "H", "T", "HT", "TH", "TT", "HTH", "HTT", "THT", "TTH", "TTT"},
		PrunedGateStrings(3))

	all := PrunedGateStrings(12)
	assert.Len(t, all, 940)
	for _, s := range all {
		assert.NotContains(t, s, "HH")
		assert.NotContains(t, s, "TTTTTTTT")
	}
}
