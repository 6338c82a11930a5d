package synth

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cliffordt/internal/ring"
	"github.com/roach88/cliffordt/internal/testutil"
)

var (
	tableOnce sync.Once
	table     *Table
	tableErr  error
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	tableOnce.Do(func() {
		table, tableErr = GenerateTable(context.Background(), DefaultGenerateOptions())
	})
	require.NoError(t, tableErr)
	return table
}

func mustApply(t *testing.T, s string) ring.Gate {
	t.Helper()
	g, err := ring.Apply(s)
	require.NoError(t, err)
	return g
}

func TestGenerateTable(t *testing.T) {
	tbl := defaultTable(t)
	require.Positive(t, tbl.Len())
	assert.LessOrEqual(t, tbl.MaxSDE(), TableSDE)

	gates, ok := tbl.Lookup(ring.Identity())
	require.True(t, ok)
	assert.Equal(t, "", gates)

	for _, e := range tbl.Entries() {
		assert.NotContains(t, e.Gates, "HH")
		assert.NotContains(t, e.Gates, "TTTTTTTT")
		assert.Equal(t, e.Gate.Key(), mustApply(t, e.Gates).Key(), "entry %q", e.Gates)
	}
}

func TestGenerateTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateTable(ctx, DefaultGenerateOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateTable_AllPhases(t *testing.T) {
	tbl := defaultTable(t)
	phases := map[string]int{}
	for _, e := range tbl.Entries() {
		phases[e.Gate.Key()]++
	}
	for key, n := range phases {
		assert.Equal(t, 8, n, "(u, t) %s", key)
	}
	assert.Equal(t, 8*len(phases), tbl.Len())
}

func TestSynthesize_TableEntries(t *testing.T) {
	tbl := defaultTable(t)
	s := NewSynthesizer(tbl)
	for _, e := range tbl.Entries() {
		got, err := s.Synthesize(e.Gate)
		require.NoError(t, err)
		assert.Equal(t, e.Gates, got)
	}
}

// maxSuffixSDE is the largest exponent of a gate reached while evaluating
// s from the right.
func maxSuffixSDE(t *testing.T, s string) int {
	t.Helper()
	m := 0
	for i := range len(s) + 1 {
		m = max(m, mustApply(t, s[i:]).SDE())
	}
	return m
}

func TestSynthesize_PrunedStrings(t *testing.T) {
	s := NewSynthesizer(defaultTable(t))
	for _, in := range testutil.PrunedGateStrings(12) {
		g := mustApply(t, in)
		got, err := s.Synthesize(g)
		require.NoError(t, err, "input %q", in)

		assert.True(t, mustApply(t, got).Equal(g), "input %q synthesized to %q", in, got)
		assert.NotContains(t, got, "HH", "input %q", in)
		assert.NotContains(t, got, "TTTTTTTT", "input %q", in)
		assert.LessOrEqual(t, len(got), len(in), "input %q synthesized to %q", in, got)

		// Strings the generator walks through are answered with a
		// shortest spelling.
		if g.SDE() <= TableSDE && maxSuffixSDE(t, in) <= DefaultExploreSDE {
			want, ok := defaultTable(t).Lookup(g)
			require.True(t, ok, "input %q", in)
			assert.Equal(t, want, got)
		}
	}
}

func TestSynthesize_Canonical(t *testing.T) {
	s := NewSynthesizer(defaultTable(t))
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"HT", "HT"},
		{"THT", "THT"},
		{"HH", ""},
		{"TTTTTTTT", ""},
		{"TTTTHTHT", "TTTTHTHT"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := s.Synthesize(mustApply(t, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	long := "HTTHHTTTHTTTTTHHTHTHTTHTTHHTHTTHT"
	got, err := s.Synthesize(mustApply(t, long))
	require.NoError(t, err)
	assert.NotContains(t, got, "HH")
	assert.LessOrEqual(t, len(got), len(long))
}

func TestSynthesize_PhaseFix(t *testing.T) {
	// Only the phase-zero H row: HT and T need trailing T gates.
	tbl, err := LoadTable(strings.NewReader("H 1 0 1 0 0 0 1 0 1 0 0 0\nI " + identityRow + "\n"))
	require.NoError(t, err)
	s := NewSynthesizer(tbl)

	for _, in := range []string{"T", "HT", "HTTT", "TTTTTTT"} {
		got, err := s.Synthesize(mustApply(t, in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"HTH", "HTH"},
		{"HH", ""},
		{"THHT", "TT"},
		{"TTTTTTTT", ""},
		{"TTTTTTTTT", "T"},
		{"TTTTHHTTTT", ""},
		{"HTTTTTTTTH", ""},
		{"THTTTTTTTTHT", "TT"},
		{"HTTTTHHTTTTTH", "HTH"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Reduce(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, mustApply(t, tt.in).Equal(mustApply(t, got)))
		})
	}
}

func TestSynthesize_CorrectnessLaw(t *testing.T) {
	s := NewSynthesizer(defaultTable(t))
	for _, in := range testutil.RandomGateStrings(21, 300, 1, 60) {
		g := mustApply(t, in)
		out, err := s.Synthesize(g)
		require.NoError(t, err, "input %q", in)
		assert.True(t, mustApply(t, out).Equal(g), "input %q synthesized to %q", in, out)
	}
}

func TestSynthesize_SDEMismatch(t *testing.T) {
	half := ring.NewLocal(ring.NewZRoot2(1, 0), 1)
	g := ring.Gate{U: ring.ComplexOne(), T: ring.NewComplex(half, ring.LocalFromInt(0))}

	_, err := NewSynthesizer(defaultTable(t)).Synthesize(g)
	require.Error(t, err)
	assert.True(t, IsInvariantError(err, CodeSDEMismatch))
}

func TestSynthesize_TableMiss(t *testing.T) {
	_, err := NewSynthesizer(newTable()).Synthesize(ring.Identity())
	require.Error(t, err)
	assert.True(t, IsInvariantError(err, CodeTableMiss))
	assert.False(t, IsInvariantError(err, CodeDescentStuck))
}

const identityRow = "1 0 0 0 0 0 0 0 0 0 0 0"

func TestLoadTable_LaterLinesOverride(t *testing.T) {
	tbl, err := LoadTable(strings.NewReader("# comment\nTTTTTTTT " + identityRow + "\n\nI " + identityRow + "\n"))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	gates, ok := tbl.Lookup(ring.Identity())
	require.True(t, ok)
	assert.Equal(t, "", gates)

	tbl, err = LoadTable(strings.NewReader("I " + identityRow + "\nTTTTTTTT " + identityRow + "\n"))
	require.NoError(t, err)
	gates, _ = tbl.Lookup(ring.Identity())
	assert.Equal(t, "TTTTTTTT", gates)
}

func TestTable_LookupUpToPhase(t *testing.T) {
	tbl, err := LoadTable(strings.NewReader("TTT " + identityRow + "\nT " + identityRow + "\nTT " + identityRow + "\n"))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	_, ok := tbl.Lookup(ring.Identity())
	assert.False(t, ok, "no phase-zero row")

	e, ok := tbl.LookupUpToPhase(ring.Identity())
	require.True(t, ok)
	assert.Equal(t, "T", e.Gates, "shortest row for the (u, t)")
	assert.Equal(t, 1, e.Gate.Phase)
}

func TestLoadTable_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"field count", "H 1 0 1"},
		{"bad letter", "X " + identityRow},
		{"bad integer", "I 1 0 0 0 0 0 0 0 0 0 0 x"},
		{"not unitary", "I 1 0 0 1 0 0 0 0 0 0 0 0"},
		{"wrong gate", "H " + identityRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable(strings.NewReader(tt.line + "\n"))
			assert.ErrorIs(t, err, ErrMalformedTable)
		})
	}
}

func TestTable_WriteTo(t *testing.T) {
	tbl, err := LoadTable(strings.NewReader("I " + identityRow + "\nH 1 0 1 0 0 0 1 0 1 0 0 0\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := tbl.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t,
		"# cliffordt-table v1 entries=2 table_sde=2\n"+
			"H 1 0 1 0 0 0 1 0 1 0 0 0\n"+
			"I 1 0 0 0 0 0 0 0 0 0 0 0\n",
		buf.String())
}

func TestTable_WriteLoadRoundTrip(t *testing.T) {
	tbl := defaultTable(t)

	var buf bytes.Buffer
	_, err := tbl.WriteTo(&buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], TableHeader))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "I "))

	loaded, err := LoadTable(&buf)
	require.NoError(t, err)
	require.Equal(t, tbl.Len(), loaded.Len())
	for _, e := range tbl.Entries() {
		got, ok := loaded.Lookup(e.Gate)
		require.True(t, ok)
		assert.Equal(t, e.Gates, got)
	}
}

func TestTableFile(t *testing.T) {
	path := t.TempDir() + "/table.txt"
	require.NoError(t, WriteTableFile(path, defaultTable(t)))

	loaded, err := ReadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultTable(t).Len(), loaded.Len())

	_, err = ReadTableFile(t.TempDir() + "/missing.txt")
	assert.Error(t, err)
}
