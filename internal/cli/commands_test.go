package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cliffordt/internal/ir"
)

// tinyTable holds just H and the identity, which is enough to resynthesize
// every gate with exponent at most 2.
const tinyTable = `# cliffordt-table v1 entries=2 table_sde=2
H 1 0 1 0 0 0 1 0 1 0 0 0
I 1 0 0 0 0 0 0 0 0 0 0 0
`

type testEnv struct {
	dir    string
	config string
	db     string
	digest string
}

// newTestEnv writes a config that points at the tiny table and a
// database in a temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "tiny.table")
	require.NoError(t, os.WriteFile(tablePath, []byte(tinyTable), 0o644))

	cfgPath := filepath.Join(dir, "cliffordt.cue")
	cfg := fmt.Sprintf("table: path: %q\nsearch: workers: 2\n", tablePath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return &testEnv{
		dir:    dir,
		config: cfgPath,
		db:     filepath.Join(dir, "cliffordt.db"),
		digest: ir.TableDigest([]byte(tinyTable)),
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append([]string{"--config", e.config, "--db", e.db}, args...)...)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func decodeError(t *testing.T, out string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestApplyCommand_Golden(t *testing.T) {
	out, err := execute(t, "apply", "h t")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "apply_ht", []byte(out))
}

func TestApplyCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "apply", "THT")
	require.NoError(t, err)

	var got ApplyOutput
	decodeData(t, out, &got)
	assert.Equal(t, "THT", got.Gates)
	assert.Equal(t, 3, got.Length)
	assert.Equal(t, 2, got.TCount)
	assert.Equal(t, 1, got.HCount)
	assert.Equal(t, 2, got.SDE)
}

func TestApplyCommand_InvalidGates(t *testing.T) {
	out, err := execute(t, "--format", "json", "apply", "HXT")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeInvalidTarget, decodeError(t, out).Code)
}

func TestExactCommand(t *testing.T) {
	e := newTestEnv(t)
	want := ir.MustTargetID(
		ir.Target{Kind: ir.KindGates, Gates: "HT"},
		ir.SearchParams{MaxDepth: 60, MaxShellNorm: 64, FactorBudget: 262144, TableDigest: e.digest},
	)

	out, err := e.run(t, "exact", "h t")
	require.NoError(t, err)
	assert.Contains(t, out, "gates:      HT\n")
	assert.Contains(t, out, "length:     2 (T: 1, H: 1)\n")
	assert.Contains(t, out, "distance:   exact\n")
	assert.Contains(t, out, "target_id:  "+want+"\n")
	assert.Contains(t, out, "cached:     false\n")

	out, err = e.run(t, "exact", "HT")
	require.NoError(t, err)
	assert.Contains(t, out, "target_id:  "+want+"\n")
	assert.Contains(t, out, "cached:     true\n")

	out, err = e.run(t, "--no-cache", "exact", "HT")
	require.NoError(t, err)
	assert.Contains(t, out, "cached:     false\n")
}

func TestExactCommand_JSON(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "--format", "json", "exact", "T")
	require.NoError(t, err)

	var got ResultOutput
	decodeData(t, out, &got)
	assert.Equal(t, "T", got.Gates)
	assert.Equal(t, 1, got.TCount)
	assert.True(t, got.Exact)
	assert.False(t, got.Cached)
}

func TestSynthCommand_NoSolution(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "--format", "json", "synth", "--theta", "0.3", "--epsilon", "0.01", "--max-depth", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cliErr := decodeError(t, out)
	assert.Equal(t, ErrCodeNoSolution, cliErr.Code)
	assert.Contains(t, cliErr.Message, "no solution found within configured depth 0")
}

func TestSynthCommand_MissingTarget(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "synth", "--epsilon", "0.01")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_INVALID_TARGET]")
}

func TestSynthCommand_InvalidEpsilon(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "synth", "--theta", "0.3", "--epsilon", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(bad, []byte("search: maxDepth: -1\n"), 0o644))

	out, err := execute(t, "--format", "json", "--config", bad, "apply", "H")
	require.NoError(t, err, "apply does not read the config")
	assert.Contains(t, out, `"status":"ok"`)

	out, err = execute(t, "--format", "json", "--config", bad, "--db", filepath.Join(dir, "x.db"), "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeConfig, decodeError(t, out).Code)

	out, err = execute(t, "--format", "json", "--config", filepath.Join(dir, "missing.cue"), "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeIO, decodeError(t, out).Code)
}

func TestTableInfo_File(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "--format", "json", "table", "info")
	require.NoError(t, err)

	var got TableOutput
	decodeData(t, out, &got)
	assert.Equal(t, tableSourceFile, got.Source)
	assert.Equal(t, 2, got.Entries)
	assert.Equal(t, 2, got.MaxSDE)
	assert.Equal(t, e.digest, got.Digest)
}

const batchJob = `name: smoke
epsilon: 0.01
targets:
  - name: ht
    kind: gates
    gates: h t
    expect:
      gates: HT
  - kind: gates
    gates: T
`

const failingJob = `name: strict
targets:
  - name: strict
    kind: gates
    gates: HT
    expect:
      max_t_count: 0
`

func writeJob(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBatchAndHistory(t *testing.T) {
	e := newTestEnv(t)
	jobPath := writeJob(t, e.dir, "smoke.yaml", batchJob)

	out, err := e.run(t, "--format", "json", "batch", jobPath)
	require.NoError(t, err)

	var report struct {
		RunID  string `json:"run_id"`
		Job    string `json:"job"`
		Pass   bool   `json:"pass"`
		Failed int    `json:"failed"`
		Items  []struct {
			Status string `json:"status"`
		} `json:"items"`
	}
	decodeData(t, out, &report)
	require.NotEmpty(t, report.RunID)
	assert.Equal(t, "smoke", report.Job)
	assert.True(t, report.Pass)
	require.Len(t, report.Items, 2)

	failPath := writeJob(t, e.dir, "strict.yaml", failingJob)
	out, err = e.run(t, "batch", failPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ strict: T=1 length=2 (cached)")
	assert.Contains(t, out, "t_count: expected <= 0, actual 1")
	assert.Contains(t, out, "1 targets, 0 passed, 1 failed")

	out, err = e.run(t, "--format", "json", "history")
	require.NoError(t, err)
	var runs []ir.Run
	decodeData(t, out, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, "strict", runs[0].Name)
	assert.Equal(t, int64(2), runs[0].Seq)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, report.RunID, runs[1].ID)
	assert.Equal(t, "smoke.yaml", runs[1].Source)

	out, err = e.run(t, "--format", "json", "history", "--limit", "1")
	require.NoError(t, err)
	decodeData(t, out, &runs)
	assert.Len(t, runs, 1)

	out, err = e.run(t, "--format", "json", "history", report.RunID)
	require.NoError(t, err)
	var detail RunOutput
	decodeData(t, out, &detail)
	assert.Equal(t, 2, detail.Targets)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, ir.StatusOK, detail.Items[0].Status)
	assert.Equal(t, 1, detail.Items[1].Index)
}

func TestHistory_UnknownRun(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "--format", "json", "history", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNotFound, decodeError(t, out).Code)
}

func TestBatch_InvalidJob(t *testing.T) {
	e := newTestEnv(t)
	path := writeJob(t, e.dir, "bad.yaml", "name: bad\ntargets: []\n")

	out, err := e.run(t, "--format", "json", "batch", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeJob, decodeError(t, out).Code)
}
