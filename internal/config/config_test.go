package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Search.MaxDepth)
	assert.Equal(t, 64, cfg.Search.MaxShellNorm)
	assert.Equal(t, 0, cfg.Search.Workers)
	assert.Equal(t, 262144, cfg.Search.FactorBudget)
	assert.Equal(t, "", cfg.Table.Path)
	assert.Equal(t, 64, cfg.Table.MaxLength)
	assert.Equal(t, 5, cfg.Table.ExploreSDE)
	assert.Equal(t, "cliffordt.db", cfg.Store.Path)
	assert.True(t, cfg.Store.Cache)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.InDelta(t, 0.001, cfg.Batch.DefaultEpsilon, 1e-15)
}

func TestParse_Overrides(t *testing.T) {
	src := `
search: maxDepth: 80
table: path: "table.txt"
store: cache: false
batch: defaultEpsilon: 0.01
`
	cfg, err := Parse([]byte(src), "test.cue")
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Search.MaxDepth)
	assert.Equal(t, 64, cfg.Search.MaxShellNorm, "unset fields keep defaults")
	assert.Equal(t, "table.txt", cfg.Table.Path)
	assert.False(t, cfg.Store.Cache)
	assert.InDelta(t, 0.01, cfg.Batch.DefaultEpsilon, 1e-15)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"out of range", "search: maxDepth: -1", "maxDepth"},
		{"wrong type", `batch: concurrency: "four"`, "concurrency"},
		{"unknown field", "search: depth: 3", "depth"},
		{"epsilon too large", "batch: defaultEpsilon: 2.0", "defaultEpsilon"},
		{"epsilon too small", "batch: defaultEpsilon: 1e-11", "defaultEpsilon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.cue")
			require.Error(t, err)

			var ce *Error
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Contains(t, ce.Field, tt.field)
		})
	}
}

func TestParse_Syntax(t *testing.T) {
	_, err := Parse([]byte("search: {"), "broken.cue")
	require.Error(t, err)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	require.NoError(t, os.WriteFile(path, []byte("search: workers: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Search.Workers)

	_, err = Load(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Search.MaxDepth)
}
