package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/cliffordt/internal/compiler"
	"github.com/roach88/cliffordt/internal/config"
	"github.com/roach88/cliffordt/internal/grid"
	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/oracle"
	"github.com/roach88/cliffordt/internal/store"
	"github.com/roach88/cliffordt/internal/synth"
)

// tableArtifactName is the store name of the generated table.
const tableArtifactName = "default"

// Table sources reported by "table info".
const (
	tableSourceFile      = "file"
	tableSourceStore     = "store"
	tableSourceGenerated = "generated"
)

// env is the loaded configuration, store and compiler shared by the
// commands that synthesize.
type env struct {
	cfg         config.Config
	store       *store.Store
	table       *synth.Table
	tableDigest string
	tableSource string
	compiler    *compiler.Compiler
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	path := opts.Config
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.Error
		if !errors.As(err, &cfgErr) {
			err = fmt.Errorf("%w: %w", errIO, err)
		}
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	if opts.NoCache {
		cfg.Store.Cache = false
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errStore, err)
	}
	return st, nil
}

// newEnv opens the store, loads the table and builds the compiler.
// Callers must Close the env.
func newEnv(ctx context.Context, cfg config.Config) (*env, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, store: st}
	if err := e.loadTable(ctx); err != nil {
		st.Close()
		return nil, err
	}

	searcher := grid.New(
		grid.WithMaxDepth(cfg.Search.MaxDepth),
		grid.WithMaxShellNorm(cfg.Search.MaxShellNorm),
		grid.WithWorkers(cfg.Search.Workers),
		grid.WithOracle(oracle.New(oracle.WithFactorBudget(cfg.Search.FactorBudget))),
	)
	params := ir.SearchParams{
		MaxDepth:     cfg.Search.MaxDepth,
		MaxShellNorm: cfg.Search.MaxShellNorm,
		FactorBudget: cfg.Search.FactorBudget,
		TableDigest:  e.tableDigest,
	}
	e.compiler = compiler.New(searcher, synth.NewSynthesizer(e.table), params)
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// loadTable uses, in order: the configured table file, the table saved
// in the store, or a freshly generated table that is then saved.
func (e *env) loadTable(ctx context.Context) error {
	if path := e.cfg.Table.Path; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read table: %w", errIO, err)
		}
		t, err := synth.LoadTable(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("table %s: %w", path, err)
		}
		e.table, e.tableDigest, e.tableSource = t, ir.TableDigest(data), tableSourceFile
		return nil
	}

	a, err := e.store.LoadTable(ctx, tableArtifactName)
	switch {
	case err == nil:
		t, err := synth.LoadTable(bytes.NewReader(a.Data))
		if err != nil {
			return fmt.Errorf("stored table %s: %w", a.Digest, err)
		}
		e.table, e.tableDigest, e.tableSource = t, a.Digest, tableSourceStore
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", errStore, err)
	}

	t, digest, err := generateTable(ctx, e.store, e.cfg.Table.MaxLength, e.cfg.Table.ExploreSDE)
	if err != nil {
		return err
	}
	e.table, e.tableDigest, e.tableSource = t, digest, tableSourceGenerated
	return nil
}

// generateTable builds a table and saves it in st as the default table.
func generateTable(ctx context.Context, st *store.Store, maxLength, exploreSDE int) (*synth.Table, string, error) {
	slog.Info("generating synthesis table", "max_length", maxLength, "explore_sde", exploreSDE)
	t, err := synth.GenerateTable(ctx, synth.GenerateOptions{
		MaxLength:  maxLength,
		ExploreSDE: exploreSDE,
		TableSDE:   synth.TableSDE,
	})
	if err != nil {
		return nil, "", fmt.Errorf("generate table: %w", err)
	}

	var buf bytes.Buffer
	if _, err := t.WriteTo(&buf); err != nil {
		return nil, "", fmt.Errorf("serialize table: %w", err)
	}
	digest, err := st.SaveTable(ctx, tableArtifactName, buf.Bytes(), t.Len())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errStore, err)
	}
	slog.Info("table saved", "entries", t.Len(), "digest", digest)
	return t, digest, nil
}

// compile compiles t, reusing and recording results in the store.
func (e *env) compile(ctx context.Context, t ir.Target) (ir.Result, bool, error) {
	if e.cfg.Store.Cache {
		id, err := e.compiler.TargetID(t)
		if err != nil {
			return ir.Result{}, false, err
		}
		res, err := e.store.ReadResult(ctx, id)
		if err == nil {
			slog.Debug("cache hit", "target_id", id)
			return res, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return ir.Result{}, false, fmt.Errorf("%w: %w", errStore, err)
		}
	}

	res, err := e.compiler.Compile(ctx, t)
	if err != nil {
		return ir.Result{}, false, err
	}
	if err := e.store.WriteResult(ctx, res); err != nil {
		return ir.Result{}, false, fmt.Errorf("%w: %w", errStore, err)
	}
	return res, false, nil
}
