package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/cliffordt/internal/grid"
	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/store"
)

// DefaultConcurrency is the number of targets compiled at once.
const DefaultConcurrency = 4

// Compiler compiles targets. *compiler.Compiler implements it.
type Compiler interface {
	Compile(ctx context.Context, t ir.Target) (ir.Result, error)
	TargetID(t ir.Target) (string, error)
}

// Runner executes jobs.
type Runner struct {
	compiler       Compiler
	store          *store.Store
	cache          bool
	ids            RunIDGenerator
	concurrency    int
	defaultEpsilon float64
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore records runs and results in s. When cache is true, targets
// with a stored result are not recompiled.
func WithStore(s *store.Store, cache bool) Option {
	return func(r *Runner) {
		r.store = s
		r.cache = cache
	}
}

// WithRunIDs sets the run ID generator. Tests use a sequential one.
func WithRunIDs(g RunIDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithConcurrency bounds the number of targets compiled at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithDefaultEpsilon sets the epsilon for approximate targets when
// neither the target nor the job sets one.
func WithDefaultEpsilon(eps float64) Option {
	return func(r *Runner) { r.defaultEpsilon = eps }
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner around c.
func NewRunner(c Compiler, opts ...Option) *Runner {
	r := &Runner{
		compiler:       c,
		ids:            UUIDv7Generator{},
		concurrency:    DefaultConcurrency,
		defaultEpsilon: 1e-3,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compiles every target of job and checks its expectations.
//
// Per-target failures are recorded in the report and never abort the
// run. The returned error is non-nil only for cancellation or a store
// failure. Items are ordered by target index regardless of completion
// order.
func (r *Runner) Run(ctx context.Context, job *Job, source string) (*Report, error) {
	runID := r.ids.Generate()
	if r.store != nil {
		run := ir.Run{ID: runID, Name: job.Name, Source: source, Targets: len(job.Targets)}
		if _, err := r.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("run %s: %w", job.Name, err)
		}
	}
	r.logger.Info("batch started", "run_id", runID, "job", job.Name, "targets", len(job.Targets))

	items := make([]Item, len(job.Targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range job.Targets {
		g.Go(func() error {
			item, err := r.runTarget(gctx, job, i)
			if err != nil {
				return err
			}
			items[i] = item
			if r.store != nil {
				return r.store.WriteRunItem(gctx, ir.RunItem{
					RunID:    runID,
					Index:    i,
					TargetID: item.TargetID,
					Status:   item.Status,
					Error:    itemError(item),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run %s: %w", job.Name, err)
	}

	report := &Report{RunID: runID, Job: job.Name, Items: items}
	for _, it := range items {
		if it.Status != ir.StatusOK {
			report.Failed++
		}
	}
	report.Pass = report.Failed == 0

	if r.store != nil {
		if err := r.store.FinishRun(ctx, runID, report.Failed); err != nil {
			return nil, fmt.Errorf("run %s: %w", job.Name, err)
		}
	}
	r.logger.Info("batch finished", "run_id", runID, "failed", report.Failed, "pass", report.Pass)
	return report, nil
}

// runTarget compiles one target. Only cancellation and store errors are
// returned; everything else becomes the item's status.
func (r *Runner) runTarget(ctx context.Context, job *Job, i int) (Item, error) {
	jt := job.Targets[i]
	target := job.resolve(i, r.defaultEpsilon)
	item := Item{Index: i, Name: jt.Name}

	id, err := r.compiler.TargetID(target)
	if err != nil {
		item.Status = ir.StatusError
		item.Error = err.Error()
		return item, nil
	}
	item.TargetID = id

	if r.store != nil && r.cache {
		res, err := r.store.ReadResult(ctx, id)
		switch {
		case err == nil:
			item.Cached = true
			r.logger.Debug("cache hit", "index", i, "target_id", id)
			return finish(item, jt.Expect, res), nil
		case !errors.Is(err, store.ErrNotFound):
			return Item{}, err
		}
	}

	res, err := r.compiler.Compile(ctx, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Item{}, ctxErr
		}
		if grid.IsDepthExhausted(err) {
			item.Status = ir.StatusNoSolution
			if jt.Expect != nil && jt.Expect.NoSolution {
				item.Status = ir.StatusOK
			}
		} else {
			item.Status = ir.StatusError
		}
		item.Error = err.Error()
		r.logger.Debug("target failed", "index", i, "target_id", id, "status", item.Status, "error", err)
		return item, nil
	}

	if r.store != nil {
		if err := r.store.WriteResult(ctx, res); err != nil {
			return Item{}, err
		}
	}
	r.logger.Debug("target compiled", "index", i, "target_id", id, "t_count", res.TCount)
	return finish(item, jt.Expect, res), nil
}

func finish(item Item, e *Expect, res ir.Result) Item {
	item.Result = &res
	item.Status = ir.StatusOK
	for _, f := range checkExpect(e, res) {
		item.Failures = append(item.Failures, f.Error())
	}
	if len(item.Failures) > 0 {
		item.Status = ir.StatusFailed
	}
	return item
}

// itemError is the text recorded in run history for an item.
func itemError(it Item) string {
	if it.Error != "" {
		return it.Error
	}
	if len(it.Failures) > 0 {
		return it.Failures[0]
	}
	return ""
}
