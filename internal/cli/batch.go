package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/cliffordt/internal/harness"
	"github.com/roach88/cliffordt/internal/ir"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Concurrency int
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <job.yaml>",
		Short: "Compile a YAML batch of targets",
		Long: `Compile every target of a job file concurrently, check expectations and
record the run in the database.

Exit codes:
  0 - All targets passed
  1 - One or more targets failed
  2 - Command error (invalid job file, config, etc.)

Examples:
  cliffordt batch rotations.yaml
  cliffordt batch rotations.yaml --concurrency 8 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "targets compiled at once (default from config)")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	job, err := harness.LoadJob(path)
	if err != nil {
		return f.Fail("load job", fmt.Errorf("%w: %w", errJob, err))
	}
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return f.Fail("load config", err)
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Batch.Concurrency = opts.Concurrency
	}

	e, err := newEnv(ctx, cfg)
	if err != nil {
		return f.Fail("initialize", err)
	}
	defer e.Close()
	f.VerboseLog("table: %s, %d entries, digest %s", e.tableSource, e.table.Len(), e.tableDigest)

	runner := harness.NewRunner(e.compiler,
		harness.WithStore(e.store, cfg.Store.Cache),
		harness.WithConcurrency(cfg.Batch.Concurrency),
		harness.WithDefaultEpsilon(cfg.Batch.DefaultEpsilon),
	)
	report, err := runner.Run(ctx, job, filepath.Base(path))
	if err != nil {
		return f.Fail("batch", err)
	}

	if err := f.Success(report, func(w io.Writer) { writeReportText(w, report) }); err != nil {
		return err
	}
	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d targets failed", report.Failed, len(report.Items)))
	}
	return nil
}

func writeReportText(w io.Writer, r *harness.Report) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "run %s (%s)\n", r.RunID, r.Job)
	for _, it := range r.Items {
		mark := "✓"
		if it.Status != ir.StatusOK {
			mark = "✗"
		}
		name := it.Name
		if name == "" {
			name = fmt.Sprintf("#%d", it.Index)
		}
		switch {
		case it.Result != nil:
			gates := it.Result.Gates
			if gates == "" {
				gates = "I"
			}
			cached := ""
			if it.Cached {
				cached = " (cached)"
			}
			p.Fprintf(w, "%s %s: T=%d length=%d%s\n", mark, name, it.Result.TCount, it.Result.Length, cached)
			p.Fprintf(w, "    %s\n", gates)
		default:
			p.Fprintf(w, "%s %s: %s\n", mark, name, it.Status)
		}
		for _, failure := range it.Failures {
			p.Fprintf(w, "    %s\n", failure)
		}
		if it.Error != "" && it.Status != ir.StatusOK {
			p.Fprintf(w, "    %s\n", it.Error)
		}
	}
	p.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	p.Fprintf(w, "%d targets, %d passed, %d failed\n", len(r.Items), len(r.Items)-r.Failed, r.Failed)
}
