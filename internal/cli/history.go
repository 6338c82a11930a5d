package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/cliffordt/internal/ir"
)

// RunOutput is a stored run with its items.
type RunOutput struct {
	ir.Run
	Items []ir.RunItem `json:"items"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded batch runs",
		Long: `Without arguments, list the most recent batch runs, newest first.
With a run ID, show the status of every target in that run.

Examples:
  cliffordt history
  cliffordt history --limit 5
  cliffordt history 01927f3e-8c1a-7b2e-9d4f-3a6b5c8d7e9f`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail("load config", err)
			}
			st, err := openStore(cfg)
			if err != nil {
				return f.Fail("open store", err)
			}
			defer st.Close()

			if len(args) == 1 {
				run, err := st.ReadRun(ctx, args[0])
				if err != nil {
					return f.Fail(fmt.Sprintf("read run %s", args[0]), err)
				}
				items, err := st.ReadRunItems(ctx, run.ID)
				if err != nil {
					return f.Fail(fmt.Sprintf("read run %s", args[0]), fmt.Errorf("%w: %w", errStore, err))
				}
				out := RunOutput{Run: run, Items: items}
				return f.Success(out, func(w io.Writer) { writeRunText(w, out) })
			}

			runs, err := st.ReadRuns(ctx, limit)
			if err != nil {
				return f.Fail("read runs", fmt.Errorf("%w: %w", errStore, err))
			}
			return f.Success(runs, func(w io.Writer) { writeRunsText(w, runs) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs listed (0 for all)")

	return cmd
}

func writeRunsText(w io.Writer, runs []ir.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	p := message.NewPrinter(language.English)
	for _, r := range runs {
		p.Fprintf(w, "%4d  %s  %-20s %d targets, %d failed\n", r.Seq, r.ID, r.Name, r.Targets, r.Failed)
	}
}

func writeRunText(w io.Writer, out RunOutput) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "run:     %s\n", out.ID)
	p.Fprintf(w, "job:     %s (%s)\n", out.Name, out.Source)
	p.Fprintf(w, "seq:     %d\n", out.Seq)
	p.Fprintf(w, "targets: %d, failed: %d\n", out.Targets, out.Failed)
	for _, it := range out.Items {
		p.Fprintf(w, "  %3d %-11s %s\n", it.Index, it.Status, it.TargetID)
		if it.Error != "" {
			p.Fprintf(w, "      %s\n", it.Error)
		}
	}
}
