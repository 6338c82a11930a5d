package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cliffordt/internal/config"
	"github.com/roach88/cliffordt/internal/ir"
)

// SynthOptions holds flags for the synth command.
type SynthOptions struct {
	*RootOptions
	Theta    float64
	Re       float64
	Im       float64
	Epsilon  float64
	MaxDepth int
	Workers  int
}

// ResultOutput is a compiled result as printed by the CLI.
type ResultOutput struct {
	ir.Result
	Cached bool `json:"cached"`
}

// NewSynthCommand creates the synth command.
func NewSynthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SynthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Approximate a Z rotation or direction",
		Long: `Find an H/T gate string whose top-left entry is within epsilon of the
target direction, in operator norm, up to global phase.

Give either --theta (the direction e^{i theta}) or --re/--im.

Exit codes:
  0 - Solution found
  1 - No solution within the configured depth
  2 - Invalid target or configuration

Examples:
  cliffordt synth --theta 0.7853981633974483 --epsilon 1e-4
  cliffordt synth --re 0.6 --im 0.8 --epsilon 0.01 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Theta, "theta", 0, "rotation angle in radians")
	cmd.Flags().Float64Var(&opts.Re, "re", 0, "real part of the target direction")
	cmd.Flags().Float64Var(&opts.Im, "im", 0, "imaginary part of the target direction")
	cmd.Flags().Float64VarP(&opts.Epsilon, "epsilon", "e", 0, "error bound (default from config)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "largest denominator exponent (default from config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel shell workers (default from config)")
	cmd.MarkFlagsMutuallyExclusive("theta", "re")
	cmd.MarkFlagsMutuallyExclusive("theta", "im")

	return cmd
}

func runSynth(opts *SynthOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	flags := cmd.Flags()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return f.Fail("load config", err)
	}
	if flags.Changed("max-depth") {
		cfg.Search.MaxDepth = opts.MaxDepth
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = opts.Workers
	}

	target := ir.Target{Epsilon: cfg.Batch.DefaultEpsilon}
	if flags.Changed("epsilon") {
		target.Epsilon = opts.Epsilon
	}
	switch {
	case flags.Changed("theta"):
		target.Kind, target.Theta = ir.KindAngle, opts.Theta
	case flags.Changed("re") || flags.Changed("im"):
		target.Kind, target.Re, target.Im = ir.KindDirection, opts.Re, opts.Im
	default:
		return f.Fail("synth", fmt.Errorf("%w: one of --theta or --re/--im is required", ir.ErrInvalidTarget))
	}

	return compileAndPrint(cmd, f, cfg, target)
}

// NewExactCommand creates the exact command.
func NewExactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exact <gates>",
		Short: "Resynthesize an exact gate string",
		Long: `Evaluate an H/T gate string exactly and synthesize a canonical string for
the same gate. Letters are case-insensitive; spaces and I are ignored.

Examples:
  cliffordt exact HTHTTH
  cliffordt exact "h t h t"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail("load config", err)
			}
			return compileAndPrint(cmd, f, cfg, ir.Target{Kind: ir.KindGates, Gates: args[0]})
		},
	}
	return cmd
}

func compileAndPrint(cmd *cobra.Command, f *OutputFormatter, cfg config.Config, target ir.Target) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx, cfg)
	if err != nil {
		return f.Fail("initialize", err)
	}
	defer e.Close()
	f.VerboseLog("table: %s, %d entries, digest %s", e.tableSource, e.table.Len(), e.tableDigest)

	res, cached, err := e.compile(ctx, target)
	if err != nil {
		return f.Fail(fmt.Sprintf("compile %s target", target.Kind), err)
	}
	out := ResultOutput{Result: res, Cached: cached}
	return f.Success(out, func(w io.Writer) { writeResultText(w, out) })
}

func writeResultText(w io.Writer, r ResultOutput) {
	fmt.Fprintf(w, "target:     %s\n", describeTarget(r.Target))
	gates := r.Gates
	if gates == "" {
		gates = "I"
	}
	fmt.Fprintf(w, "gates:      %s\n", gates)
	fmt.Fprintf(w, "length:     %d (T: %d, H: %d)\n", r.Length, r.TCount, r.HCount)
	fmt.Fprintf(w, "depth:      %d\n", r.Depth)
	fmt.Fprintf(w, "sde:        %d\n", r.SDE)
	fmt.Fprintf(w, "phase:      %d\n", r.Phase)
	if r.Exact {
		fmt.Fprintf(w, "distance:   exact\n")
	} else {
		fmt.Fprintf(w, "distance:   %.3e\n", r.Distance)
	}
	fmt.Fprintf(w, "components: %s\n", strings.Join(r.Components[:], " "))
	fmt.Fprintf(w, "target_id:  %s\n", r.TargetID)
	fmt.Fprintf(w, "cached:     %t\n", r.Cached)
}

func describeTarget(t ir.Target) string {
	switch t.Kind {
	case ir.KindAngle:
		return fmt.Sprintf("angle theta=%g epsilon=%g", t.Theta, t.Epsilon)
	case ir.KindDirection:
		return fmt.Sprintf("direction re=%g im=%g epsilon=%g", t.Re, t.Im, t.Epsilon)
	default:
		return fmt.Sprintf("gates %q", t.Gates)
	}
}
