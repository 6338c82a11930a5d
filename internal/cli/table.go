package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/cliffordt/internal/synth"
)

// TableOutput describes a synthesis table.
type TableOutput struct {
	Source  string `json:"source"`
	Digest  string `json:"digest"`
	Entries int    `json:"entries"`
	MaxSDE  int    `json:"max_sde"`
	Path    string `json:"path,omitempty"`
}

// TableOptions holds flags for the table generate command.
type TableOptions struct {
	*RootOptions
	Out        string
	MaxLength  int
	ExploreSDE int
}

// NewTableCommand creates the table command group.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage the exact-synthesis lookup table",
		Long: `The lookup table maps every gate of small denominator exponent to a
shortest H/T string. It is generated once and stored in the database;
a table file set in the config takes precedence.`,
	}
	cmd.AddCommand(newTableGenerateCommand(rootOpts))
	cmd.AddCommand(newTableInfoCommand(rootOpts))
	return cmd
}

func newTableGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the table and store it",
		Long: `Enumerate gate strings breadth first and save the resulting table in the
database as the default table. With --out the table file is also written.

Examples:
  cliffordt table generate
  cliffordt table generate --out cliffordt.table --explore-sde 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "also write the table to this file")
	cmd.Flags().IntVar(&opts.MaxLength, "max-length", 0, "longest string explored (default from config)")
	cmd.Flags().IntVar(&opts.ExploreSDE, "explore-sde", 0, "largest exponent expanded (default from config)")

	return cmd
}

func runTableGenerate(opts *TableOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return f.Fail("load config", err)
	}
	if cmd.Flags().Changed("max-length") {
		cfg.Table.MaxLength = opts.MaxLength
	}
	if cmd.Flags().Changed("explore-sde") {
		cfg.Table.ExploreSDE = opts.ExploreSDE
	}

	st, err := openStore(cfg)
	if err != nil {
		return f.Fail("open store", err)
	}
	defer st.Close()

	t, digest, err := generateTable(ctx, st, cfg.Table.MaxLength, cfg.Table.ExploreSDE)
	if err != nil {
		return f.Fail("table generate", err)
	}
	if opts.Out != "" {
		if err := synth.WriteTableFile(opts.Out, t); err != nil {
			return f.Fail("table generate", fmt.Errorf("%w: %w", errIO, err))
		}
	}

	out := TableOutput{
		Source:  tableSourceGenerated,
		Digest:  digest,
		Entries: t.Len(),
		MaxSDE:  t.MaxSDE(),
		Path:    opts.Out,
	}
	return f.Success(out, func(w io.Writer) { writeTableText(w, out) })
}

func newTableInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the table the compiler would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail("load config", err)
			}
			e, err := newEnv(cmd.Context(), cfg)
			if err != nil {
				return f.Fail("initialize", err)
			}
			defer e.Close()

			out := TableOutput{
				Source:  e.tableSource,
				Digest:  e.tableDigest,
				Entries: e.table.Len(),
				MaxSDE:  e.table.MaxSDE(),
				Path:    cfg.Table.Path,
			}
			return f.Success(out, func(w io.Writer) { writeTableText(w, out) })
		},
	}
}

func writeTableText(w io.Writer, out TableOutput) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "source:  %s\n", out.Source)
	if out.Path != "" {
		p.Fprintf(w, "path:    %s\n", out.Path)
	}
	p.Fprintf(w, "entries: %d\n", out.Entries)
	p.Fprintf(w, "max_sde: %d\n", out.MaxSDE)
	p.Fprintf(w, "digest:  %s\n", out.Digest)
}
