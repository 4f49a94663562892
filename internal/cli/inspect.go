package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dimu/internal/report"
	"github.com/roach88/dimu/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
	Config   string
	List     bool
	MassMin  float64
	MassMax  float64
	RapMin   float64
	RapMax   float64
}

// InspectResult is the output of the inspect command.
type InspectResult struct {
	Run    RunView        `json:"run"`
	Report *report.Report `json:"report"`
}

// RunList is the output of inspect --list.
type RunList struct {
	Runs []RunView `json:"runs"`
}

func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "No runs stored."
	}
	lines := make([]string, len(l.Runs))
	for i, r := range l.Runs {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [run-id]",
		Short: "Summarise a stored run",
		Long: `Summarise a stored aggregate.

Prints the per-trigger event counts, the projection of every pair
histogram on each axis inside the rapidity window, and the ratio of
reconstructed to generated pairs inside the mass window. The latest run
is inspected when no id is given.

Windows come from --config, or the defaults, and can be overridden with
the window flags.

Examples:
  dimu inspect --db ./dimu.db
  dimu inspect --db ./dimu.db --list
  dimu inspect --db ./dimu.db --mass-min 2.9 --mass-max 3.3 0190a1b2-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file providing the windows")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored runs")
	cmd.Flags().Float64Var(&opts.MassMin, "mass-min", 0, "lower edge of the mass window")
	cmd.Flags().Float64Var(&opts.MassMax, "mass-max", 0, "upper edge of the mass window")
	cmd.Flags().Float64Var(&opts.RapMin, "rapidity-min", 0, "lower edge of the rapidity window")
	cmd.Flags().Float64Var(&opts.RapMax, "rapidity-max", 0, "upper edge of the rapidity window")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions, args []string) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmdContext(cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeNotFound, "open database", err)
	}
	defer st.Close()

	if opts.List {
		runs, err := st.Runs(ctx)
		if err != nil {
			return out.Fail(ExitFailure, ErrCodeStore, "list runs", err)
		}
		list := RunList{Runs: make([]RunView, 0, len(runs))}
		for _, r := range runs {
			list.Runs = append(list.Runs, viewOf(r))
		}
		return out.Success(list)
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "invalid config", err)
	}
	ropts := report.OptionsFrom(cfg)
	flags := cmd.Flags()
	if flags.Changed("mass-min") {
		ropts.Mass.Min = opts.MassMin
	}
	if flags.Changed("mass-max") {
		ropts.Mass.Max = opts.MassMax
	}
	if flags.Changed("rapidity-min") {
		ropts.Rapidity.Min = opts.RapMin
	}
	if flags.Changed("rapidity-max") {
		ropts.Rapidity.Max = opts.RapMax
	}
	if ropts.Mass.Min >= ropts.Mass.Max || ropts.Rapidity.Min >= ropts.Rapidity.Max {
		return out.Fail(ExitCommandError, ErrCodeConfig, "window minimum must be below its maximum", nil)
	}

	var run store.Run
	if len(args) == 1 {
		run, err = st.Run(ctx, args[0])
	} else {
		run, err = st.LatestRun(ctx)
	}
	if err != nil {
		if isNotFound(err) {
			return out.Fail(ExitCommandError, ErrCodeNotFound, "no such run", err)
		}
		return out.Fail(ExitFailure, ErrCodeStore, "read run", err)
	}

	coll, err := st.LoadCollection(ctx, run.ID)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeStore, "load run "+run.ID, err)
	}
	rep := report.Build(coll, ropts)

	if out.JSON() {
		return out.SuccessForRun(run.ID, InspectResult{Run: viewOf(run), Report: rep})
	}
	w := out.Writer
	fmt.Fprintln(w, viewOf(run))
	fmt.Fprintln(w)
	return rep.WriteText(w)
}
