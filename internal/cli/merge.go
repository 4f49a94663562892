package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/store"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Database string
	Label    string
	All      bool
	Tree     bool

	// IDGenerator overrides the run id generator (for testing).
	IDGenerator store.IDGenerator
}

// MergeSummary is the output of the merge command.
type MergeSummary struct {
	Run    RunView  `json:"run"`
	Inputs []string `json:"inputs"`
}

func (s MergeSummary) String() string {
	return fmt.Sprintf("%s\n  merged from %s", s.Run, strings.Join(s.Inputs, ", "))
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	return newMergeCommand(&MergeOptions{RootOptions: rootOpts})
}

func newMergeCommand(opts *MergeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <run-id>...",
		Short: "Merge stored runs into a new run",
		Long: `Merge stored aggregates into a new run.

Every input run is loaded and verified against its stored digest. All
inputs must have been produced with the same configuration. The inputs
are left unchanged.

Examples:
  dimu merge --db ./dimu.db 0190a1b2-... 0190a1b3-...
  dimu merge --db ./dimu.db --all --label combined`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Label, "label", "merged", "label stored with the merged run")
	cmd.Flags().BoolVar(&opts.All, "all", false, "merge every stored run")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "merge pairwise instead of left to right")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMerge(cmd *cobra.Command, opts *MergeOptions, ids []string) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.All == (len(ids) > 0) {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "give either run ids or --all", nil)
	}

	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := openExistingStore(opts.Database, storeOpts...)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeNotFound, "open database", err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)

	var runs []store.Run
	if opts.All {
		runs, err = st.Runs(ctx)
		if err != nil {
			return out.Fail(ExitFailure, ErrCodeStore, "list runs", err)
		}
		if len(runs) == 0 {
			return out.Fail(ExitCommandError, ErrCodeNotFound, "no runs stored", nil)
		}
	} else {
		for _, id := range ids {
			run, err := st.Run(ctx, id)
			if err != nil {
				if isNotFound(err) {
					return out.Fail(ExitCommandError, ErrCodeNotFound, "unknown run", err)
				}
				return out.Fail(ExitFailure, ErrCodeStore, "read run", err)
			}
			runs = append(runs, run)
		}
	}

	digest := runs[0].ConfigDigest
	var events int64
	colls := make([]*collection.Collection, 0, len(runs))
	inputs := make([]string, 0, len(runs))
	for _, run := range runs {
		if run.ConfigDigest != digest {
			return out.Fail(ExitCommandError, ErrCodeMismatch,
				fmt.Sprintf("run %s has config %s, run %s has %s",
					run.ID, shortDigest(run.ConfigDigest), runs[0].ID, shortDigest(digest)), nil)
		}
		coll, err := st.LoadCollection(ctx, run.ID)
		if err != nil {
			return out.Fail(ExitFailure, ErrCodeStore, "load run "+run.ID, err)
		}
		slog.Debug("loaded run", "run_id", run.ID, "objects", coll.Len())
		colls = append(colls, coll)
		inputs = append(inputs, run.ID)
		events += run.Events
	}

	reduce := collection.Fold
	if opts.Tree {
		reduce = collection.TreeReduce
	}
	merged, err := reduce(colls...)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeMismatch, "merge runs", err)
	}

	run, err := st.SaveCollection(ctx, store.Run{
		Label:        opts.Label,
		ConfigDigest: digest,
		Events:       events,
	}, merged)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeStore, "save merged run", err)
	}
	slog.Info("runs merged", "run_id", run.ID, "inputs", len(inputs), "objects", run.Objects)

	return out.SuccessForRun(run.ID, MergeSummary{Run: viewOf(run), Inputs: inputs})
}
