package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/dimu/internal/pipeline"
	"github.com/roach88/dimu/internal/source"
	"github.com/roach88/dimu/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database    string
	Config      string
	Workers     int
	Merge       string
	Label       string
	Strict      bool
	MetricsFile string

	// IDGenerator overrides the run id generator (for testing).
	// If nil, the store uses UUIDv7.
	IDGenerator store.IDGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	Run      RunView `json:"run"`
	Workers  int     `json:"workers"`
	Merge    string  `json:"merge"`
	Events   int64   `json:"events"`
	Rejected int64   `json:"rejected"`
	Pairs    int64   `json:"pairs"`
	Filtered int64   `json:"filtered"`
	Fills    int64   `json:"fills"`
	Dropped  int64   `json:"dropped"`
	Errors   int64   `json:"errors"`
	Skipped  int     `json:"skipped_lines"`
}

func (s RunSummary) String() string {
	return fmt.Sprintf("%s\n  workers=%d merge=%s events=%d rejected=%d pairs=%d filtered=%d fills=%d dropped=%d errors=%d skipped_lines=%d",
		s.Run, s.Workers, s.Merge, s.Events, s.Rejected, s.Pairs, s.Filtered, s.Fills, s.Dropped, s.Errors, s.Skipped)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [events.jsonl]",
		Short: "Process events into a stored aggregate",
		Long: `Process collision events into a new stored run.

Events are read as JSON Lines from the given file, or from stdin when the
argument is omitted or "-". Each worker fills its own aggregate; the
aggregates are merged once all events are processed and the result is
written to the database in one transaction.

Malformed lines are logged and skipped unless --strict is set.

Examples:
  dimu run --db ./dimu.db events.jsonl
  dimu run --db ./dimu.db --config analysis.cue --workers 4 events.jsonl
  cat events.jsonl | dimu run --db ./dimu.db --label lhc15o`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runProcess(cmd, opts, input)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (.yaml, .yml or .cue); defaults apply when omitted")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "number of workers (0 uses the config value)")
	cmd.Flags().StringVar(&opts.Merge, "merge", "fold", "merge strategy (fold|tree)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label stored with the run")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on malformed event lines")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write worker metrics in Prometheus text format")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runProcess(cmd *cobra.Command, opts *RunOptions, input string) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "invalid config", err)
	}
	merge, err := pipeline.ParseMergeStrategy(opts.Merge)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "invalid merge strategy", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.WorkerCount()
	}

	var in io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeNotFound, "cannot open events", err)
		}
		defer f.Close()
		in = f
	}
	readerOpts := []source.ReaderOption{source.WithLogger(slog.Default())}
	if opts.Strict {
		readerOpts = append(readerOpts, source.Strict())
	}
	reader := source.NewReader(in, readerOpts...)

	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeGeneric, "register metrics", err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("processing events", "input", input, "workers", workers, "merge", merge)
	res, err := pipeline.RunWorkers(ctx,
		pipeline.WorkerConfig{Workers: workers, Merge: merge},
		reader,
		pipeline.ProcessorsFromConfig(cfg, slog.Default(), metrics),
	)
	if err != nil {
		code := ErrCodeProcessing
		var derr *source.DecodeError
		if errors.As(err, &derr) {
			code = ErrCodeInput
		}
		return out.Fail(ExitFailure, code, "processing failed", err)
	}

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return out.Fail(ExitFailure, ErrCodeWrite, "write metrics", err)
		}
	}

	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "open database", err)
	}
	defer st.Close()

	cfgDigest, err := cfg.Digest()
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeConfig, "config digest", err)
	}
	total := res.Total()
	run, err := st.SaveCollection(ctx, store.Run{
		Label:        opts.Label,
		ConfigDigest: cfgDigest,
		Events:       total.Events,
	}, res.Collection)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeStore, "save aggregate", err)
	}
	slog.Info("run stored", "run_id", run.ID, "seq", run.Seq, "objects", run.Objects)

	return out.SuccessForRun(run.ID, RunSummary{
		Run:      viewOf(run),
		Workers:  workers,
		Merge:    merge.String(),
		Events:   total.Events,
		Rejected: total.Rejected,
		Pairs:    total.Pairs,
		Filtered: total.Filtered,
		Fills:    total.Fills,
		Dropped:  total.Dropped,
		Errors:   total.Errors,
		Skipped:  reader.Skipped(),
	})
}

// cmdContext returns the command context, or Background when the command
// was executed without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
