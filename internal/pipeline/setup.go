package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/dimu/internal/ancestry"
	"github.com/roach88/dimu/internal/classify"
	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/selection"
)

// ParseMergeStrategy maps "fold" (or "") and "tree" to a MergeStrategy.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch strings.ToLower(s) {
	case "", "fold":
		return MergeFold, nil
	case "tree":
		return MergeTree, nil
	}
	return MergeFold, fmt.Errorf("unknown merge strategy %q (want fold or tree)", s)
}

// String returns "fold" or "tree".
func (m MergeStrategy) String() string {
	if m == MergeTree {
		return "tree"
	}
	return "fold"
}

// ProcessorsFromConfig returns a RunWorkers constructor wired with the
// default collaborators: selection cuts from cfg and the MC ancestry
// resolver. Each worker gets its own cuts, since run overrides are
// per-worker state. metrics may be nil.
func ProcessorsFromConfig(cfg config.Config, logger *slog.Logger, metrics *Metrics) func(worker int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	resolver := ancestry.New()
	allow := classify.ParseAllowList(cfg.AllowList)
	thresholds := cfg.NormalizedThresholds()
	tmpl := NewDimuonTemplate(cfg.CentralityEstimator)

	return func(worker int) *Processor {
		name := fmt.Sprintf("%d", worker)
		return New(
			selection.NewCuts(cfg, logger.With("worker", name)),
			resolver,
			WithThresholds(thresholds),
			WithAllowList(allow),
			WithTemplate(tmpl),
			WithMetrics(metrics),
			WithLogger(logger),
			WithWorker(name),
		)
	}
}
