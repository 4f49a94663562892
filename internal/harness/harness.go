package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dimu/internal/pipeline"
	"github.com/roach88/dimu/internal/source"
	"github.com/roach88/dimu/internal/store"
	"github.com/roach88/dimu/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database, with a fixed run
// id and a deterministic clock, so repeated runs store identical records.
//
// Execution flow:
//  1. Resolve the configuration and events
//  2. Process the events with RunWorkers
//  3. Save the merged aggregate and load it back
//  4. Evaluate the assertions against the reloaded aggregate
//
// The error return is reserved for scenarios that cannot execute; failed
// assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := scenario.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	events, err := scenario.LoadEvents()
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	merge, err := pipeline.ParseMergeStrategy(scenario.Merge)
	if err != nil {
		return nil, err
	}
	workers := scenario.Workers
	if workers == 0 {
		workers = cfg.WorkerCount()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	out, err := pipeline.RunWorkers(ctx,
		pipeline.WorkerConfig{Workers: workers, Merge: merge},
		source.FromSlice(events...),
		pipeline.ProcessorsFromConfig(cfg, logger, nil),
	)
	if err != nil {
		return nil, fmt.Errorf("run workers: %w", err)
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewFixedRunID(scenario.RunID)),
		store.WithClock(testutil.NewDeterministicClock().Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfgDigest, err := cfg.Digest()
	if err != nil {
		return nil, fmt.Errorf("config digest: %w", err)
	}
	run, err := st.SaveCollection(ctx, store.Run{
		Label:        scenario.Name,
		ConfigDigest: cfgDigest,
		Events:       int64(len(events)),
	}, out.Collection)
	if err != nil {
		return nil, err
	}
	coll, err := st.LoadCollection(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Stats = out.Total()
	result.Run = run
	result.Collection = coll

	for i, a := range scenario.Assertions {
		if err := evaluate(coll, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return result, nil
}
