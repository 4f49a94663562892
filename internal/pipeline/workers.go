package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/event"
)

// Source yields events in input order. Next returns io.EOF after the last
// event.
type Source interface {
	Next() (*event.Event, error)
}

// MergeStrategy selects how worker collections are combined.
type MergeStrategy int

const (
	// MergeFold merges worker collections left to right.
	MergeFold MergeStrategy = iota
	// MergeTree merges worker collections pairwise.
	MergeTree
)

// DefaultBuffer is the per-worker event channel capacity.
const DefaultBuffer = 64

// WorkerConfig configures RunWorkers.
type WorkerConfig struct {
	// Workers is the number of processors. Values below one mean one.
	Workers int

	// Buffer is the per-worker channel capacity. Default: DefaultBuffer.
	Buffer int

	Merge MergeStrategy
}

// Result is the outcome of RunWorkers.
type Result struct {
	// Collection is the merged aggregate.
	Collection *collection.Collection

	// Stats holds the per-worker counters, indexed by worker.
	Stats []Stats
}

// Total sums the per-worker counters.
func (r *Result) Total() Stats {
	var t Stats
	for _, s := range r.Stats {
		t.Events += s.Events
		t.Rejected += s.Rejected
		t.Pairs += s.Pairs
		t.Filtered += s.Filtered
		t.Fills += s.Fills
		t.Dropped += s.Dropped
		t.Errors += s.Errors
	}
	return t
}

// RunWorkers processes src with shared-nothing workers. Events are dealt
// round-robin, so worker i sees events i, i+n, i+2n... in input order.
// Cancellation is observed between events. When all workers are done their
// collections are handed off and merged in worker order.
//
// Merge failures are returned together with the partial aggregate.
func RunWorkers(ctx context.Context, cfg WorkerConfig, src Source, newProcessor func(worker int) *Processor) (*Result, error) {
	n := max(cfg.Workers, 1)
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	procs := make([]*Processor, n)
	chans := make([]chan *event.Event, n)
	for i := range procs {
		procs[i] = newProcessor(i)
		chans[i] = make(chan *event.Event, buffer)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() {
			for _, ch := range chans {
				close(ch)
			}
		}()
		for i := 0; ; i++ {
			ev, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read event %d: %w", i, err)
			}
			select {
			case chans[i%n] <- ev:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for w := range procs {
		g.Go(func() error {
			for ev := range chans[w] {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := procs[w].Process(ev); err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Stats: make([]Stats, n)}
	colls := make([]*collection.Collection, n)
	for i, p := range procs {
		res.Stats[i] = p.Stats()
		colls[i] = p.Finish()
	}

	var err error
	switch cfg.Merge {
	case MergeTree:
		res.Collection, err = collection.TreeReduce(colls...)
	default:
		res.Collection, err = collection.Fold(colls...)
	}
	slog.Info("workers merged",
		"workers", n,
		"objects", res.Collection.Len(),
		"size_mb", float64(res.Collection.EstimateSize())/bytesPerMB)
	if err != nil {
		return res, fmt.Errorf("merge worker collections: %w", err)
	}
	return res, nil
}

