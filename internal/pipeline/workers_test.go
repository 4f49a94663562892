package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/event"
	"github.com/roach88/dimu/internal/source"
	"github.com/roach88/dimu/internal/testutil"
)

func stubFactory(labels ...string) func(int) *Processor {
	return func(worker int) *Processor {
		p, _ := newStubProcessor(labels, WithWorker(fmt.Sprint(worker)))
		return p
	}
}

func TestRunWorkersTwoWorkersSamePair(t *testing.T) {
	src := source.FromSlice(
		testutil.DimuonEvent(1, 1, "trig0"),
		testutil.DimuonEvent(1, 1, "trig0"),
	)
	res, err := RunWorkers(context.Background(), WorkerConfig{Workers: 2}, src, stubFactory("trig0"))
	require.NoError(t, err)

	h, ok := res.Collection.Histogram(signalOS, ObjectSparse)
	require.True(t, ok)
	assert.Equal(t, 2.0, h.Sum())
	assert.Equal(t, 1, h.Len(), "both samples share one bin")

	require.Len(t, res.Stats, 2)
	assert.Equal(t, int64(1), res.Stats[0].Events)
	assert.Equal(t, int64(1), res.Stats[1].Events)
	assert.Equal(t, int64(2), res.Total().Fills)
}

func manyEvents(n int) []*event.Event {
	events := make([]*event.Event, n)
	for i := range events {
		trigger := "trig0"
		if i%3 == 0 {
			trigger = "trig1"
		}
		ev := testutil.NewEvent(1+i/10, i).
			Triggers(trigger).
			Centrality(float64(i%100)).
			Tracks(
				testutil.Muon(1+float64(i%7), -3, 0.1*float64(i%60), 1),
				testutil.Muon(2+float64(i%5), -3.3, 0.2*float64(i%30), -1),
				testutil.Muon(3, -2.8, 1, 1),
			).
			Build()
		events[i] = ev
	}
	return events
}

// triggerEcho reports the event's own triggers as labels.
type triggerEcho struct{ testutil.StubAuthority }

func (a *triggerEcho) Triggers(ev *event.Event) []string { return ev.Triggers }

func echoFactory(worker int) *Processor {
	return New(&triggerEcho{}, testutil.FixedResolver{Label: "signal"},
		WithLogger(quietLogger()), WithWorker(fmt.Sprint(worker)))
}

func TestRunWorkersIndependentOfWorkerCount(t *testing.T) {
	events := manyEvents(200)

	var digests []string
	for _, cfg := range []WorkerConfig{
		{Workers: 1},
		{Workers: 3},
		{Workers: 4, Merge: MergeTree},
		{Workers: 7, Merge: MergeTree, Buffer: 1},
	} {
		res, err := RunWorkers(context.Background(), cfg, source.FromSlice(events...), echoFactory)
		require.NoError(t, err)
		d, err := res.Collection.Digest()
		require.NoError(t, err)
		digests = append(digests, d)
		assert.Equal(t, int64(200), res.Total().Events)
	}
	for _, d := range digests[1:] {
		assert.Equal(t, digests[0], d)
	}
}

// orderAuthority records the event numbers each worker sees.
type orderAuthority struct {
	testutil.StubAuthority
	mu   *sync.Mutex
	seen map[int][]int
	id   int
}

func (a *orderAuthority) IsEventSelected(ev *event.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen[a.id] = append(a.seen[a.id], ev.Number)
	return false
}

func TestRunWorkersDealsRoundRobin(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int][]int)
	factory := func(worker int) *Processor {
		return New(&orderAuthority{mu: &mu, seen: seen, id: worker}, testutil.FixedResolver{},
			WithLogger(quietLogger()))
	}

	_, err := RunWorkers(context.Background(), WorkerConfig{Workers: 3}, source.FromSlice(manyEvents(10)...), factory)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6, 9}, seen[0])
	assert.Equal(t, []int{1, 4, 7}, seen[1])
	assert.Equal(t, []int{2, 5, 8}, seen[2])
}

type failingSource struct{ n int }

func (s *failingSource) Next() (*event.Event, error) {
	if s.n == 0 {
		return nil, errors.New("disk on fire")
	}
	s.n--
	return testutil.DimuonEvent(1, s.n, "trig0"), nil
}

func TestRunWorkersSourceError(t *testing.T) {
	_, err := RunWorkers(context.Background(), WorkerConfig{Workers: 2}, &failingSource{n: 3}, stubFactory("trig0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read event 3")
}

func TestRunWorkersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunWorkers(ctx, WorkerConfig{Workers: 2}, source.FromSlice(manyEvents(500)...), stubFactory("trig0"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWorkersEmptyInput(t *testing.T) {
	res, err := RunWorkers(context.Background(), WorkerConfig{}, source.FromSlice(), stubFactory("trig0"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Collection.Len())
	assert.True(t, res.Collection.Equal(collection.New()))
}
