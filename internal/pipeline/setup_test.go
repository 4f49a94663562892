package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/cascade"
	"github.com/roach88/dimu/internal/classify"
	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/ir"
	"github.com/roach88/dimu/internal/source"
	"github.com/roach88/dimu/internal/testutil"
)

func TestParseMergeStrategy(t *testing.T) {
	for in, want := range map[string]MergeStrategy{"": MergeFold, "fold": MergeFold, "TREE": MergeTree} {
		got, err := ParseMergeStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMergeStrategy("zipper")
	assert.Error(t, err)

	assert.Equal(t, "tree", MergeTree.String())
	assert.Equal(t, "fold", MergeFold.String())
}

func TestProcessorsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds = []float64{1}
	cfg.CentralityEstimator = "CL1"

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	src := source.FromSlice(
		testutil.DimuonEvent(1, 1, "CMUL7-B-NOPF-MUFAST"),
		testutil.DimuonEvent(1, 2, "CMUL7-B-NOPF-MUFAST"),
	)
	res, err := RunWorkers(context.Background(), WorkerConfig{Workers: 2}, src, ProcessorsFromConfig(cfg, quietLogger(), m))
	require.NoError(t, err)

	// Without MC every muon is unidentified.
	path := ir.MustPath("CMUL7", cascade.NoCutLabel, "Unidentified", classify.OppositeSign)
	h, ok := res.Collection.Histogram(path, ObjectSparse)
	require.True(t, ok)
	assert.Equal(t, int64(2), h.Entries())
	assert.Equal(t, "Centrality (CL1)", h.Template().Axis(AxisCentrality).Name())

	n, ok := res.Collection.Counter(ir.MustPath("CMUL7"), ObjectEvents)
	require.True(t, ok)
	assert.Equal(t, int64(2), n.Value())

	assert.Equal(t, 1.0, promtest.ToFloat64(m.EventsTotal.WithLabelValues("0", "accepted")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.EventsTotal.WithLabelValues("1", "accepted")))
}
