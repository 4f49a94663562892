package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/ir"
)

func TestLoadCollection_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	coll := createTestCollection(t)

	run, err := s.SaveCollection(ctx, Run{Label: "rt"}, coll)
	require.NoError(t, err)

	loaded, err := s.LoadCollection(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, coll.Equal(loaded))

	h, ok := loaded.Histogram(ir.MustPath("CMUL7", "trackletDistCuts_none", "signal", "OS"), "DimuSparse")
	require.True(t, ok)
	assert.Equal(t, int64(2), h.Entries())
	assert.Equal(t, int64(1), h.Dropped())
	assert.Equal(t, 1.5, h.Sum())

	n, ok := loaded.Counter(ir.MustPath("CINT7"), "nevents")
	require.True(t, ok)
	assert.Equal(t, int64(11), n.Value())
}

func TestLoadCollection_MergeAfterLoad(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, err := s.SaveCollection(ctx, Run{}, createTestCollection(t))
	require.NoError(t, err)
	b, err := s.SaveCollection(ctx, Run{}, createTestCollection(t))
	require.NoError(t, err)

	la, err := s.LoadCollection(ctx, a.ID)
	require.NoError(t, err)
	lb, err := s.LoadCollection(ctx, b.ID)
	require.NoError(t, err)
	merged, err := collection.Fold(la, lb)
	require.NoError(t, err)

	n, ok := merged.Counter(ir.MustPath("CMUL7"), "nevents")
	require.True(t, ok)
	assert.Equal(t, int64(20), n.Value())
}

func TestLoadCollection_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadCollection(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestLoadCollection_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.SaveCollection(ctx, Run{}, createTestCollection(t))
	require.NoError(t, err)

	_, err = s.db.Exec("UPDATE objects SET count = count + 1 WHERE kind = 'counter'")
	require.NoError(t, err)

	_, err = s.LoadCollection(ctx, run.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t, "zzz", "aaa", "mmm")
	ctx := context.Background()

	for _, label := range []string{"first", "second", "third"} {
		_, err := s.SaveCollection(ctx, Run{Label: label}, createTestCollection(t))
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"zzz", "aaa", "mmm"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	for i, r := range runs {
		assert.Equal(t, int64(i+1), r.Seq)
		assert.Equal(t, 4, r.Objects)
	}

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mmm", latest.ID)
}

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.LatestRun(ctx)
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.Run(ctx, "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}
