package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/ir"
)

func TestSaveCollection_FillsRunRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	coll := createTestCollection(t)

	run, err := s.SaveCollection(ctx, Run{Label: "lhc15o", ConfigDigest: "cfg", Events: 21}, coll)
	require.NoError(t, err)

	digest, err := coll.Digest()
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "lhc15o", run.Label)
	assert.Equal(t, digest, run.CollectionDigest)
	assert.Equal(t, ir.ToolVersion, run.ToolVersion)
	assert.Equal(t, ir.SchemaVersion, run.SchemaVersion)
	assert.Equal(t, fixedTime, run.CreatedAt)
	assert.Equal(t, 4, run.Objects)

	stored, err := s.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, stored)
}

func TestSaveCollection_SharesTemplateRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCollection(ctx, Run{Label: "a"}, createTestCollection(t))
	require.NoError(t, err)
	_, err = s.SaveCollection(ctx, Run{Label: "b"}, createTestCollection(t))
	require.NoError(t, err)

	var axes int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM axes").Scan(&axes))
	assert.Equal(t, testTemplate.Dims(), axes)
}

func TestSaveCollection_EmptyCollection(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.SaveCollection(ctx, Run{Label: "empty"}, collection.New())
	require.NoError(t, err)
	assert.Equal(t, 0, run.Objects)

	loaded, err := s.LoadCollection(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestSaveCollection_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t, "same", "same")
	ctx := context.Background()

	_, err := s.SaveCollection(ctx, Run{Label: "first"}, createTestCollection(t))
	require.NoError(t, err)
	_, err = s.SaveCollection(ctx, Run{Label: "second"}, createTestCollection(t))
	require.Error(t, err)

	var objects int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM objects").Scan(&objects))
	assert.Equal(t, 4, objects, "failed save must not leave objects behind")
}
