package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bibliograph/internal/graph"
	"bibliograph/internal/storage"
	"bibliograph/pkg/types"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testGraph() *graph.Store {
	g := graph.New()
	root := &types.Entity{
		ID:        "F2_NFPL1",
		Kind:      types.KindExpression,
		Label:     "Story",
		OrderKey:  0,
		HasOrder:  true,
		SearchKey: "Collected / Story",
	}
	root.SetAttr("note", "x")
	g.AddEntity(root)
	g.AddEntity(&types.Entity{ID: "E21_P1", Kind: types.KindPerson, Label: "Author"})
	g.AddRelation("F2_NFPL2", types.RelIsDerivativeOf, "F2_NFPL1")
	g.AddRelation("F28_NFPL1", types.RelWrittenBy, "E21_P1")
	return g
}

func TestLoad_NoSnapshot(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.Load(context.Background())
	require.True(t, errors.Is(err, storage.ErrNoSnapshot), "got %v", err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	g := testGraph()

	info := storage.RunInfo{
		RunID:         "run-1",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		EntityCount:   g.EntityCount(),
		RelationCount: g.RelationCount(),
		WarningCount:  2,
	}
	require.NoError(t, store.Save(ctx, g, info))

	loaded, gotInfo, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", gotInfo.RunID)
	assert.Equal(t, 2, gotInfo.WarningCount)

	require.Equal(t, g.EntityCount(), loaded.EntityCount())
	require.Equal(t, g.RelationCount(), loaded.RelationCount())

	root, ok := loaded.Entity("F2_NFPL1")
	require.True(t, ok)
	assert.Equal(t, "Story", root.Label)
	assert.Equal(t, "Collected / Story", root.SearchKey)
	assert.True(t, root.HasOrder)
	assert.Equal(t, 0.0, root.OrderKey)
	assert.Equal(t, "x", root.Attr("note"))

	person, ok := loaded.Entity("E21_P1")
	require.True(t, ok)
	assert.False(t, person.HasOrder, "absent order key must not come back as zero")

	assert.True(t, loaded.Has("F2_NFPL2", types.RelIsDerivativeOf, "F2_NFPL1"))
	assert.True(t, loaded.Has("F28_NFPL1", types.RelWrittenBy, "E21_P1"))
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testGraph(), storage.RunInfo{RunID: "run-1", CreatedAt: time.Now().UTC()}))

	smaller := graph.New()
	smaller.AddEntity(&types.Entity{ID: "F2_NFPL9", Kind: types.KindExpression, HasOrder: true})
	require.NoError(t, store.Save(ctx, smaller, storage.RunInfo{RunID: "run-2", CreatedAt: time.Now().UTC().Add(time.Second)}))

	loaded, info, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", info.RunID)
	assert.Equal(t, 1, loaded.EntityCount())
	_, ok := loaded.Entity("F2_NFPL1")
	assert.False(t, ok, "old snapshot rows must be gone")
}

func TestSave_RejectsInvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, nil, storage.RunInfo{RunID: "run-1"})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))

	err = store.Save(ctx, graph.New(), storage.RunInfo{})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}
