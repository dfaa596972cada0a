package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/storeerr"
)

func newEntry(id, path string) *domain.Entry {
	return &domain.Entry{
		ID:                   id,
		OriginalPath:         path,
		StoredPath:           "objects/" + id,
		FileSize:             10,
		CompressedSize:       5,
		CreatedAt:            time.Now().UTC(),
		CompressionAlgorithm: "gzip",
		Hash:                 "deadbeef" + id,
	}
}

func eachBackend(t *testing.T) map[string]Index {
	t.Helper()
	dir := t.TempDir()
	jsonIdx, err := OpenJSON(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	sqlIdx, err := OpenSQL(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	return map[string]Index{"json": jsonIdx, "sql": sqlIdx}
}

func TestIndexAddGetRemove(t *testing.T) {
	for name, idx := range eachBackend(t) {
		idx := idx
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEntry("a1", "/files/a.txt")
			require.NoError(t, idx.Add(ctx, e))

			got, err := idx.Get(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, "/files/a.txt", got.OriginalPath)

			got2, err := idx.GetByOriginalPath(ctx, "/files/a.txt")
			require.NoError(t, err)
			require.Equal(t, "a1", got2.ID)

			require.NoError(t, idx.Remove(ctx, "a1"))
			_, err = idx.Get(ctx, "a1")
			require.True(t, errors.Is(err, storeerr.ErrNotFound))
		})
	}
}

func TestIndexDuplicateAddRejected(t *testing.T) {
	for name, idx := range eachBackend(t) {
		idx := idx
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.Add(ctx, newEntry("a1", "/x")))
			err := idx.Add(ctx, newEntry("a1", "/y"))
			require.True(t, errors.Is(err, storeerr.ErrAlreadyExists))
		})
	}
}

func TestIndexListAndCount(t *testing.T) {
	for name, idx := range eachBackend(t) {
		idx := idx
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.Add(ctx, newEntry("a1", "/x")))
			require.NoError(t, idx.Add(ctx, newEntry("a2", "/y")))

			list, err := idx.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)

			count, err := idx.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 2, count)
		})
	}
}

func TestIndexRenameConflict(t *testing.T) {
	for name, idx := range eachBackend(t) {
		idx := idx
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.Add(ctx, newEntry("a1", "/x")))
			require.NoError(t, idx.Add(ctx, newEntry("a2", "/y")))

			err := idx.Rename(ctx, "a1", "/y")
			require.True(t, errors.Is(err, storeerr.ErrAlreadyExists))

			require.NoError(t, idx.Rename(ctx, "a1", "/z"))
			got, err := idx.Get(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, "/z", got.OriginalPath)
		})
	}
}

func TestIndexMoveUpdatesPath(t *testing.T) {
	for name, idx := range eachBackend(t) {
		idx := idx
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.Add(ctx, newEntry("a1", "/dir1/x")))
			require.NoError(t, idx.Move(ctx, "a1", "/dir2/x"))
			got, err := idx.Get(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, "/dir2/x", got.OriginalPath)
		})
	}
}

func TestAutoBackendStartsOnJSONBelowThreshold(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := Open(ctx, dir, BackendAuto)
	require.NoError(t, err)
	if _, ok := idx.(*JSONIndex); !ok {
		t.Fatalf("expected JSON backend below threshold, got %T", idx)
	}
	idx.Close()
}
