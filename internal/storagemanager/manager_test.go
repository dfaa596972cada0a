package storagemanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaolin/stowr/internal/config"
	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/index"
	"github.com/xiaolin/stowr/internal/logging"
	"github.com/xiaolin/stowr/internal/metrics"
)

func newTestManager(t *testing.T, mutate func(*config.Config)) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	if mutate != nil {
		mutate(cfg)
	}
	idx, err := index.OpenJSON(filepath.Join(dir, ".stowr", "index.json"))
	require.NoError(t, err)
	m, err := New(cfg, idx, logging.New("error", false), metrics.New())
	require.NoError(t, err)
	return m, dir
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, "src", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStoreAndExtractBase(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	src := writeSourceFile(t, dir, "a.txt", "hello world")
	e, err := m.Store(ctx, src)
	require.NoError(t, err)
	require.Equal(t, domain.KindBase, e.Kind())

	content, err := m.Extract(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(content))

	_, err = m.idx.Get(ctx, e.ID)
	require.Error(t, err)
	_, statErr := os.Stat(e.StoredPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestExtractReferenceLeavesBaseUntilLastDependantGone(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	srcA := writeSourceFile(t, dir, "a.txt", "duplicate content here")
	srcB := writeSourceFile(t, dir, "b.txt", "duplicate content here")
	entryA, err := m.Store(ctx, srcA)
	require.NoError(t, err)
	entryB, err := m.Store(ctx, srcB)
	require.NoError(t, err)

	content, err := m.Extract(ctx, entryB.ID)
	require.NoError(t, err)
	require.Equal(t, "duplicate content here", string(content))

	_, err = m.idx.Get(ctx, entryB.ID)
	require.Error(t, err)

	base, err := m.idx.Get(ctx, entryA.ID)
	require.NoError(t, err)
	_, statErr := os.Stat(base.StoredPath)
	require.NoError(t, statErr, "base object must survive while the base entry itself is still live")

	content, err = m.Extract(ctx, entryA.ID)
	require.NoError(t, err)
	require.Equal(t, "duplicate content here", string(content))
	_, statErr = os.Stat(base.StoredPath)
	require.True(t, os.IsNotExist(statErr), "base object must be unlinked once its last dependant is extracted")
}

func TestExtractDeltaUnlinksBlobAndLeavesBase(t *testing.T) {
	m, dir := newTestManager(t, func(c *config.Config) {
		c.EnableDeltaCompression = true
		c.SimilarityThreshold = 0.3
	})
	ctx := context.Background()

	base := "the quick brown fox jumps over the lazy dog, a pangram used everywhere"
	modified := "the quick brown fox leaps over the lazy dog, a pangram used everywhere"

	srcA := writeSourceFile(t, dir, "a.txt", base)
	srcB := writeSourceFile(t, dir, "b.txt", modified)
	entryA, err := m.Store(ctx, srcA)
	require.NoError(t, err)
	entryB, err := m.Store(ctx, srcB)
	require.NoError(t, err)
	require.Equal(t, domain.KindDelta, entryB.Kind())

	content, err := m.Extract(ctx, entryB.ID)
	require.NoError(t, err)
	require.Equal(t, modified, string(content))

	_, err = m.idx.Get(ctx, entryB.ID)
	require.Error(t, err, "delta entry must be removed from the index on extract")
	_, statErr := os.Stat(entryB.StoredPath)
	require.True(t, os.IsNotExist(statErr), "delta blob must be unlinked on extract")

	baseEntry, err := m.idx.Get(ctx, entryA.ID)
	require.NoError(t, err, "base entry must survive a dependent delta's extraction")
	_, statErr = os.Stat(baseEntry.StoredPath)
	require.NoError(t, statErr, "base object must survive a dependent delta's extraction")
}

func TestStoreSamePathIsNoOp(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	src := writeSourceFile(t, dir, "a.txt", "hello world")
	first, err := m.Store(ctx, src)
	require.NoError(t, err)
	second, err := m.Store(ctx, src)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestStoreDeduplicatesIdenticalContent(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	srcA := writeSourceFile(t, dir, "a.txt", "duplicate content here")
	srcB := writeSourceFile(t, dir, "b.txt", "duplicate content here")

	entryA, err := m.Store(ctx, srcA)
	require.NoError(t, err)
	entryB, err := m.Store(ctx, srcB)
	require.NoError(t, err)

	require.Equal(t, domain.KindBase, entryA.Kind())
	require.Equal(t, domain.KindReference, entryB.Kind())
	require.Equal(t, entryA.ID, entryB.BaseStorageID)

	content, err := m.Extract(ctx, entryB.ID)
	require.NoError(t, err)
	require.Equal(t, "duplicate content here", string(content))
}

func TestStoreDeltaEncodesSimilarFile(t *testing.T) {
	m, dir := newTestManager(t, func(c *config.Config) {
		c.EnableDeltaCompression = true
		c.SimilarityThreshold = 0.3
	})
	ctx := context.Background()

	base := "the quick brown fox jumps over the lazy dog, a pangram used everywhere"
	modified := "the quick brown fox leaps over the lazy dog, a pangram used everywhere"

	srcA := writeSourceFile(t, dir, "a.txt", base)
	srcB := writeSourceFile(t, dir, "b.txt", modified)

	entryA, err := m.Store(ctx, srcA)
	require.NoError(t, err)
	entryB, err := m.Store(ctx, srcB)
	require.NoError(t, err)

	require.Equal(t, domain.KindBase, entryA.Kind())
	require.Equal(t, domain.KindDelta, entryB.Kind())

	content, err := m.Extract(ctx, entryB.ID)
	require.NoError(t, err)
	require.Equal(t, modified, string(content))
}

func TestDeleteRemovesEntryAndObject(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	src := writeSourceFile(t, dir, "a.txt", "content to delete")
	e, err := m.Store(ctx, src)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, e.ID))
	_, err = m.idx.Get(ctx, e.ID)
	require.Error(t, err)
	_, statErr := os.Stat(e.StoredPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestRenameAndMove(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	src := writeSourceFile(t, dir, "a.txt", "renaming content")
	e, err := m.Store(ctx, src)
	require.NoError(t, err)

	require.NoError(t, m.Rename(ctx, e.ID, "b.txt"))
	got, err := m.idx.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(src), "b.txt"), got.OriginalPath)

	require.NoError(t, m.Move(ctx, e.ID, filepath.Join(dir, "other", "c.txt")))
	got, err = m.idx.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "other", "c.txt"), got.OriginalPath)
}

func TestSearchMatchesGlob(t *testing.T) {
	m, dir := newTestManager(t, nil)
	ctx := context.Background()

	writeSourceFileAndStore(t, m, dir, "notes.txt", "alpha")
	writeSourceFileAndStore(t, m, dir, "image.png", "beta")

	matches, err := m.Search(ctx, "*.txt")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, ".txt", filepath.Ext(matches[0].OriginalPath))
}

func writeSourceFileAndStore(t *testing.T, m *Manager, dir, name, content string) *domain.Entry {
	t.Helper()
	src := writeSourceFile(t, dir, name, content)
	e, err := m.Store(context.Background(), src)
	require.NoError(t, err)
	return e
}

func TestStoreBatchSequentialWhenDedupEnabled(t *testing.T) {
	m, dir := newTestManager(t, nil)
	paths := []string{
		writeSourceFile(t, dir, "a.txt", "one"),
		writeSourceFile(t, dir, "b.txt", "two"),
		writeSourceFile(t, dir, "c.txt", "one"),
	}
	results := m.StoreBatch(context.Background(), paths)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	require.Equal(t, domain.KindReference, results[2].Entry.Kind())
}

func TestStoreBatchParallelWhenDedupAndDeltaDisabled(t *testing.T) {
	m, dir := newTestManager(t, func(c *config.Config) {
		c.EnableDeduplication = false
		c.Concurrency = 4
	})
	paths := []string{
		writeSourceFile(t, dir, "a.txt", "one"),
		writeSourceFile(t, dir, "b.txt", "two"),
		writeSourceFile(t, dir, "c.txt", "three"),
	}
	results := m.StoreBatch(context.Background(), paths)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Entry)
	}
}
