package storagemanager

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/globmatch"
)

// BatchResult reports the outcome of one path/id within a batch operation.
type BatchResult struct {
	Path  string
	Entry *domain.Entry
	Err   error
}

// canParallelizeStore reports whether a batch store run may fan its items
// out across goroutines. Both deduplication and delta compression consult
// and mutate shared state (the deduplicator, and the set of base entries
// candidate for similarity matching) that a concurrent Store call would
// race against; when either is enabled, batch ingestion must run strictly
// sequentially to stay correct, not merely to be safe.
func (m *Manager) canParallelizeStore() bool {
	return !m.cfg.EnableDeduplication && !m.cfg.EnableDeltaCompression
}

// StoreBatch ingests every path in paths. When dedup and delta compression
// are both disabled, items are processed concurrently up to
// cfg.Concurrency; otherwise each Store call depends on state the previous
// one may have changed, so items run one at a time in order.
func (m *Manager) StoreBatch(ctx context.Context, paths []string) []BatchResult {
	start := time.Now()
	results := make([]BatchResult, len(paths))

	if !m.canParallelizeStore() || m.cfg.Concurrency <= 1 {
		for i, p := range paths {
			e, err := m.Store(ctx, p)
			results[i] = BatchResult{Path: p, Entry: e, Err: err}
		}
		m.recordBatch("store-batch", results, start)
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			e, err := m.Store(gctx, p)
			results[i] = BatchResult{Path: p, Entry: e, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	m.recordBatch("store-batch", results, start)
	return results
}

// ExtractBatch extracts every id in ids to destDir, preserving each entry's
// original relative path. Extract is the destructive "take out" operation:
// it removes the entry from the index and releases its hash's refcount, so
// two extracts running concurrently would race on that shared dedup and
// index state (one extract's refcount release can depend on whether a
// sibling id pointing at the same base already ran). Items therefore run
// one at a time, in order, the same way StoreBatch does when dedup or delta
// compression is enabled.
func (m *Manager) ExtractBatch(ctx context.Context, ids []string, destDir string) []BatchResult {
	start := time.Now()
	results := make([]BatchResult, len(ids))

	for i, id := range ids {
		e, err := m.idx.Get(ctx, id)
		if err != nil {
			results[i] = BatchResult{Path: id, Err: err}
			continue
		}
		destPath := filepath.Join(destDir, e.OriginalPath)
		err = m.ExtractTo(ctx, id, destPath)
		results[i] = BatchResult{Path: e.OriginalPath, Entry: e, Err: err}
	}
	m.recordBatch("extract-batch", results, start)
	return results
}

func (m *Manager) recordBatch(operation string, results []BatchResult, start time.Time) {
	var succeeded, failed int
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
		} else {
			succeeded++
		}
	}
	m.met.RecordBatch(operation, firstErr, succeeded, failed)
	m.met.RecordOperation(operation, firstErr, time.Since(start))
}

// ParseListFile reads a batch list file in the original tool's format:
// blank lines and lines starting with '#' are ignored, lines starting with
// '!' are exclude globs, everything else is an include glob. It returns
// the matched subset of candidatePaths.
func ParseListFile(listPath string, candidatePaths []string) ([]string, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var includes, excludes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			excludes = append(excludes, strings.TrimPrefix(line, "!"))
			continue
		}
		includes = append(includes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading list file: %w", err)
	}

	var matched []string
	for _, p := range candidatePaths {
		for _, pattern := range includes {
			if globmatch.Match(pattern, p) {
				matched = append(matched, p)
				break
			}
		}
	}
	return globmatch.FilterExcludes(matched, excludes), nil
}
