// Package storagemanager orchestrates every other package into stowr's
// public operations: store, extract, list, search, rename, move and
// delete. It mirrors the original storage manager's flow (hash, dedup
// check, delta check, else store as base) while correcting its
// compression dispatch to always use the entry's own recorded algorithm
// rather than inferring one from a file extension.
package storagemanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xiaolin/stowr/internal/compression"
	"github.com/xiaolin/stowr/internal/config"
	"github.com/xiaolin/stowr/internal/dedup"
	"github.com/xiaolin/stowr/internal/deltacodec"
	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/globmatch"
	"github.com/xiaolin/stowr/internal/hasher"
	"github.com/xiaolin/stowr/internal/index"
	"github.com/xiaolin/stowr/internal/metrics"
	"github.com/xiaolin/stowr/internal/storeerr"
)

// Manager ties the index, deduplicator and codecs together behind stowr's
// operation surface. It is not safe for concurrent Store calls against the
// same store: the concurrency model is cooperative single-writer, batch
// parallelism included, so callers serialize mutating calls themselves
// except where StoreBatch documents it is safe to fan out.
type Manager struct {
	cfg    *config.Config
	idx    index.Index
	dedup  *dedup.Deduplicator
	log    zerolog.Logger
	met    *metrics.Metrics
}

// New constructs a Manager over an already-open index, rebuilding its
// in-memory dedup state from the index's current contents. A failure to
// rebuild is logged, not fatal: dedup simply starts cold and repairs
// itself the next time a hash collides.
func New(cfg *config.Config, idx index.Index, log zerolog.Logger, met *metrics.Metrics) (*Manager, error) {
	m := &Manager{cfg: cfg, idx: idx, log: log, met: met}
	entries, err := idx.List(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("failed to list index during dedup rebuild, starting cold")
		m.dedup = dedup.New()
		return m, nil
	}
	m.dedup = dedup.RebuildFromEntries(entries)
	return m, nil
}

func (m *Manager) objectPath(id, ext string) string {
	name := id
	if ext != "" {
		name = id + "." + ext
	}
	return filepath.Join(m.cfg.StoragePath, "objects", id[0:2], id[2:4], name)
}

func fileTypeTag(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "unknown"
	}
	return strings.TrimPrefix(ext, ".")
}

// Store ingests the file at originalPath. If that path is already tracked
// the call is a no-op and returns the existing entry. Otherwise content is
// hashed; a dedup hit produces a reference entry; failing that, if delta
// compression is enabled and a sufficiently similar base entry exists, a
// delta entry is produced against it; otherwise the content is compressed
// and stored as a new base entry.
func (m *Manager) Store(ctx context.Context, originalPath string) (entry *domain.Entry, err error) {
	start := time.Now()
	defer func() { m.met.RecordOperation("store", err, time.Since(start)) }()

	if existing, getErr := m.idx.GetByOriginalPath(ctx, originalPath); getErr == nil {
		return existing, nil
	}

	data, err := os.ReadFile(originalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", storeerr.ErrIoError, originalPath, err)
	}
	hash := hasher.Hash(data)

	if m.cfg.EnableDeduplication {
		if baseID, ok := m.dedup.Lookup(hash); ok {
			e := domain.NewReferenceEntry(uuid.NewString(), originalPath, baseID, int64(len(data)), m.cfg.CompressionAlgorithm, hash)
			if err := m.idx.Add(ctx, e); err != nil {
				return nil, err
			}
			m.dedup.AddReference(hash, baseID)
			m.met.RecordDeduplicationHit()
			m.log.Debug().Str("id", e.ID).Str("base", baseID).Msg("store resolved to dedup reference")
			return e, nil
		}
	}

	if m.cfg.EnableDeltaCompression {
		if baseEntry, baseContent, score, ok := m.findSimilarBase(ctx, data, originalPath); ok {
			e, err := m.storeAsDelta(ctx, originalPath, data, baseEntry, baseContent, score)
			if err != nil {
				return nil, err
			}
			m.met.RecordDeltaEncoded()
			return e, nil
		}
	}

	return m.storeAsBase(ctx, originalPath, data, hash)
}

func (m *Manager) storeAsBase(ctx context.Context, originalPath string, data []byte, hash string) (*domain.Entry, error) {
	codec, err := compression.New(m.cfg.CompressionAlgorithm, m.cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storedPath := m.objectPath(id, codec.Extension())
	if err := writeObject(storedPath, compressed); err != nil {
		return nil, err
	}

	e := domain.NewBaseEntry(id, originalPath, storedPath, int64(len(data)), int64(len(compressed)), codec.Name(), hash)
	if err := m.idx.Add(ctx, e); err != nil {
		return nil, err
	}
	if m.cfg.EnableDeduplication {
		m.dedup.Register(hash, id)
	}
	m.met.RecordStore(e.FileSize, e.CompressedSize)
	return e, nil
}

// findSimilarBase scans every base entry's decompressed content for the
// best similarity score against data, applying the file-type bonus before
// comparing to the configured threshold, and returns the first candidate
// clearing it with the highest score.
func (m *Manager) findSimilarBase(ctx context.Context, data []byte, originalPath string) (*domain.Entry, []byte, float64, bool) {
	entries, err := m.idx.List(ctx)
	if err != nil {
		return nil, nil, 0, false
	}
	targetType := fileTypeTag(originalPath)

	var best *domain.Entry
	var bestContent []byte
	var bestScore float64

	for _, e := range entries {
		if e.Kind() != domain.KindBase {
			continue
		}
		content, err := m.readAndDecompress(e)
		if err != nil {
			continue
		}
		score := deltacodec.Score(content, data) + deltacodec.TypeBonus(targetType, fileTypeTag(e.OriginalPath))
		if score >= m.cfg.SimilarityThreshold && score > bestScore {
			best, bestContent, bestScore = e, content, score
		}
	}
	if best == nil {
		return nil, nil, 0, false
	}
	return best, bestContent, bestScore, true
}

func (m *Manager) storeAsDelta(ctx context.Context, originalPath string, data []byte, base *domain.Entry, baseContent []byte, score float64) (*domain.Entry, error) {
	if m.cfg.DeltaAlgorithm != config.DeltaAlgoSimple {
		return nil, fmt.Errorf("%w: delta algorithm %q", storeerr.ErrNotImplemented, m.cfg.DeltaAlgorithm)
	}
	blob := deltacodec.Encode(baseContent, data)

	codec, err := compression.New(m.cfg.CompressionAlgorithm, m.cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(blob)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storedPath := m.objectPath(id, "delta."+codec.Extension())
	if err := writeObject(storedPath, compressed); err != nil {
		return nil, err
	}

	hash := hasher.Hash(data)
	e := domain.NewDeltaEntry(id, originalPath, storedPath, base.ID, int64(len(data)), int64(len(compressed)), codec.Name(), hash, score)
	if err := m.idx.Add(ctx, e); err != nil {
		return nil, err
	}
	m.met.RecordStore(e.FileSize, e.CompressedSize)
	return e, nil
}

func writeObject(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	return nil
}

func (m *Manager) readAndDecompress(e *domain.Entry) ([]byte, error) {
	raw, err := os.ReadFile(e.StoredPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading object for %s: %v", storeerr.ErrIoError, e.ID, err)
	}
	codec, err := compression.New(e.CompressionAlgorithm, -1)
	if err != nil {
		return nil, err
	}
	return codec.Decompress(raw)
}

// Extract is the destructive "take out" operation: it reconstructs the
// content for id, dispatching on the entry's kind the same way readAndDecompress
// always has, but then removes id from the index and settles the physical
// object it was keeping alive. A base or reference releases its hash's
// refcount and unlinks the shared physical object once the last dependant is
// gone; a delta always unlinks its own delta blob and leaves the base (and
// the base's refcount) untouched, since a delta never held that refcount
// down by itself. The compression algorithm used to read content is always
// the one recorded on the relevant entry, never guessed from a file name.
func (m *Manager) Extract(ctx context.Context, id string) (content []byte, err error) {
	start := time.Now()
	defer func() { m.met.RecordOperation("extract", err, time.Since(start)) }()

	e, err := m.idx.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch e.Kind() {
	case domain.KindBase:
		content, err = m.readAndDecompress(e)
		if err != nil {
			return nil, err
		}
		if m.dedup.ReleaseByHash(e.Hash) {
			if rmErr := os.Remove(e.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
				return nil, fmt.Errorf("%w: removing object for %s: %v", storeerr.ErrIoError, id, rmErr)
			}
		}
		if err := m.idx.Remove(ctx, id); err != nil {
			return nil, err
		}
		return content, nil

	case domain.KindReference:
		base, err := m.idx.Get(ctx, e.BaseStorageID)
		if err != nil {
			return nil, fmt.Errorf("%w: base %s for reference %s: %v", storeerr.ErrMissingBase, e.BaseStorageID, id, err)
		}
		content, err = m.readAndDecompress(base)
		if err != nil {
			return nil, err
		}
		if m.dedup.ReleaseByHash(e.Hash) {
			if rmErr := os.Remove(base.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
				return nil, fmt.Errorf("%w: removing object for %s: %v", storeerr.ErrIoError, id, rmErr)
			}
		}
		if err := m.idx.Remove(ctx, id); err != nil {
			return nil, err
		}
		return content, nil

	case domain.KindDelta:
		base, err := m.idx.Get(ctx, e.BaseStorageID)
		if err != nil {
			return nil, fmt.Errorf("%w: base %s for delta %s: %v", storeerr.ErrMissingBase, e.BaseStorageID, id, err)
		}
		baseContent, err := m.readAndDecompress(base)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(e.StoredPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading delta object for %s: %v", storeerr.ErrIoError, id, err)
		}
		codec, err := compression.New(e.CompressionAlgorithm, -1)
		if err != nil {
			return nil, err
		}
		blob, err := codec.Decompress(raw)
		if err != nil {
			return nil, err
		}
		content, err = deltacodec.Apply(baseContent, blob)
		if err != nil {
			return nil, err
		}
		if rmErr := os.Remove(e.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("%w: removing delta object for %s: %v", storeerr.ErrIoError, id, rmErr)
		}
		if err := m.idx.Remove(ctx, id); err != nil {
			return nil, err
		}
		return content, nil

	default:
		return nil, fmt.Errorf("%w: entry %s has unknown kind", storeerr.ErrInvalidInput, id)
	}
}

// ExtractTo extracts id and writes the result to destPath.
func (m *Manager) ExtractTo(ctx context.Context, id, destPath string) error {
	content, err := m.Extract(ctx, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	return nil
}

// List returns every tracked entry.
func (m *Manager) List(ctx context.Context) ([]*domain.Entry, error) {
	return m.idx.List(ctx)
}

// Search returns every entry whose original path matches pattern under
// globmatch.Match: a glob match, or else a plain substring match.
func (m *Manager) Search(ctx context.Context, pattern string) ([]*domain.Entry, error) {
	entries, err := m.idx.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Entry
	for _, e := range entries {
		if globmatch.Match(pattern, e.OriginalPath) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Rename updates id's tracked original path within the same directory.
func (m *Manager) Rename(ctx context.Context, id, newName string) error {
	e, err := m.idx.Get(ctx, id)
	if err != nil {
		return err
	}
	newPath := filepath.Join(filepath.Dir(e.OriginalPath), newName)
	return m.idx.Rename(ctx, id, newPath)
}

// Move updates id's tracked original path to an entirely new path.
func (m *Manager) Move(ctx context.Context, id, newPath string) error {
	return m.idx.Move(ctx, id, newPath)
}

// Delete removes id from the index and unlinks whatever physical object it
// owns, without consulting or updating any other entry's refcount. Deleting
// a base entry that other references or deltas still depend on leaves
// those entries unable to resolve; this mirrors the hazard the storage
// manager has always carried and the caller is responsible for avoiding it.
func (m *Manager) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { m.met.RecordOperation("delete", err, time.Since(start)) }()

	e, err := m.idx.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.StoredPath != "" {
		if rmErr := os.Remove(e.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("%w: removing object for %s: %v", storeerr.ErrIoError, id, rmErr)
		}
	}
	return m.idx.Remove(ctx, id)
}

// ExtractAll extracts every tracked entry under destDir, preserving each
// entry's original relative path.
func (m *Manager) ExtractAll(ctx context.Context, destDir string) (succeeded, failed int, err error) {
	entries, err := m.idx.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		destPath := filepath.Join(destDir, e.OriginalPath)
		if err := m.ExtractTo(ctx, e.ID, destPath); err != nil {
			m.log.Warn().Err(err).Str("id", e.ID).Msg("extract-all failed for entry")
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}
