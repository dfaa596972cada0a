package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/storeerr"
)

// SQLIndex stores entries in an embedded SQLite database via
// modernc.org/sqlite, a cgo-free driver. It is selected once a store
// crosses autoThreshold entries, where JSON's full-file rewrite per
// mutation would start to dominate write latency.
type SQLIndex struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	original_path TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	compressed_size INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	compression_algorithm TEXT NOT NULL,
	hash TEXT NOT NULL,
	is_reference INTEGER NOT NULL,
	base_storage_id TEXT,
	is_delta INTEGER NOT NULL,
	similarity_score REAL
);
CREATE INDEX IF NOT EXISTS idx_files_original_path ON files(original_path);
CREATE INDEX IF NOT EXISTS idx_files_hash ON files(hash);
`

// OpenSQL opens (creating if absent) the SQLite database backing the index
// at path.
func OpenSQL(path string) (*SQLIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite db: %v", storeerr.ErrIndexError, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", storeerr.ErrIndexError, err)
	}
	return &SQLIndex{db: db}, nil
}

func (idx *SQLIndex) Add(ctx context.Context, e *domain.Entry) error {
	var existing int
	if err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE id = ?`, e.ID).Scan(&existing); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIndexError, err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: entry %s already indexed", storeerr.ErrAlreadyExists, e.ID)
	}
	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO files (id, original_path, stored_path, file_size, compressed_size,
			created_at, compression_algorithm, hash, is_reference, base_storage_id,
			is_delta, similarity_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OriginalPath, e.StoredPath, e.FileSize, e.CompressedSize,
		e.CreatedAt.Format(time.RFC3339Nano), e.CompressionAlgorithm, e.Hash,
		boolToInt(e.IsReference), nullableString(e.BaseStorageID), boolToInt(e.IsDelta),
		e.SimilarityScore)
	if err != nil {
		return fmt.Errorf("%w: inserting entry %s: %v", storeerr.ErrIndexError, e.ID, err)
	}
	return nil
}

func (idx *SQLIndex) Get(ctx context.Context, id string) (*domain.Entry, error) {
	row := idx.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM files WHERE id = ?`, id)
	return scanEntry(row)
}

func (idx *SQLIndex) GetByOriginalPath(ctx context.Context, path string) (*domain.Entry, error) {
	row := idx.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM files WHERE original_path = ?`, path)
	return scanEntry(row)
}

func (idx *SQLIndex) Remove(ctx context.Context, id string) error {
	res, err := idx.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting entry %s: %v", storeerr.ErrIndexError, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIndexError, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: entry %s", storeerr.ErrNotFound, id)
	}
	return nil
}

func (idx *SQLIndex) List(ctx context.Context) ([]*domain.Entry, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM files`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %v", storeerr.ErrIndexError, err)
	}
	defer rows.Close()
	var out []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (idx *SQLIndex) Rename(ctx context.Context, id, newOriginalPath string) error {
	var conflict int
	if err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE original_path = ? AND id != ?`, newOriginalPath, id).Scan(&conflict); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIndexError, err)
	}
	if conflict > 0 {
		return fmt.Errorf("%w: path %s", storeerr.ErrAlreadyExists, newOriginalPath)
	}
	res, err := idx.db.ExecContext(ctx, `UPDATE files SET original_path = ? WHERE id = ?`, newOriginalPath, id)
	if err != nil {
		return fmt.Errorf("%w: renaming entry %s: %v", storeerr.ErrIndexError, id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: entry %s", storeerr.ErrNotFound, id)
	}
	return nil
}

func (idx *SQLIndex) Move(ctx context.Context, id, newOriginalPath string) error {
	return idx.Rename(ctx, id, newOriginalPath)
}

func (idx *SQLIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", storeerr.ErrIndexError, err)
	}
	return n, nil
}

func (idx *SQLIndex) Close() error {
	return idx.db.Close()
}

const selectColumns = `id, original_path, stored_path, file_size, compressed_size, created_at,
	compression_algorithm, hash, is_reference, base_storage_id, is_delta, similarity_score`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*domain.Entry, error) {
	var e domain.Entry
	var createdAt string
	var isRef, isDelta int
	var baseStorageID sql.NullString
	var similarity sql.NullFloat64
	err := s.Scan(&e.ID, &e.OriginalPath, &e.StoredPath, &e.FileSize, &e.CompressedSize,
		&createdAt, &e.CompressionAlgorithm, &e.Hash, &isRef, &baseStorageID, &isDelta, &similarity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w", storeerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning entry: %v", storeerr.ErrIndexError, err)
	}
	e.IsReference = isRef != 0
	e.IsDelta = isDelta != 0
	e.BaseStorageID = baseStorageID.String
	e.SimilarityScore = similarity.Float64
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		e.CreatedAt = t
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
