// Package domain holds the data model stowr persists in its index: the
// Entry record describing one logical stored file and its relationship to
// the physical, possibly deduplicated, possibly delta-encoded object that
// backs it.
package domain

import "time"

// EntryKind classifies how an Entry's bytes are ultimately reconstructed.
// Exactly one of Base, Reference or Delta applies to any given Entry; the
// three are mutually exclusive by construction.
type EntryKind int

const (
	// KindBase entries own their physical, independently compressed object.
	KindBase EntryKind = iota
	// KindReference entries share a physical object with another entry
	// (content-identical dedup hit); they carry no bytes of their own.
	KindReference
	// KindDelta entries are reconstructed by applying a delta against a
	// base entry's decompressed content.
	KindDelta
)

func (k EntryKind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindReference:
		return "reference"
	case KindDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Entry is the unit of bookkeeping stowr's index stores for every logical
// file it has ingested. IsReference and IsDelta are stored as independent
// booleans (the on-disk/ JSON/ SQL shape), but callers should treat the
// entry's kind as the tagged union exposed by Kind: never both true at once.
type Entry struct {
	ID                  string    `json:"id"`
	OriginalPath        string    `json:"original_path"`
	StoredPath          string    `json:"stored_path"`
	FileSize            int64     `json:"file_size"`
	CompressedSize      int64     `json:"compressed_size"`
	CreatedAt           time.Time `json:"created_at"`
	CompressionAlgorithm string   `json:"compression_algorithm"`
	Hash                string    `json:"hash"`
	IsReference         bool      `json:"is_reference"`
	BaseStorageID       string    `json:"base_storage_id,omitempty"`
	IsDelta             bool      `json:"is_delta"`
	SimilarityScore     float64   `json:"similarity_score,omitempty"`
}

// Kind resolves the tagged union the storage manager and index reason about.
// A malformed record with both IsReference and IsDelta set is reported as
// KindDelta, since delta reconstruction additionally needs BaseStorageID and
// is the more specific of the two.
func (e *Entry) Kind() EntryKind {
	if e.IsDelta {
		return KindDelta
	}
	if e.IsReference {
		return KindReference
	}
	return KindBase
}

// NewBaseEntry constructs an Entry that owns its physical compressed object.
func NewBaseEntry(id, originalPath, storedPath string, fileSize, compressedSize int64, algo, hash string) *Entry {
	return &Entry{
		ID:                   id,
		OriginalPath:         originalPath,
		StoredPath:           storedPath,
		FileSize:             fileSize,
		CompressedSize:       compressedSize,
		CreatedAt:            time.Now().UTC(),
		CompressionAlgorithm: algo,
		Hash:                 hash,
	}
}

// NewReferenceEntry constructs an Entry that shares a base's physical object.
func NewReferenceEntry(id, originalPath, baseStorageID string, fileSize int64, algo, hash string) *Entry {
	return &Entry{
		ID:                   id,
		OriginalPath:         originalPath,
		StoredPath:           "",
		FileSize:             fileSize,
		CompressedSize:       0,
		CreatedAt:            time.Now().UTC(),
		CompressionAlgorithm: algo,
		Hash:                 hash,
		IsReference:          true,
		BaseStorageID:        baseStorageID,
	}
}

// NewDeltaEntry constructs an Entry reconstructed by applying a delta blob
// against the content of the entry identified by baseStorageID.
func NewDeltaEntry(id, originalPath, storedPath, baseStorageID string, fileSize, compressedSize int64, algo, hash string, similarity float64) *Entry {
	return &Entry{
		ID:                   id,
		OriginalPath:         originalPath,
		StoredPath:           storedPath,
		FileSize:             fileSize,
		CompressedSize:       compressedSize,
		CreatedAt:            time.Now().UTC(),
		CompressionAlgorithm: algo,
		Hash:                 hash,
		IsDelta:              true,
		BaseStorageID:        baseStorageID,
		SimilarityScore:      similarity,
	}
}
