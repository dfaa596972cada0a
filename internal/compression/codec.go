// Package compression implements stowr's three interchangeable compression
// codecs and the registry the storage manager uses to pick one by name.
package compression

import (
	"fmt"

	"github.com/xiaolin/stowr/internal/storeerr"
)

// Codec compresses and decompresses byte slices for one algorithm at one
// validated level. A Codec instance is immutable and safe for concurrent use.
type Codec interface {
	// Name is the algorithm identifier stored in an Entry's
	// CompressionAlgorithm field: "gzip", "zstd" or "lz4".
	Name() string
	// Level is the compression level this codec was constructed with.
	Level() int
	// Extension is the informational file extension for this algorithm.
	// It is never consulted to decide how to decompress data; the entry's
	// recorded CompressionAlgorithm is always authoritative for that.
	Extension() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	AlgoGzip = "gzip"
	AlgoZstd = "zstd"
	AlgoLZ4  = "lz4"
)

// DefaultLevel returns the default compression level for algo.
func DefaultLevel(algo string) (int, error) {
	switch algo {
	case AlgoGzip:
		return 6, nil
	case AlgoZstd:
		return 3, nil
	case AlgoLZ4:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression algorithm %q", storeerr.ErrInvalidInput, algo)
	}
}

// ValidateLevel checks that level is legal for algo.
func ValidateLevel(algo string, level int) error {
	switch algo {
	case AlgoGzip:
		if level < 0 || level > 9 {
			return fmt.Errorf("%w: gzip level must be in [0,9], got %d", storeerr.ErrInvalidInput, level)
		}
	case AlgoZstd:
		if level < 1 || level > 22 {
			return fmt.Errorf("%w: zstd level must be in [1,22], got %d", storeerr.ErrInvalidInput, level)
		}
	case AlgoLZ4:
		if level != 0 {
			return fmt.Errorf("%w: lz4 has no configurable level, got %d", storeerr.ErrInvalidInput, level)
		}
	default:
		return fmt.Errorf("%w: unknown compression algorithm %q", storeerr.ErrInvalidInput, algo)
	}
	return nil
}

// New builds the Codec for algo at level, validating level first. Pass a
// negative level to use the algorithm's default.
func New(algo string, level int) (Codec, error) {
	if level < 0 {
		var err error
		level, err = DefaultLevel(algo)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidateLevel(algo, level); err != nil {
		return nil, err
	}
	switch algo {
	case AlgoGzip:
		return newGzipCodec(level), nil
	case AlgoZstd:
		return newZstdCodec(level), nil
	case AlgoLZ4:
		return newLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: unknown compression algorithm %q", storeerr.ErrInvalidInput, algo)
	}
}
