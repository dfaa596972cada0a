package compression

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xiaolin/stowr/internal/storeerr"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated for good measure: the quick brown fox jumps over the lazy dog")
	for _, algo := range []string{AlgoGzip, AlgoZstd, AlgoLZ4} {
		algo := algo
		t.Run(algo, func(t *testing.T) {
			codec, err := New(algo, -1)
			if err != nil {
				t.Fatalf("New(%s): %v", algo, err)
			}
			compressed, err := codec.Compress(data)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			decompressed, err := codec.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Fatalf("round trip mismatch for %s", algo)
			}
		})
	}
}

func TestGzipLevelZeroValid(t *testing.T) {
	if err := ValidateLevel(AlgoGzip, 0); err != nil {
		t.Fatalf("gzip level 0 should be valid: %v", err)
	}
	codec, err := New(AlgoGzip, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := codec.Compress([]byte("hello")); err != nil {
		t.Fatalf("Compress at level 0: %v", err)
	}
}

func TestLevelValidationRejectsOutOfRange(t *testing.T) {
	if err := ValidateLevel(AlgoGzip, 10); !errors.Is(err, storeerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for gzip level 10, got %v", err)
	}
	if err := ValidateLevel(AlgoZstd, 0); !errors.Is(err, storeerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zstd level 0, got %v", err)
	}
	if err := ValidateLevel(AlgoLZ4, 3); !errors.Is(err, storeerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for lz4 non-zero level, got %v", err)
	}
}

func TestDecompressCorruptData(t *testing.T) {
	codec, _ := New(AlgoGzip, -1)
	_, err := codec.Decompress([]byte("not gzip data"))
	if !errors.Is(err, storeerr.ErrDecodeCorrupt) {
		t.Fatalf("expected ErrDecodeCorrupt, got %v", err)
	}
}

func TestDefaultLevels(t *testing.T) {
	cases := map[string]int{AlgoGzip: 6, AlgoZstd: 3, AlgoLZ4: 0}
	for algo, want := range cases {
		got, err := DefaultLevel(algo)
		if err != nil {
			t.Fatalf("DefaultLevel(%s): %v", algo, err)
		}
		if got != want {
			t.Fatalf("DefaultLevel(%s) = %d, want %d", algo, got, want)
		}
	}
}
