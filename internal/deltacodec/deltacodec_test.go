package deltacodec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xiaolin/stowr/internal/storeerr"
)

func TestRoundTripIdentical(t *testing.T) {
	base := []byte("the quick brown fox jumps over the lazy dog")
	blob := Encode(base, base)
	got, err := Apply(base, blob)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(got, base) {
		t.Fatalf("round trip mismatch for identical content")
	}
}

func TestRoundTripAppend(t *testing.T) {
	base := []byte("version one of the document")
	target := []byte("version one of the document, plus an appendix")
	blob := Encode(base, target)
	got, err := Apply(base, blob)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Fatalf("round trip mismatch: got %q want %q", got, target)
	}
}

func TestRoundTripMidEdit(t *testing.T) {
	base := []byte("alpha beta gamma delta epsilon zeta eta theta")
	target := []byte("alpha beta GAMMA delta epsilon zeta eta theta")
	blob := Encode(base, target)
	got, err := Apply(base, blob)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Fatalf("round trip mismatch: got %q want %q", got, target)
	}
}

func TestRoundTripEmptyTarget(t *testing.T) {
	base := []byte("something")
	target := []byte("")
	blob := Encode(base, target)
	got, err := Apply(base, blob)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty reconstruction, got %q", got)
	}
}

func TestApplyRejectsBadMagic(t *testing.T) {
	_, err := Apply([]byte("base"), []byte("not a delta blob at all padding"))
	if !errors.Is(err, storeerr.ErrDeltaCorrupt) {
		t.Fatalf("expected ErrDeltaCorrupt, got %v", err)
	}
}

func TestApplyRejectsBaseLengthMismatch(t *testing.T) {
	base := []byte("original base content")
	blob := Encode(base, []byte("original base content, extended"))
	_, err := Apply([]byte("a different, shorter base"), blob)
	if !errors.Is(err, storeerr.ErrDeltaCorrupt) {
		t.Fatalf("expected ErrDeltaCorrupt, got %v", err)
	}
}

func TestEncodeApplyDoesNotDesyncCursorsOnDeletion(t *testing.T) {
	base := []byte("ABCDDGHIJKL")
	target := []byte("ABCWXYZGHIJKL")
	blob := Encode(base, target)
	got, err := Apply(base, blob)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Fatalf("round trip mismatch: got %q want %q", got, target)
	}
}
