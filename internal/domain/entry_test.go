package domain

import "testing"

func TestEntryKindBase(t *testing.T) {
	e := NewBaseEntry("id1", "/a/b.txt", "objects/ab/cd/ef.gz", 100, 40, "gzip", "deadbeef")
	if e.Kind() != KindBase {
		t.Fatalf("expected KindBase, got %v", e.Kind())
	}
}

func TestEntryKindReference(t *testing.T) {
	e := NewReferenceEntry("id2", "/a/c.txt", "id1", 100, "gzip", "deadbeef")
	if e.Kind() != KindReference {
		t.Fatalf("expected KindReference, got %v", e.Kind())
	}
	if e.StoredPath != "" {
		t.Fatalf("reference entries should not own a stored path")
	}
}

func TestEntryKindDelta(t *testing.T) {
	e := NewDeltaEntry("id3", "/a/d.txt", "objects/de/lt/a.delta", "id1", 120, 30, "gzip", "cafebabe", 0.82)
	if e.Kind() != KindDelta {
		t.Fatalf("expected KindDelta, got %v", e.Kind())
	}
	if e.BaseStorageID != "id1" {
		t.Fatalf("expected base storage id id1, got %q", e.BaseStorageID)
	}
}

func TestEntryKindDeltaTakesPrecedence(t *testing.T) {
	e := &Entry{IsReference: true, IsDelta: true, BaseStorageID: "id1"}
	if e.Kind() != KindDelta {
		t.Fatalf("malformed dual-flag entry should resolve to KindDelta, got %v", e.Kind())
	}
}
