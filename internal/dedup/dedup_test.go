package dedup

import (
	"testing"

	"github.com/xiaolin/stowr/internal/domain"
)

func TestLookupMiss(t *testing.T) {
	d := New()
	if _, ok := d.Lookup("nope"); ok {
		t.Fatalf("expected miss on empty deduplicator")
	}
}

func TestRegisterAndLookup(t *testing.T) {
	d := New()
	d.Register("hash1", "base1")
	id, ok := d.Lookup("hash1")
	if !ok || id != "base1" {
		t.Fatalf("Lookup after Register = (%s, %v), want (base1, true)", id, ok)
	}
	if d.RefCount("base1") != 1 {
		t.Fatalf("expected refcount 1 after Register")
	}
}

func TestAddReferenceIncrementsRefCount(t *testing.T) {
	d := New()
	d.Register("hash1", "base1")
	d.AddReference("hash1", "base1")
	d.AddReference("hash1", "base1")
	if d.RefCount("base1") != 3 {
		t.Fatalf("expected refcount 3, got %d", d.RefCount("base1"))
	}
}

func TestReleaseDecrementsAndDeletesAtZero(t *testing.T) {
	d := New()
	d.Register("hash1", "base1")
	d.AddReference("hash1", "base1")
	if shouldDelete := d.Release("base1"); shouldDelete {
		t.Fatalf("refcount 2 -> 1 should not signal deletion")
	}
	if shouldDelete := d.Release("base1"); !shouldDelete {
		t.Fatalf("refcount 1 -> 0 should signal deletion")
	}
	if _, ok := d.Lookup("hash1"); ok {
		t.Fatalf("expected mapping gone after refcount hit zero")
	}
}

func TestReleaseUnknownStorageIDSignalsDelete(t *testing.T) {
	d := New()
	if !d.Release("ghost") {
		t.Fatalf("releasing an unknown storage id should signal deletion")
	}
}

func TestRebuildFromEntries(t *testing.T) {
	entries := []*domain.Entry{
		{ID: "base1", Hash: "hash1"},
		{ID: "ref1", Hash: "hash1", IsReference: true, BaseStorageID: "base1"},
		{ID: "ref2", Hash: "hash1", IsReference: true, BaseStorageID: "base1"},
		{ID: "delta1", Hash: "hash2", IsDelta: true, BaseStorageID: "base1"},
	}
	d := RebuildFromEntries(entries)
	if d.RefCount("base1") != 3 {
		t.Fatalf("expected refcount 3 after rebuild, got %d", d.RefCount("base1"))
	}
	if id, ok := d.Lookup("hash1"); !ok || id != "base1" {
		t.Fatalf("expected hash1 -> base1, got (%s, %v)", id, ok)
	}
}
