// Package dedup tracks which content hashes are already backed by a stored
// physical object, and refcounts that object across every entry referencing
// it. It mirrors an in-memory, rebuildable cache over the index rather than
// a source of truth: every mapping here is reconstructable from the entries
// the index already persists.
package dedup

import (
	"sync"

	"github.com/xiaolin/stowr/internal/domain"
)

// Deduplicator maps content hashes to the storage ID of the base entry that
// physically owns that content, and refcounts how many logical entries
// (the base itself plus every reference pointing at it) currently rely on
// it. It is not safe to share across goroutines without the embedded mutex,
// which every exported method already takes.
type Deduplicator struct {
	mu            sync.Mutex
	hashToStorage map[string]string
	storageToHash map[string]string
	refCounts     map[string]int
}

// New returns an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{
		hashToStorage: make(map[string]string),
		storageToHash: make(map[string]string),
		refCounts:     make(map[string]int),
	}
}

// Lookup reports the storage ID already holding content with this hash, if
// any. It does not itself change any refcount; callers that decide to
// create a reference must call AddReference afterward.
func (d *Deduplicator) Lookup(hash string) (storageID string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	storageID, ok = d.hashToStorage[hash]
	return storageID, ok
}

// Register installs a brand-new base object with a starting refcount of 1.
func (d *Deduplicator) Register(hash, storageID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hashToStorage[hash] = storageID
	d.storageToHash[storageID] = hash
	d.refCounts[storageID] = 1
}

// AddReference increments the refcount of the base object owning hash. If
// no mapping exists yet for hash, this installs one anchored at storageID
// with a refcount of 1, repairing state that should have existed already
// (mirrors the rebuild/repair path an index-backed reconstruction can hit).
func (d *Deduplicator) AddReference(hash, storageID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.hashToStorage[hash]; !ok {
		d.hashToStorage[hash] = storageID
		d.storageToHash[storageID] = hash
		d.refCounts[storageID] = 1
		return
	}
	d.refCounts[d.hashToStorage[hash]]++
}

// Release decrements the refcount of the base object identified by
// storageID and reports whether it reached zero, meaning the caller should
// now delete the underlying physical object. Releasing an unknown
// storageID returns true: there is nothing left to track, so the caller's
// delete should proceed.
func (d *Deduplicator) Release(storageID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releaseLocked(storageID)
}

// ReleaseByHash is Release addressed by content hash instead of storage ID.
func (d *Deduplicator) ReleaseByHash(hash string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	storageID, ok := d.hashToStorage[hash]
	if !ok {
		return true
	}
	return d.releaseLocked(storageID)
}

func (d *Deduplicator) releaseLocked(storageID string) bool {
	hash, ok := d.storageToHash[storageID]
	if !ok {
		return true
	}
	d.refCounts[storageID]--
	if d.refCounts[storageID] > 0 {
		return false
	}
	delete(d.hashToStorage, hash)
	delete(d.storageToHash, storageID)
	delete(d.refCounts, storageID)
	return true
}

// RefCount reports the current refcount for storageID, or 0 if unknown.
func (d *Deduplicator) RefCount(storageID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refCounts[storageID]
}

// RebuildFromEntries replaces all in-memory state by replaying an index
// listing: every non-reference, non-delta entry is a base object; every
// other entry holding the same hash increments that base's refcount. This
// is how a freshly started process recovers the dedup view the previous
// run held in memory, matching the startup rebuild stowr performs before
// serving any operation.
func RebuildFromEntries(entries []*domain.Entry) *Deduplicator {
	d := New()
	for _, e := range entries {
		if e.IsReference || e.IsDelta {
			continue
		}
		d.hashToStorage[e.Hash] = e.ID
		d.storageToHash[e.ID] = e.Hash
		d.refCounts[e.ID] = 1
	}
	for _, e := range entries {
		if !e.IsReference {
			continue
		}
		if storageID, ok := d.hashToStorage[e.Hash]; ok {
			d.refCounts[storageID]++
		}
	}
	return d
}
