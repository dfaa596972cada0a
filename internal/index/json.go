package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xiaolin/stowr/internal/domain"
	"github.com/xiaolin/stowr/internal/storeerr"
)

// JSONIndex stores every entry in a single index.json file, rewritten in
// full on every mutation. It is the default backend below autoThreshold
// entries, trading write amplification for simplicity and human-readable
// state.
type JSONIndex struct {
	mu      sync.Mutex
	path    string
	entries map[string]*domain.Entry
}

// OpenJSON loads (or creates) the JSON index file at path.
func OpenJSON(path string) (*JSONIndex, error) {
	idx := &JSONIndex{path: path, entries: make(map[string]*domain.Entry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("%w: reading index file: %v", storeerr.ErrIndexError, err)
	}
	if len(data) == 0 {
		return idx, nil
	}
	var list []*domain.Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: parsing index file: %v", storeerr.ErrIndexError, err)
	}
	for _, e := range list {
		idx.entries[e.ID] = e
	}
	return idx, nil
}

func (idx *JSONIndex) persistLocked() error {
	list := make([]*domain.Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		list = append(list, e)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding index: %v", storeerr.ErrIndexError, err)
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing index: %v", storeerr.ErrIoError, err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("%w: renaming index into place: %v", storeerr.ErrIoError, err)
	}
	return nil
}

func (idx *JSONIndex) Add(_ context.Context, e *domain.Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.entries[e.ID]; exists {
		return fmt.Errorf("%w: entry %s already indexed", storeerr.ErrAlreadyExists, e.ID)
	}
	idx.entries[e.ID] = e
	return idx.persistLocked()
}

func (idx *JSONIndex) Get(_ context.Context, id string) (*domain.Entry, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: entry %s", storeerr.ErrNotFound, id)
	}
	return e, nil
}

func (idx *JSONIndex) GetByOriginalPath(_ context.Context, path string) (*domain.Entry, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range idx.entries {
		if e.OriginalPath == path {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: path %s", storeerr.ErrNotFound, path)
}

func (idx *JSONIndex) Remove(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.entries[id]; !ok {
		return fmt.Errorf("%w: entry %s", storeerr.ErrNotFound, id)
	}
	delete(idx.entries, id)
	return idx.persistLocked()
}

func (idx *JSONIndex) List(_ context.Context) ([]*domain.Entry, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	list := make([]*domain.Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		list = append(list, e)
	}
	return list, nil
}

func (idx *JSONIndex) Rename(_ context.Context, id, newOriginalPath string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.entries[id]
	if !ok {
		return fmt.Errorf("%w: entry %s", storeerr.ErrNotFound, id)
	}
	for _, other := range idx.entries {
		if other.ID != id && other.OriginalPath == newOriginalPath {
			return fmt.Errorf("%w: path %s", storeerr.ErrAlreadyExists, newOriginalPath)
		}
	}
	e.OriginalPath = newOriginalPath
	return idx.persistLocked()
}

func (idx *JSONIndex) Move(ctx context.Context, id, newOriginalPath string) error {
	return idx.Rename(ctx, id, newOriginalPath)
}

func (idx *JSONIndex) Count(_ context.Context) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries), nil
}

func (idx *JSONIndex) Close() error {
	return nil
}
