// Package index persists domain.Entry records and exposes the capability
// set every backend implements identically: add, get, remove, list, rename,
// move and count. Two backends exist, a JSON file and an embedded SQL
// database; Open picks between them based on Config.
package index

import (
	"context"

	"github.com/xiaolin/stowr/internal/domain"
)

// Index is the capability set a backend must provide. Every method takes a
// context so long-running SQL operations can be cancelled, even though the
// JSON backend ignores it (its operations are always in-memory-fast).
type Index interface {
	Add(ctx context.Context, e *domain.Entry) error
	Get(ctx context.Context, id string) (*domain.Entry, error)
	GetByOriginalPath(ctx context.Context, path string) (*domain.Entry, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Entry, error)
	Rename(ctx context.Context, id, newOriginalPath string) error
	Move(ctx context.Context, id, newOriginalPath string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Backend names the on-disk representation an Index uses.
type Backend string

const (
	BackendJSON Backend = "json"
	BackendSQL  Backend = "sql"
	BackendAuto Backend = "auto"
)

// autoThreshold is the entry count at or above which BackendAuto selects
// the SQL backend instead of JSON. Once a store crosses this line its
// index stays on SQL even if entries are later removed.
const autoThreshold = 1000
