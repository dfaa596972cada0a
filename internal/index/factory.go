package index

import (
	"context"
	"os"
	"path/filepath"
)

// Open selects and opens a backend for the store rooted at storagePath,
// according to mode. BackendAuto is sticky: once a store has been migrated
// to SQL (signalled by the presence of index.db) it keeps using SQL even
// if its entry count later drops back below autoThreshold. A fresh store
// starts on JSON and is migrated to SQL the first time its count reaches
// autoThreshold.
func Open(ctx context.Context, storagePath string, mode Backend) (Index, error) {
	jsonPath := filepath.Join(storagePath, ".stowr", "index.json")
	sqlPath := filepath.Join(storagePath, ".stowr", "index.db")

	switch mode {
	case BackendJSON:
		return OpenJSON(jsonPath)
	case BackendSQL:
		return OpenSQL(sqlPath)
	case BackendAuto, "":
		if _, err := os.Stat(sqlPath); err == nil {
			return OpenSQL(sqlPath)
		}
		jsonIdx, err := OpenJSON(jsonPath)
		if err != nil {
			return nil, err
		}
		count, err := jsonIdx.Count(ctx)
		if err != nil {
			jsonIdx.Close()
			return nil, err
		}
		if count < autoThreshold {
			return jsonIdx, nil
		}
		sqlIdx, err := migrateJSONToSQL(ctx, jsonIdx, sqlPath)
		jsonIdx.Close()
		if err != nil {
			return nil, err
		}
		return sqlIdx, nil
	default:
		return OpenJSON(jsonPath)
	}
}

func migrateJSONToSQL(ctx context.Context, src *JSONIndex, sqlPath string) (*SQLIndex, error) {
	entries, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	dst, err := OpenSQL(sqlPath)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := dst.Add(ctx, e); err != nil {
			dst.Close()
			return nil, err
		}
	}
	return dst, nil
}
