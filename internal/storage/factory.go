package storage

import "fmt"

// NewStore opens a backend: "dir" (the default) keeps one directory per run
// under path, "sqlite" keeps every run in the database file at path.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "dir":
		return NewDirStore(path), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
