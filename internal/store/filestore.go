package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON file per collection under a data directory.
// Writes go to a temp file in the same directory followed by a rename, so a
// crash never leaves a truncated document behind. Versions are tracked
// in-process; a single process owns the data directory.
type FileStore struct {
	dir string

	mu       sync.Mutex
	versions map[string]int64
}

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
	}
	return &FileStore{
		dir:      dir,
		versions: make(map[string]int64),
	}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads the collection file. A missing file is not an error: it loads
// as an empty snapshot at version 0.
func (s *FileStore) Load(ctx context.Context, collection string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{Version: s.versions[collection]}, nil
		}
		return Snapshot{}, fmt.Errorf("%w: read %s: %v", ErrUnavailable, collection, err)
	}
	return Snapshot{Data: data, Version: s.versions[collection]}, nil
}

// Save writes the document via temp-file-then-rename and bumps the version.
func (s *FileStore) Save(ctx context.Context, collection string, data []byte, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[collection] != expectedVersion {
		return ErrConflict
	}

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp file for %s: %v", ErrUnavailable, collection, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %v", ErrUnavailable, collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrUnavailable, collection, err)
	}
	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrUnavailable, collection, err)
	}

	s.versions[collection] = expectedVersion + 1
	return nil
}

// Ping verifies the data directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
