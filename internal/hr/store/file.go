package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON document per collection in a directory. A single
// process-wide mutex serializes writers.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// fileEnvelope is the on-disk layout. Plain JSON arrays written by older
// deployments are read as version 1.
type fileEnvelope struct {
	Version int64           `json:"version"`
	Records json.RawMessage `json:"records"`
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

type fileTxKey struct{}

// fileJournal remembers the original bytes of every file touched inside Atomic.
type fileJournal struct {
	owner    *FileStore
	original map[Key][]byte
	existed  map[Key]bool
}

func (s *FileStore) journal(ctx context.Context) *fileJournal {
	j, _ := ctx.Value(fileTxKey{}).(*fileJournal)
	if j != nil && j.owner == s {
		return j
	}
	return nil
}

func (s *FileStore) path(key Key) string {
	return filepath.Join(s.dir, string(key)+".json")
}

func (s *FileStore) read(key Key) (Blob, []byte, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return Blob{}, nil, false, nil
	}
	if err != nil {
		return Blob{}, nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return Blob{Data: trimmed, Version: 1}, raw, true, nil
	}

	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt documents surface as undecodable data at version 0 so the
		// next write replaces them.
		return Blob{Data: raw}, raw, true, nil
	}
	return Blob{Data: env.Records, Version: env.Version}, raw, true, nil
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, key Key) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	if s.journal(ctx) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	b, _, _, err := s.read(key)
	return b, err
}

// Put implements Store
func (s *FileStore) Put(ctx context.Context, key Key, data []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	j := s.journal(ctx)
	if j == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	current, raw, existed, err := s.read(key)
	if err != nil {
		return 0, err
	}
	if current.Version != expected {
		return current.Version, ErrVersionConflict
	}

	if j != nil {
		if _, seen := j.existed[key]; !seen {
			j.existed[key] = existed
			j.original[key] = raw
		}
	}

	body, err := json.MarshalIndent(fileEnvelope{Version: expected + 1, Records: data}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.write(key, body); err != nil {
		return 0, err
	}
	return expected + 1, nil
}

func (s *FileStore) write(key Key, body []byte) error {
	tmp, err := os.CreateTemp(s.dir, string(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Atomic serializes fn against other writers and restores every file it
// touched when fn fails.
func (s *FileStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.journal(ctx) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &fileJournal{owner: s, original: make(map[Key][]byte), existed: make(map[Key]bool)}
	err := fn(context.WithValue(ctx, fileTxKey{}, j))
	if err == nil {
		return nil
	}

	for key, existed := range j.existed {
		var rbErr error
		if existed {
			rbErr = s.write(key, j.original[key])
		} else {
			rbErr = os.Remove(s.path(key))
		}
		if rbErr != nil && !os.IsNotExist(rbErr) {
			return fmt.Errorf("%w (rollback of %s failed: %v)", err, key, rbErr)
		}
	}
	return err
}

// Close implements Store
func (s *FileStore) Close() error { return nil }
