// Package blob stores a compiled index snapshot as a single xz-compressed JSON file.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/store"
)

type blobStore struct {
	path string
}

// Open returns a file-backed store at path. The file is created on first Save.
func Open(path string) (store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("blob path: %w", internalerr.ErrInvalidInput)
	}
	return &blobStore{path: path}, nil
}

// Close implements store.Store.
func (s *blobStore) Close() error { return nil }

// Exists implements store.Store.
func (s *blobStore) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Save writes the snapshot to a temp file next to the target and renames it into
// place, so readers never observe a partial file.
func (s *blobStore) Save(ctx context.Context, snap index.Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

func encode(f *os.File, snap index.Snapshot) error {
	w, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		w.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush xz stream: %w", err)
	}
	return nil
}

// Load implements store.Store.
func (s *blobStore) Load(ctx context.Context) (index.Snapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return index.Snapshot{}, fmt.Errorf("%s: %w", s.path, internalerr.ErrNotFound)
	}
	if err != nil {
		return index.Snapshot{}, err
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return index.Snapshot{}, fmt.Errorf("failed to create xz reader: %w", err)
	}

	var snap index.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return index.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Remove implements store.Store.
func (s *blobStore) Remove(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
