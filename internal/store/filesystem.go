package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FilesystemConfig is the `storage: { type: Filesystem, ... }` shape from
// the YAML config. Intended for local development and tests, not
// production use.
type FilesystemConfig struct {
	Root string `yaml:"root"`
}

// Filesystem is a Store backed by plain files under a root directory.
// Write is an atomic create-temp-then-rename into the key's directory.
type Filesystem struct {
	root string
}

func NewFilesystem(cfg FilesystemConfig) (*Filesystem, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("filesystem store: root is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o700); err != nil {
		return nil, fmt.Errorf("filesystem store: creating root: %w", err)
	}
	return &Filesystem{root: cfg.Root}, nil
}

func (s *Filesystem) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Filesystem) Read(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FetchError{Key: key, Err: ErrNotFound}
		}
		return nil, &FetchError{Key: key, Err: err}
	}
	return f, nil
}

func (s *Filesystem) Write(_ context.Context, key string, r io.Reader) error {
	dest := s.path(key)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("creating directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".credible-*")
	if err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("writing temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("closing temp file: %w", err)}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("renaming temp file: %w", err)}
	}

	success = true
	return nil
}
