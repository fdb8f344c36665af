// Package memtest provides an in-memory store.Store test double, used by
// the materializer, runner, mount and secret-manager test suites so they
// don't need real S3/Redis credentials.
package memtest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kclejeune/credible/internal/store"
)

// Store is a store.Store backed by a plain map, guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	blob map[string][]byte
}

func New() *Store {
	return &Store{blob: make(map[string][]byte)}
}

func (s *Store) Read(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.blob[key]
	if !ok {
		return nil, &store.FetchError{Key: key, Err: store.ErrNotFound}
	}
	return io.NopCloser(bytes.NewReader(v)), nil
}

func (s *Store) Write(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return &store.PutError{Key: key, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob[key] = data
	return nil
}

// Seed pre-populates key with raw bytes, bypassing Write. Useful for tests
// that want to control exactly what ciphertext is present without going
// through the crypto pipeline.
func (s *Store) Seed(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob[key] = bytes.Clone(data)
}
