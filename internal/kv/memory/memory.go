package memory

import (
	"context"
	"errors"
	"sync"
)

var errWriteFailed = errors.New("memory store: write failed")

// Store is an in-memory key-value store. It backs the default
// configuration and is the storage double used by tests.
type Store struct {
	mu    sync.Mutex
	items map[string]string

	// FailWrites makes every Set return FailErr, for exercising
	// persistence-failure paths in tests.
	FailWrites bool
	FailErr    error
}

func New() *Store {
	return &Store{items: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		if s.FailErr != nil {
			return s.FailErr
		}
		return errWriteFailed
	}
	s.items[key] = value
	return nil
}
