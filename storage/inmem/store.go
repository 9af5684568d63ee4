package inmemstore

import (
	"context"
	"sync"

	"github.com/trezcool/edumaster/core"
)

// Store keeps values in memory. Nothing survives the process; it backs tests and `storage.driver=memory`.
type Store struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ core.Storage = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	return val, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.table, key)
	return nil
}

func (s *Store) Close() error { return nil }
