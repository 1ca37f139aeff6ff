// Package inmemkv is a core.KVStore backed by a map. Used in tests and with `DATABASE_ENGINE=inmem`.
package inmemkv

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/trezcool/scola/core"
)

type Store struct {
	mutex sync.RWMutex
	table map[string][]byte
}

var _ core.KVStore = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return copyBytes(val), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table[key] = copyBytes(value)
	return nil
}

func (s *Store) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	val, err := fn(copyBytes(s.table[key]))
	if err != nil {
		return err
	}
	s.table[key] = copyBytes(val)
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.table, key)
	}
	return nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0)
	for key := range s.table {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error { return nil }

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
