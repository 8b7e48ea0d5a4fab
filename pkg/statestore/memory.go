package statestore

import (
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It provides no durability and exists for
// tests and dry-run invocations.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.data[key]
	return value, found, nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemStore) Flag(key string) (bool, error) {
	value, found, _ := s.Get(key)
	return found && value == flagValue, nil
}

func (s *MemStore) SetFlag(key string) error {
	return s.Set(key, flagValue)
}

func (s *MemStore) GetRange(prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]string)
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			entries[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return entries, nil
}

func (s *MemStore) UnsetRange(prefix string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, prefix+key)
	}
	return nil
}

func (s *MemStore) Close() error {
	return nil
}
