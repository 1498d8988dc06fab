// Package prefs persists small UI display settings (such as which entity is
// expanded) outside any single view's lifetime.
package prefs

import (
	"sort"
	"strings"
	"sync"
)

// CollapsedSuffix ends every entity collapse-flag key.
const CollapsedSuffix = "-collapsed"

// CollapsedKey is the key holding the collapse flag for an entity.
func CollapsedKey(entityName string) string {
	return entityName + CollapsedSuffix
}

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// DeleteSuffix removes keys ending in suffix and returns how many were removed.
func (s *MemoryStore) DeleteSuffix(suffix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.data {
		if strings.HasSuffix(k, suffix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// Keys returns all keys in sorted order.
func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
