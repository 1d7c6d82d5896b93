package preferences

import (
	"context"
	"sync"
)

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, scope, key string) (string, bool, error) {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[scope][key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, scope, key, value string) error {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.values[scope]
	if !ok {
		bucket = make(map[string]string)
		m.values[scope] = bucket
	}
	bucket[key] = value
	return nil
}

// Delete removes key from scope. Missing keys are not an error.
func (m *MemoryStore) Delete(_ context.Context, scope, key string) error {
	scope, key, err := normalize(scope, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if bucket, ok := m.values[scope]; ok {
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(m.values, scope)
		}
	}
	return nil
}
