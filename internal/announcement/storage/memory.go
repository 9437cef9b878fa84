package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Object is a photo held by MemoryStore
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps photos in memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

// NewMemoryStore constructs a MemoryStore whose URLs start with baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string]Object),
	}
}

// Put stores the photo bytes
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: data, ContentType: contentType}
	return m.baseURL + "/" + key, nil
}

// Delete removes a photo
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Get returns a stored photo
func (m *MemoryStore) Get(key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

// Keys lists stored object keys
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
