// Package storage keeps binary objects (avatars, task pictures) outside the
// relational store.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrObjectNotFound is returned when no object exists for a key
var ErrObjectNotFound = errors.New("storage: object not found")

// Object is a stored blob and its content type
type Object struct {
	Data        []byte
	ContentType string
}

// Store is a key addressed object store
type Store interface {
	Put(ctx context.Context, key string, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps objects in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]Object{}}
}

// Put implements Store
func (m *MemoryStore) Put(_ context.Context, key string, obj Object) error {
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: data, ContentType: obj.ContentType}
	return nil
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return obj, nil
}

// Delete implements Store. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
