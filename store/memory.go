package store

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if v, ok := m.data[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, nil
}

func (m *MemoryBackend) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	next, err := fn(append([]byte(nil), m.data[key]...))
	if err != nil {
		return err
	}
	m.data[key] = next
	return nil
}
