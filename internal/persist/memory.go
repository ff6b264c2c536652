package persist

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in a map. It is used in tests and as a
// fallback when no database is configured.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// FailWith makes every following Save return err. Pass nil to recover.
func (m *MemoryBackend) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Raw returns the stored bytes for key.
func (m *MemoryBackend) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Put stores data directly, bypassing any Slot.
func (m *MemoryBackend) Put(key string, data []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
}
