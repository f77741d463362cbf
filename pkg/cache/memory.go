package cache

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// primarily for tests and single-run pipelines.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[key.join("/")]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (m *Memory) Put(_ context.Context, key Key, audio []byte) error {
	cp := make([]byte, len(audio))
	copy(cp, audio)
	m.mu.Lock()
	m.data[key.join("/")] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, key.join("/"))
	m.mu.Unlock()
	return nil
}

func (m *Memory) EvictSection(_ context.Context, document, section string) error {
	prefix := sectionPrefix(document, section, "/")
	m.mu.Lock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
