package store

import (
	"slices"
	"sort"
	"sync"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string]*Snapshot
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]*Snapshot),
	}
}

// Get retrieves a snapshot by name.
func (m *Memory) Get(name string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.data[name]; ok {
		return copySnapshot(s), nil
	}
	return nil, nil
}

// Put stores a snapshot under its name.
func (m *Memory) Put(s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.Name] = copySnapshot(s)
	return nil
}

// Delete removes a snapshot by name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

// List returns all snapshot names in sorted order.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

func copySnapshot(s *Snapshot) *Snapshot {
	c := *s
	c.Cells = slices.Clone(s.Cells)
	return &c
}
