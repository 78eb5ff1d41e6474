package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process Store equivalent. Values do not survive the process.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, namespace string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Put(_ context.Context, namespace string, value []byte) error {
	if namespace == "" {
		return fmt.Errorf("namespace is empty")
	}
	m.mu.Lock()
	m.data[namespace] = slices.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.data, namespace)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}
