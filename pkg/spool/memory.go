package spool

import (
	"context"
	"sync"
)

type memory struct {
	mu     sync.RWMutex
	jobs   map[string][]Job // destination -> jobs in arrival order
	closed bool
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memory{jobs: make(map[string][]Job)}
}

func (m *memory) Enqueue(_ context.Context, j Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.jobs[j.Destination] = append(m.jobs[j.Destination], j)
	return nil
}

func (m *memory) List(_ context.Context, destination string, limit int) ([]Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	all := m.jobs[destination]
	limit = normLimit(limit)
	out := make([]Job, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *memory) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
