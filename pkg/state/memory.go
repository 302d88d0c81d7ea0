package state

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Expired states are purged on Issue.
// Issued states do not survive a restart and are not shared between
// instances; use Redis for multi-instance deployments.
type Memory struct {
	entries map[string]time.Time
	opts    *options
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates an in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Memory{entries: make(map[string]time.Time), opts: o}
}

func (m *Memory) Issue(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrClosed
	}

	now := m.opts.now()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
		}
	}

	s := m.opts.generate()
	if _, ok := m.entries[s]; ok {
		return "", ErrCollision
	}
	m.entries[s] = now.Add(m.opts.ttl)

	return s, nil
}

func (m *Memory) Consume(_ context.Context, s string) error {
	if s == "" {
		return ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	exp, ok := m.entries[s]
	if !ok {
		return ErrNotFound
	}
	delete(m.entries, s)

	if !m.opts.now().Before(exp) {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}

var _ Store = (*Memory)(nil)
