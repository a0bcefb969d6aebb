package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time // zero value = never expires
	value     string
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a process-local Handler with TTL-based expiration.
// Expired entries are dropped on access and, when a cleanup interval is set,
// by a background janitor.
type Memory struct {
	items           map[string]memoryEntry
	done            chan struct{}
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	mu              sync.Mutex
	closed          bool
}

// MemoryOption configures the in-memory handler.
type MemoryOption func(*Memory)

// WithDefaultTTL sets the expiration used when Set is called with a zero TTL.
// Default: 15 minutes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the janitor removes expired entries.
// Zero disables the janitor; expired entries are then only removed on access.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.cleanupInterval = d
	}
}

// NewMemory creates an in-memory handler.
//
// Example:
//
//	h := store.NewMemory(store.WithDefaultTTL(10 * time.Minute))
//	defer h.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:           make(map[string]memoryEntry),
		done:            make(chan struct{}),
		defaultTTL:      15 * time.Minute,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	if e.expired(time.Now()) {
		delete(m.items, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.items[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

var _ Handler = (*Memory)(nil)
