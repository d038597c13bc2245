// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/storefront/internal/metrics"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

const memorySweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
// A background sweep drops expired sessions that are never read again; Close
// stops it.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates an empty in-memory store and starts its sweep.
func NewMemoryStore() *MemoryStore {
	return newMemoryStore(memorySweepInterval, time.Now)
}

func newMemoryStore(sweepInterval time.Duration, now func() time.Time) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepEvery(sweepInterval)
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = memoryEntry{session: *s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored sessions. Expired sessions count until
// the next sweep or read.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// sweep drops expired sessions and reports how many went.
func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) sweepEvery(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if n := m.sweep(); n > 0 {
				metrics.RecordSessionsSwept("memory", n)
			}
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close stops the sweep. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}
