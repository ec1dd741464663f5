package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/techbyhenry/acode-api/internal/store"
)

// MockTokenBlacklistStore implements store.TokenBlacklistStore in memory.
type MockTokenBlacklistStore struct {
	AddFn          func(ctx context.Context, entry store.BlacklistEntry) (bool, error)
	ContainsFn     func(ctx context.Context, tokenID string) (bool, error)
	PurgeExpiredFn func(ctx context.Context, cutoff time.Time) (int64, error)

	mu      sync.Mutex
	entries map[string]store.BlacklistEntry
}

var _ store.TokenBlacklistStore = (*MockTokenBlacklistStore)(nil)

// NewMockTokenBlacklistStore creates an empty blacklist.
func NewMockTokenBlacklistStore() *MockTokenBlacklistStore {
	return &MockTokenBlacklistStore{entries: make(map[string]store.BlacklistEntry)}
}

// Add implements store.TokenBlacklistStore.
func (m *MockTokenBlacklistStore) Add(ctx context.Context, entry store.BlacklistEntry) (bool, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[entry.TokenID]; exists {
		return false, nil
	}
	m.entries[entry.TokenID] = entry
	return true, nil
}

// Contains implements store.TokenBlacklistStore.
func (m *MockTokenBlacklistStore) Contains(ctx context.Context, tokenID string) (bool, error) {
	if m.ContainsFn != nil {
		return m.ContainsFn(ctx, tokenID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[tokenID]
	return ok, nil
}

// PurgeExpired implements store.TokenBlacklistStore.
func (m *MockTokenBlacklistStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeExpiredFn != nil {
		return m.PurgeExpiredFn(ctx, cutoff)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.ExpiresAt.Before(cutoff) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of blacklisted tokens.
func (m *MockTokenBlacklistStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
