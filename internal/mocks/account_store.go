package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/store"
)

// MockAccountStore implements store.AccountStore in memory.
type MockAccountStore struct {
	CreateFn  func(ctx context.Context, record *domain.AccountRecord) error
	ListAllFn func(ctx context.Context) ([]*domain.AccountRecord, error)

	// Now stamps CreatedAt; defaults to time.Now.
	Now func() time.Time

	mu      sync.Mutex
	records []*domain.AccountRecord
	nextID  int64
}

var _ store.AccountStore = (*MockAccountStore)(nil)

// NewMockAccountStore creates an empty account store.
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{Now: time.Now}
}

// Create implements store.AccountStore.
func (m *MockAccountStore) Create(ctx context.Context, record *domain.AccountRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, record)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = m.nextID
	record.CreatedAt = m.Now().UTC()
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

// ListAll implements store.AccountStore.
func (m *MockAccountStore) ListAll(ctx context.Context) ([]*domain.AccountRecord, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AccountRecord, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// Len returns the number of saved records.
func (m *MockAccountStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
