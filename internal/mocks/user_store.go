package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetPrivilegesFn   func(ctx context.Context, id uuid.UUID, isStaff, isSuperuser bool) error
	UpdateLastLoginFn func(ctx context.Context, id uuid.UUID, at time.Time) error

	mu          sync.Mutex
	users       map[string]*domain.User // keyed by normalized email
	createCalls int
	txCalls     int
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty in-memory user store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*domain.User)}
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.NormalizeEmail(user.Email)
	if _, exists := m.users[key]; exists {
		return store.ErrEmailExists
	}
	stored := *user
	m.users[key] = &stored
	return nil
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findLocked(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrUserNotFound
}

// SetPrivileges implements store.UserStore.
func (m *MockUserStore) SetPrivileges(ctx context.Context, id uuid.UUID, isStaff, isSuperuser bool) error {
	if m.SetPrivilegesFn != nil {
		return m.SetPrivilegesFn(ctx, id, isStaff, isSuperuser)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findLocked(id)
	if u == nil {
		return store.ErrUserNotFound
	}
	u.IsStaff, u.IsSuperuser = isStaff, isSuperuser
	return nil
}

// UpdateLastLogin implements store.UserStore.
func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.UpdateLastLoginFn != nil {
		return m.UpdateLastLoginFn(ctx, id, at)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findLocked(id)
	if u == nil {
		return store.ErrUserNotFound
	}
	t := at
	u.LastLogin = &t
	return nil
}

// WithTx returns the same store; the in-memory data has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()
	return m
}

func (m *MockUserStore) findLocked(id uuid.UUID) *domain.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// CreateCalls returns how many times Create was called.
func (m *MockUserStore) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// TxCalls returns how many times WithTx was called.
func (m *MockUserStore) TxCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCalls
}
