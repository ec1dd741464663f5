package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
	"github.com/techbyhenry/acode-api/internal/verification"
)

// TestifyMockGateway is a mock of verification.Gateway for use with testify/mock.
type TestifyMockGateway struct {
	mock.Mock
}

var _ verification.Gateway = (*TestifyMockGateway)(nil)

// VerifyAccount is a mock implementation of verification.Gateway.VerifyAccount.
func (m *TestifyMockGateway) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (json.RawMessage, error) {
	args := m.Called(ctx, accountNumber, bankCode)
	if body, ok := args.Get(0).(json.RawMessage); ok {
		return body, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListBanks is a mock implementation of verification.Gateway.ListBanks.
func (m *TestifyMockGateway) ListBanks(ctx context.Context) ([]json.RawMessage, error) {
	args := m.Called(ctx)
	if banks, ok := args.Get(0).([]json.RawMessage); ok {
		return banks, args.Error(1)
	}
	return nil, args.Error(1)
}
