// Package mocks provides centralized mock implementations for testing.
//
// The store mocks keep their data in memory behind a mutex, so they behave
// like a database with unique constraints: concurrent Create calls for one
// email yield exactly one success and concurrent blacklist inserts for one
// token yield exactly one insert. Every method can be overridden with a
// function field:
//
//	users := mocks.NewMockUserStore()
//	users.GetByEmailFn = func(ctx context.Context, email string) (*domain.User, error) {
//	    return nil, errors.New("database down")
//	}
//
// TestifyMockGateway is a testify/mock based gateway for tests that assert
// on call expectations.
package mocks
