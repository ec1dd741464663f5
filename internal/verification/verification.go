// Package verification defines the contract for checking bank account
// details against an external provider. Callers depend only on Gateway;
// the provider's URL, credential and wire format stay inside the
// implementation.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingInput is returned before any outbound call when a required
	// argument is empty.
	ErrMissingInput = errors.New("account number and bank code are required")

	// ErrUpstreamUnavailable covers transport failures: timeouts, refused
	// connections, unreadable or malformed responses. It is safe to retry.
	ErrUpstreamUnavailable = errors.New("upstream verification service unavailable")

	// ErrUpstreamRejected matches any *UpstreamRejectedError.
	ErrUpstreamRejected = errors.New("upstream verification service rejected the request")
)

// UpstreamRejectedError reports a non-success status from the provider.
// Body holds the provider's response only when it is valid JSON small
// enough to pass back to clients; otherwise it is nil.
type UpstreamRejectedError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUpstreamRejected, e.StatusCode)
}

// Is makes errors.Is(err, ErrUpstreamRejected) true.
func (e *UpstreamRejectedError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

// Gateway is the narrow contract consumed by the HTTP layer.
type Gateway interface {
	// VerifyAccount checks an account number against a bank code and returns
	// the provider's JSON response unchanged. Fails with ErrMissingInput,
	// ErrUpstreamUnavailable or *UpstreamRejectedError.
	VerifyAccount(ctx context.Context, accountNumber, bankCode string) (json.RawMessage, error)

	// ListBanks returns the provider's bank directory, one opaque JSON value
	// per bank. Every failure is ErrUpstreamUnavailable; a partial or empty
	// result is never returned in place of an error.
	ListBanks(ctx context.Context) ([]json.RawMessage, error)
}
