package api

import (
	"errors"
	"net/http"

	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/service/auth"
	"github.com/techbyhenry/acode-api/internal/store"
	"github.com/techbyhenry/acode-api/internal/verification"
)

// Client-facing messages. Handlers and the error mapping share them so the
// same failure always reads the same way.
const (
	MsgValidationFailed     = "Validation failed"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgTokenInvalid         = "Token is invalid or expired"
	MsgTokenBlacklisted     = "Token is blacklisted"
	MsgLoggedOut            = "Successfully logged out."
	MsgInvalidAccessToken   = "Invalid token"
	MsgExpiredAccessToken   = "Token expired"
	MsgMissingAccountInput  = "Account number and bank code are required."
	MsgInvalidJSON          = "Invalid JSON format in request."
	MsgVerifyRejected       = "Failed to verify account details."
	MsgUpstreamUnavailable  = "External API error"
	MsgBankListUnavailable  = "Failed to fetch bank data"
	MsgSaveAccountFailed    = "Failed to save account"
	MsgAccountSaved         = "Account saved successfully!"
	MsgUniqueEmail          = "This field must be unique."
	MsgUserNotFound         = "User not found"
	MsgUnexpectedError      = "An unexpected error occurred"
	MsgInvalidRequestMethod = "Invalid request method."
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var rejected *verification.UpstreamRejectedError

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Refresh-token problems are client errors on logout and refresh.
	case errors.Is(err, auth.ErrTokenBlacklisted),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return http.StatusBadRequest

	// Access-token problems
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Duplicate email is reported like any other field error.
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, verification.ErrMissingInput):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.As(err, &rejected):
		if rejected.StatusCode >= http.StatusBadRequest && rejected.StatusCode <= 599 {
			return rejected.StatusCode
		}
		return http.StatusBadGateway

	case errors.Is(err, verification.ErrUpstreamUnavailable):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedError
	}

	switch {
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return MsgTokenBlacklisted

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return MsgTokenInvalid

	case errors.Is(err, auth.ErrExpiredToken):
		return MsgExpiredAccessToken

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return MsgInvalidAccessToken

	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgInvalidCredentials

	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrPasswordMismatch):
		return MsgValidationFailed

	case errors.Is(err, verification.ErrMissingInput):
		return MsgMissingAccountInput

	case errors.Is(err, verification.ErrUpstreamRejected):
		return MsgVerifyRejected

	case errors.Is(err, verification.ErrUpstreamUnavailable):
		return MsgUpstreamUnavailable

	case errors.Is(err, store.ErrUserNotFound):
		return MsgUserNotFound

	default:
		return MsgUnexpectedError
	}
}

// fieldErrorsFor extracts the per-field messages carried by err. A duplicate
// email becomes the unique-field message on "email".
func fieldErrorsFor(err error) map[string][]string {
	fields := domain.FieldErrors(err)
	if errors.Is(err, store.ErrEmailExists) {
		if fields == nil {
			fields = make(map[string][]string)
		}
		fields["email"] = append(fields["email"], MsgUniqueEmail)
	}
	return fields
}
