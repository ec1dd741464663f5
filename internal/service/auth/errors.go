package auth

import "errors"

// Access token errors.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates a refresh token was presented where an
	// access token was expected, or the reverse.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Refresh token errors.
var (
	// ErrInvalidRefreshToken indicates a malformed, tampered or otherwise
	// unusable refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrTokenBlacklisted indicates the refresh token was rotated or logged
	// out and can never be used again.
	ErrTokenBlacklisted = errors.New("token is blacklisted")
)

// ErrInvalidCredentials is returned for any failed login. It never says
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")
