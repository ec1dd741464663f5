// Package auth implements credential management, token issuance and the
// registration/login/logout flows built on top of them.
//
// Credentials owns user creation, password policy and password verification.
// TokenService signs HS256 access/refresh pairs, rotates refresh tokens and
// records invalidated refresh tokens in a persistent blacklist. Service
// composes the two into the operations exposed over HTTP.
package auth
