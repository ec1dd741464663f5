// Package nubapi implements verification.Gateway against the NUBAPI bank
// account verification service. It owns the provider's URLs, bearer
// credential and response handling; nothing outside this package knows the
// provider's wire format.
package nubapi
