// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the HTTP surface to the authentication
// service, the verification gateway and the account store, and maps their
// errors to status codes and client-safe messages.
package api
