// Package store defines interfaces for data persistence operations.
// These interfaces keep the credential, token and account logic independent
// of the database that backs it; implementations live in
// internal/platform/postgres.
package store
