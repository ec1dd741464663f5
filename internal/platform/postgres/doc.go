// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It owns the SQL,
// the mapping of pg error codes onto store errors, and the embedded schema
// migrations applied with goose.
package postgres
