// Package logger provides structured logging functionality for the application.
//
// It configures Go's log/slog package for JSON output at a configurable level
// and carries request-scoped loggers through context.Context so that log lines
// emitted deep in a call chain keep the trace id of the request that caused them.
package logger
