package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/techbyhenry/acode-api/internal/api/shared"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/redact"
)

// Recover turns a panic in a downstream handler into a generic JSON 500.
// The panic value and stack are logged in redacted form only.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic while serving request",
				slog.String("panic", redact.String(fmt.Sprint(rec))),
				slog.String("stack", redact.String(string(debug.Stack()))),
				slog.String("path", r.URL.Path),
				slog.String("trace_id", shared.GetTraceID(r.Context())))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
		}()
		next.ServeHTTP(w, r)
	})
}
