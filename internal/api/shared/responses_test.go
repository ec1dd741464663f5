package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
)

// newLoggedRequest returns a request whose context carries a debug-level
// logger writing to the returned buffer.
func newLoggedRequest(t *testing.T, traceID string) (*http.Request, *strings.Builder) {
	t.Helper()
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := logger.WithLogger(context.Background(), log)
	if traceID != "" {
		ctx = WithTraceID(ctx, traceID)
	}
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
	return req, &buf
}

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]interface{}{"message": "success"},
			expectedBody: `{"message":"success"}`,
		},
		{name: "empty object", status: http.StatusCreated, data: map[string]interface{}{}, expectedBody: `{}`},
		{name: "nil", status: http.StatusOK, data: nil, expectedBody: `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

type unencodable struct {
	Fn func() `json:"fn"`
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	req, logs := newLoggedRequest(t, "")
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, unencodable{Fn: func() {}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logs.String(), "failed to encode JSON response")
}

func TestRespondWithRawJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithRawJSON(w, req, http.StatusOK, []byte(`{"account_name":"JANE DOE","status":true}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"account_name":"JANE DOE","status":true}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	req, _ := newLoggedRequest(t, "test-trace-id")
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
	assert.Nil(t, response.Fields)
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestRespondWithDetail(t *testing.T) {
	req, logs := newLoggedRequest(t, "")
	w := httptest.NewRecorder()

	RespondWithDetail(w, req, http.StatusBadRequest, "Token is invalid or expired", errors.New("signature is invalid"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Token is invalid or expired"}`, w.Body.String())
	assert.Contains(t, logs.String(), "signature is invalid")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name             string
		statusCode       int
		message          string
		err              error
		expectedLogLevel string
		elevateLogLevel  bool
	}{
		{
			name:             "server error",
			statusCode:       http.StatusInternalServerError,
			message:          "An unexpected error occurred",
			err:              errors.New("database connection failed"),
			expectedLogLevel: "ERROR",
		},
		{
			name:             "client error with default log level",
			statusCode:       http.StatusBadRequest,
			message:          "Bad request",
			err:              errors.New("invalid input"),
			expectedLogLevel: "DEBUG",
		},
		{
			name:             "client error with elevated log level",
			statusCode:       http.StatusBadRequest,
			message:          "Bad request",
			err:              errors.New("invalid input"),
			expectedLogLevel: "WARN",
			elevateLogLevel:  true,
		},
		{
			name:             "rate limiting",
			statusCode:       http.StatusTooManyRequests,
			message:          "Too many requests",
			err:              errors.New("rate limit exceeded"),
			expectedLogLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, logs := newLoggedRequest(t, "test-trace-id")
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevateLogLevel {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, opts...)

			assert.Equal(t, tc.statusCode, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.Equal(t, "test-trace-id", response.TraceID)

			out := logs.String()
			assert.Contains(t, out, "level="+tc.expectedLogLevel)
			assert.Contains(t, out, "trace_id=test-trace-id")
			assert.Contains(t, out, "error_type=")
			assert.NotContains(t, w.Body.String(), tc.err.Error())
		})
	}
}

func TestRespondWithErrorAndLogFieldsAndDetails(t *testing.T) {
	req, _ := newLoggedRequest(t, "")
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, req, http.StatusBadRequest, "Validation failed", nil,
		WithFields(map[string][]string{"email": {"This field must be unique."}}),
		WithDetails(json.RawMessage(`{"message":"invalid bank"}`)))

	assert.JSONEq(t,
		`{"error":"Validation failed","fields":{"email":["This field must be unique."]},"details":{"message":"invalid bank"}}`,
		w.Body.String())
}

func TestWithDetailsDropsInvalidJSON(t *testing.T) {
	opts := responseOptions{}
	WithDetails(json.RawMessage(`<html>`))(&opts)
	assert.Nil(t, opts.details)

	WithDetails(json.RawMessage(`[1,2]`))(&opts)
	assert.JSONEq(t, `[1,2]`, string(opts.details))
}

func TestWithElevatedLogLevel(t *testing.T) {
	opts := responseOptions{}
	WithElevatedLogLevel()(&opts)
	assert.True(t, opts.elevateLogLevel)
}
