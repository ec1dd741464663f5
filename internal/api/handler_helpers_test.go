package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/mocks"
	"github.com/techbyhenry/acode-api/internal/service/auth"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "handler-test-secret-that-is-long-enough",
		AccessTokenLifetimeMinutes:  5,
		RefreshTokenLifetimeMinutes: 1440,
		RotateRefreshTokens:         true,
		BlacklistAfterRotation:      true,
		BcryptCost:                  4,
		PasswordMinLength:           8,
		UpdateLastLogin:             true,
	}
}

type authFixture struct {
	handler   *AuthHandler
	users     *mocks.MockUserStore
	blacklist *mocks.MockTokenBlacklistStore
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	cfg := testAuthConfig()
	users := mocks.NewMockUserStore()
	blacklist := mocks.NewMockTokenBlacklistStore()

	tokens, err := auth.NewTokenService(cfg, blacklist)
	require.NoError(t, err)
	creds := auth.NewCredentials(users, auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewPasswordPolicy(cfg.PasswordMinLength), nil, auth.WithLastLoginUpdates(true))

	return authFixture{
		handler:   NewAuthHandler(auth.NewService(creds, tokens, nil)),
		users:     users,
		blacklist: blacklist,
	}
}

func serve(h http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}

type errorBody struct {
	Error   string              `json:"error"`
	Fields  map[string][]string `json:"fields"`
	Details json.RawMessage     `json:"details"`
	Detail  string              `json:"detail"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}

func jsonUnmarshal(rr *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}
