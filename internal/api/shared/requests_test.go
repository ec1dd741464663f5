package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", requestBody: `{"name": "test", "age": 30}`},
		{
			name:        "invalid json",
			requestBody: `{"name": "test", "age": 30,}`,
			wantErr:     true,
			errContains: "invalid character",
		},
		{name: "empty body", requestBody: "", wantErr: true, errContains: "EOF"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))

			var target payload
			err := DecodeJSON(req, &target)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Name: "test", Age: 30}, target)
		})
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSONWithReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", errorReader{})

	var target struct{}
	err := DecodeJSON(req, &target)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestDecodeJSONOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))

	var target struct {
		Name string `json:"name"`
	}
	assert.Error(t, DecodeJSON(req, &target))
}

type selfValidating struct {
	Name string
}

func (s *selfValidating) Validate() error {
	if s.Name == "invalid" {
		return errors.New("invalid name")
	}
	return nil
}

type signupLike struct {
	Email           string `json:"email"            validate:"required"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Nickname        string `json:"nickname"         validate:"max=5"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("self validating", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&selfValidating{Name: "ok"}))
		assert.Error(t, ValidateRequest(&selfValidating{Name: "invalid"}))
	})

	t.Run("struct tags", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&signupLike{Email: "a@b.co", Password: "x", ConfirmPassword: "x"}))
		assert.Error(t, ValidateRequest(&signupLike{}))
	})
}

func TestValidationFieldErrors(t *testing.T) {
	err := ValidateRequest(&signupLike{Password: "x", Nickname: "toolong"})
	require.Error(t, err)

	fields := ValidationFieldErrors(err)
	assert.Equal(t, map[string][]string{
		"email":            {"This field is required."},
		"confirm_password": {"This field is required."},
		"nickname":         {"Ensure this field has no more than 5 characters."},
	}, fields)

	assert.Nil(t, ValidationFieldErrors(errors.New("other")))
	assert.Nil(t, ValidationFieldErrors(nil))
}
