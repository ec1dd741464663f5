package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/mocks"
	"github.com/techbyhenry/acode-api/internal/service/auth"
)

func newTestCredentials() (*auth.Credentials, *mocks.MockUserStore) {
	users := mocks.NewMockUserStore()
	return auth.NewCredentials(users, auth.NewBcryptHasher(4), auth.NewPasswordPolicy(8), nil), users
}

func TestCreateSuperuser(t *testing.T) {
	creds, users := newTestCredentials()
	var out bytes.Buffer

	err := createSuperuser(context.Background(), creds, "Admin@X.com", "Op3rator!pw", "Op3rator!pw", &out)
	require.NoError(t, err)
	assert.Equal(t, "Superuser admin@x.com created.\n", out.String())

	user, err := users.GetByEmail(context.Background(), "admin@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)

	err = createSuperuser(context.Background(), creds, "admin@x.com", "Op3rator!pw", "Op3rator!pw", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-elevate")
}

func TestCreateSuperuserRejectsBadInput(t *testing.T) {
	creds, users := newTestCredentials()
	var out bytes.Buffer

	err := createSuperuser(context.Background(), creds, "admin@x.com", "Op3rator!pw", "different", &out)
	assert.EqualError(t, err, "passwords didn't match")

	err = createSuperuser(context.Background(), creds, "not-an-email", "12345678", "12345678", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: Enter a valid email address.")
	assert.Contains(t, err.Error(), "This password is entirely numeric.")

	assert.Zero(t, users.Count())
	assert.Empty(t, out.String())
}

func TestElevateUser(t *testing.T) {
	creds, users := newTestCredentials()
	ctx := context.Background()

	_, err := creds.Create(ctx, "bob@x.com", "Secret123!")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, elevateUser(ctx, creds, "BOB@x.com", &out))
	assert.Equal(t, "bob@x.com is now a superuser.\n", out.String())

	user, err := users.GetByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)

	err = elevateUser(ctx, creds, "nobody@x.com", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account with email nobody@x.com")
}

func TestReadPasswordLines(t *testing.T) {
	pw, confirm, err := readPasswordLines(strings.NewReader("Secret123!\r\nSecret123!\n"))
	require.NoError(t, err)
	assert.Equal(t, "Secret123!", pw)
	assert.Equal(t, "Secret123!", confirm)

	_, _, err = readPasswordLines(strings.NewReader("only-one-line\n"))
	assert.Error(t, err)
}

func TestFormatFieldErrors(t *testing.T) {
	got := formatFieldErrors(map[string][]string{
		"password": {"This password is too short.", "This password is too common."},
		"email":    {"Enter a valid email address."},
	})
	assert.Equal(t, "email: Enter a valid email address.\npassword: This password is too short. This password is too common.", got)
}
