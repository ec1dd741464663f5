package api

import "github.com/techbyhenry/acode-api/internal/domain"

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Email           string `json:"email"            validate:"required"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /logout and POST /token/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenResponse is returned by POST /token/refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// VerifyAccountRequest is the body of POST /verify-account.
type VerifyAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

// SaveAccountRequest is the body of POST /save-account. Field limits are
// enforced by domain.NewAccountRecord so the messages match the store's.
type SaveAccountRequest struct {
	AccountNumber     string `json:"account_number"`
	BankName          string `json:"bank_name"`
	AccountHolderName string `json:"account_holder_name"`
}

// SaveAccountResponse is returned by POST /save-account.
type SaveAccountResponse struct {
	Message string                `json:"message"`
	Data    *domain.AccountRecord `json:"data"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
