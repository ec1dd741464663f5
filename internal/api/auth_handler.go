package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/techbyhenry/acode-api/internal/api/shared"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/service/auth"
)

// AuthService is the credential and session lifecycle consumed by AuthHandler.
// *auth.Service implements it.
type AuthService interface {
	Register(ctx context.Context, email, password, confirmPassword string) (*domain.User, *auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// AuthHandler handles signup, login, logout and token refresh.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidJSON, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed, err,
			shared.WithFields(shared.ValidationFieldErrors(err)))
		return
	}

	user, pair, err := h.service.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Email:        user.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidJSON, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed, err,
			shared.WithFields(shared.ValidationFieldErrors(err)))
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidCredentials, err,
				shared.WithElevatedLogLevel())
			return
		}
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Email:        user.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /logout. Logging out an already invalidated token
// succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithDetail(w, r, http.StatusBadRequest, MsgTokenInvalid, err)
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.respondWithTokenError(w, r, err)
		return
	}

	shared.RespondWithDetail(w, r, http.StatusOK, MsgLoggedOut, nil)
}

// Refresh handles POST /token/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithDetail(w, r, http.StatusBadRequest, MsgTokenInvalid, err)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondWithTokenError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// respondWithServiceError writes field errors as 400 and anything else as a
// generic 500.
func (h *AuthHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusBadRequest {
		shared.RespondWithErrorAndLog(w, r, status, MsgValidationFailed, err,
			shared.WithFields(fieldErrorsFor(err)))
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedError, err)
}

func (h *AuthHandler) respondWithTokenError(w http.ResponseWriter, r *http.Request, err error) {
	if MapErrorToStatusCode(err) == http.StatusBadRequest {
		shared.RespondWithDetail(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedError, err)
}
