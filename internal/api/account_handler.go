package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/techbyhenry/acode-api/internal/api/shared"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/store"
	"github.com/techbyhenry/acode-api/internal/verification"
)

// AccountHandler serves bank account verification and the saved-account log.
type AccountHandler struct {
	gateway  verification.Gateway
	accounts store.AccountStore
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(gateway verification.Gateway, accounts store.AccountStore, log *slog.Logger) *AccountHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{
		gateway:  gateway,
		accounts: accounts,
		logger:   log.With(slog.String("component", "account_handler")),
	}
}

// VerifyAccount handles POST /verify-account. A successful provider
// response is passed through unchanged.
//
// The outbound call is detached from the request's cancellation and is
// bounded by the gateway's own timeout. If the client has gone away by the
// time it returns, the result is discarded.
func (h *AccountHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req VerifyAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidJSON, err)
		return
	}

	body, err := h.gateway.VerifyAccount(context.WithoutCancel(r.Context()), req.AccountNumber, req.BankCode)
	if r.Context().Err() != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Info("client went away during account verification",
			slog.String("trace_id", shared.GetTraceID(r.Context())))
		return
	}
	if err != nil {
		h.respondWithGatewayError(w, r, err)
		return
	}

	shared.RespondWithRawJSON(w, r, http.StatusOK, body)
}

// ListBanks handles GET /get-bank-list.
func (h *AccountHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.gateway.ListBanks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgBankListUnavailable, err)
		return
	}
	if banks == nil {
		banks = []json.RawMessage{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, banks)
}

// SaveAccount handles POST /save-account. Records are append-only; saving
// the same account twice creates two records.
func (h *AccountHandler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	var req SaveAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgSaveAccountFailed, err)
		return
	}

	record, err := domain.NewAccountRecord(req.AccountNumber, req.BankName, req.AccountHolderName)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgSaveAccountFailed, err,
			shared.WithFields(domain.FieldErrors(err)))
		return
	}

	if err := h.accounts.Create(r.Context(), record); err != nil {
		if MapErrorToStatusCode(err) == http.StatusBadRequest {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgSaveAccountFailed, err,
				shared.WithFields(domain.FieldErrors(err)))
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedError, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account saved",
		slog.Int64("account_id", record.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, SaveAccountResponse{
		Message: MsgAccountSaved,
		Data:    record,
	})
}

// ListAccounts handles GET /accounts.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	records, err := h.accounts.ListAll(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedError, err)
		return
	}
	if records == nil {
		records = []*domain.AccountRecord{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

func (h *AccountHandler) respondWithGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *verification.UpstreamRejectedError
	switch {
	case errors.Is(err, verification.ErrMissingInput):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgMissingAccountInput, err)
	case errors.As(err, &rejected):
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), MsgVerifyRejected, err,
			shared.WithDetails(rejected.Body))
	case errors.Is(err, verification.ErrUpstreamUnavailable):
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUpstreamUnavailable, err)
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedError, err)
	}
}
