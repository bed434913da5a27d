package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
	"github.com/oggyb/sms-gateway/internal/middleware"
	"github.com/oggyb/sms-gateway/internal/request"
	"github.com/oggyb/sms-gateway/internal/response"
	"github.com/oggyb/sms-gateway/internal/service"
)

// AccountHandler wires HTTP endpoints to the account service.
type AccountHandler struct {
	accounts service.AccountService
}

func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create godoc
// @Summary     Create a prepaid account
// @Description Creates a zero-balance tenant for the given pre-minted account id and issues its API key.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body request.CreateAccountRequest true "Account to create"
// @Success     201 {object} response.JSONResponse
// @Failure     409 {object} response.JSONResponse
// @Failure     422 {object} response.JSONResponse
// @Router      /accounts [post]
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := request.Validate(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, "account_id must be a UUID")
		return
	}

	t, err := h.accounts.Create(r.Context(), accountID)
	switch {
	case errors.Is(err, tenant.ErrAlreadyExists):
		response.RespondError(w, http.StatusConflict, "account already exists")
		return
	case errors.Is(err, tenant.ErrKeyGenerationExhausted):
		response.RespondError(w, http.StatusInternalServerError, "could not generate a unique api key")
		return
	case err != nil:
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, response.FromDomainAccount(t))
}

// Balance godoc
// @Summary     Get account balance
// @Description Returns the authenticated tenant's current prepaid balance.
// @Tags        accounts
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} response.JSONResponse
// @Failure     401 {object} response.JSONResponse
// @Router      /accounts/balance [get]
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing tenant context")
		return
	}

	balance, err := h.accounts.GetBalance(r.Context(), tenantID)
	if errors.Is(err, tenant.ErrNotFound) {
		response.RespondError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.BalancePayload{Balance: balance})
}

// Charge godoc
// @Summary     Top up account balance
// @Description Atomically adds the given amount of message-units to the authenticated tenant's balance.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body request.ChargeRequest true "Amount to add"
// @Success     200 {object} response.JSONResponse
// @Failure     401 {object} response.JSONResponse
// @Failure     404 {object} response.JSONResponse
// @Router      /accounts/charge [post]
func (h *AccountHandler) Charge(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing tenant context")
		return
	}

	var req request.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := request.Validate(&req); err != nil {
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := h.accounts.Charge(r.Context(), tenantID, req.Amount)
	if errors.Is(err, tenant.ErrNotFound) {
		response.RespondError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.BalancePayload{Balance: t.Balance})
}
