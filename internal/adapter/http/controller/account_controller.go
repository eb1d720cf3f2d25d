package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/api-sage/bank-account-ledger/internal/adapter/http/models"
	"github.com/api-sage/bank-account-ledger/internal/commons"
	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

const defaultRecentsLimit = 5

type AccountService interface {
	Open(ctx context.Context, clientID string) (domain.Account, error)
	Close(ctx context.Context, accountNumber string) error
	ApplyBalanceDelta(ctx context.Context, accountNumber string, delta float64) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	GetRecent(ctx context.Context, clientID string, limit int) ([]domain.Account, error)
	Query(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/accounts/open", c.open)
	mux.HandleFunc("POST /api/accounts/close", c.close)
	mux.HandleFunc("PUT /api/accounts/deposit", c.deposit)
	mux.HandleFunc("PUT /api/accounts/withdraw", c.withdraw)
	mux.HandleFunc("GET /api/accounts/by_number", c.getByNumber)
	mux.HandleFunc("GET /api/accounts/recent", c.getRecent)
	mux.HandleFunc("POST /api/accounts/query", c.query)
	mux.HandleFunc("GET /api/accounts/{id}", c.getByID)
}

func (c *AccountController) open(w http.ResponseWriter, r *http.Request) {
	var req models.OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.Open(r.Context(), req.ClientID)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to open account", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, commons.SuccessResponse("account opened successfully", models.NewAccountResponse(account)))
}

func (c *AccountController) close(w http.ResponseWriter, r *http.Request) {
	var req models.CloseAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[struct{}]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[struct{}]("validation failed", err.Error()))
		return
	}

	if err := c.service.Close(r.Context(), req.AccountNumber); err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[struct{}]("failed to close account", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("account closed successfully", struct{}{}))
}

func (c *AccountController) deposit(w http.ResponseWriter, r *http.Request) {
	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.ApplyBalanceDelta(r.Context(), req.AccountNumber, req.Amount.InexactFloat64())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to deposit", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("deposit successful", models.NewAccountResponse(account)))
}

func (c *AccountController) withdraw(w http.ResponseWriter, r *http.Request) {
	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.ApplyBalanceDelta(r.Context(), req.AccountNumber, -req.Amount.InexactFloat64())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to withdraw", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("withdrawal successful", models.NewAccountResponse(account)))
}

func (c *AccountController) getByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logRequest(r, nil)

	account, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		logError(r, err, logger.Fields{"accountId": id})
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to get account", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account)))
}

func (c *AccountController) getByNumber(w http.ResponseWriter, r *http.Request) {
	accountNumber := r.URL.Query().Get("accountNumber")
	logRequest(r, nil)

	if err := (models.CloseAccountRequest{AccountNumber: accountNumber}).Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.GetByAccountNumber(r.Context(), accountNumber)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to get account", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account)))
}

func (c *AccountController) getRecent(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	logRequest(r, nil)

	if clientID == "" {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.AccountResponse]("validation failed", "clientId is required"))
		return
	}

	limit := defaultRecentsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.AccountResponse]("validation failed", "limit must be an integer"))
			return
		}
		limit = parsed
	}

	accounts, err := c.service.GetRecent(r.Context(), clientID, limit)
	if err != nil {
		logError(r, err, logger.Fields{"clientId": clientID})
		writeJSON(w, statusForError(err), commons.ErrorResponse[[]models.AccountResponse]("failed to get recent accounts", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("recent accounts fetched successfully", models.NewAccountResponses(accounts)))
}

func (c *AccountController) query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryAccountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	accounts, err := c.service.Query(r.Context(), req.ToFilter())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[[]models.AccountResponse]("failed to query accounts", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("accounts fetched successfully", models.NewAccountResponses(accounts)))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountClosed), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
