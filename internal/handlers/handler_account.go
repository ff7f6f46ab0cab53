package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
		accounts.GET("/:id/reconcile", h.reconcileAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates an account with a zero balance in every supported currency
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 400 {object} dto.Envelope "Invalid input format or validation error"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	creatorUserID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create account", slog.String("account_name", req.Name), slog.String("currency_code", req.CurrencyCode))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, "Failed to create account", err)
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	respondOK(c, http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves an account with its per-currency balances
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 500 {object} dto.Envelope "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "Failed to get account", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists accounts, optionally filtered by type, currency and active flag
// @Tags accounts
// @Produce  json
// @Param   type query string false "Account type" Enums(bank, cash, credit_card, other)
// @Param   currency query string false "Only accounts holding this currency"
// @Param   activeOnly query bool false "Only active accounts"
// @Param   limit query int false "Limit" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.Envelope{data=dto.ListAccountsResponse}
// @Failure 400 {object} dto.Envelope "Invalid query parameters"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if !bindQuery(c, logger, &params) {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "Failed to list accounts", err)
		return
	}

	logger.Debug("Accounts listed", slog.Int("count", len(accounts)))
	respondOK(c, http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates account details. Balances cannot be edited directly.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 409 {object} dto.Envelope "Concurrent modification"
// @Failure 422 {object} dto.Envelope "Field cannot change while the account is in use"
// @Failure 500 {object} dto.Envelope "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	var req dto.UpdateAccountRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to update account", err)
		return
	}

	logger.Info("Account updated successfully")
	respondOK(c, http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive so no new transactions can use it
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 500 {object} dto.Envelope "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), accountID, userID); err != nil {
		respondError(c, logger, "Failed to deactivate account", err)
		return
	}

	logger.Info("Account deactivated")
	respondOK(c, http.StatusOK, gin.H{"accountID": accountID})
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Deletes an account that no transaction, receivable, payable or salary references
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 409 {object} dto.Envelope "Account in use"
// @Failure 500 {object} dto.Envelope "Failed to delete account"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID, userID); err != nil {
		respondError(c, logger, "Failed to delete account", err)
		return
	}

	logger.Info("Account deleted")
	respondOK(c, http.StatusOK, gin.H{"accountID": accountID})
}

// reconcileAccount godoc
// @Summary Reconcile an account
// @Description Compares stored balances with the sum of completed transactions
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.Envelope{data=dto.ReconcileAccountResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account not found"
// @Failure 500 {object} dto.Envelope "Failed to reconcile account"
// @Security BearerAuth
// @Router /accounts/{id}/reconcile [get]
func (h *accountHandler) reconcileAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	discrepancies, err := h.accountService.ReconcileAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "Failed to reconcile account", err)
		return
	}
	if len(discrepancies) > 0 {
		logger.Warn("Account balances drifted from ledger", slog.Int("discrepancies", len(discrepancies)))
	}

	respondOK(c, http.StatusOK, dto.ReconcileAccountResponse{
		AccountID:     accountID,
		Consistent:    len(discrepancies) == 0,
		Discrepancies: discrepancies,
	})
}
