package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests that move money.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to ledger transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/:id", h.getTransaction)
		txns.PUT("/:id", h.updateTransaction)
		txns.PATCH("/:id/status", h.changeTransactionStatus)
		txns.DELETE("/:id", h.deleteTransaction)
	}
}

// createTransaction godoc
// @Summary Record a transaction
// @Description Records an income, expense, transfer or exchange. Completed transactions update balances and linked receivables or payables atomically.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Envelope "Validation error or unsupported currency"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Account or obligation not found"
// @Failure 409 {object} dto.Envelope "Concurrent modification"
// @Failure 422 {object} dto.Envelope "Overpayment"
// @Failure 500 {object} dto.Envelope "Failed to record transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("transaction_type", string(req.Type)))
	logger.Info("Received request to record transaction")

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "Failed to record transaction", err)
		return
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_number", txn.TransactionNumber),
		slog.String("status", string(txn.Status)))
	respondOK(c, http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions newest first with token based pagination
// @Tags transactions
// @Produce  json
// @Param   type query string false "Transaction type" Enums(income, expense, transfer, exchange)
// @Param   status query string false "Transaction status" Enums(pending, completed, cancelled)
// @Param   accountID query string false "Account on either side of the transaction"
// @Param   obligationID query string false "Linked receivable or payable"
// @Param   category query string false "Category"
// @Param   startDate query string false "Start date (YYYY-MM-DD)"
// @Param   endDate query string false "End date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.Envelope{data=dto.ListTransactionsResponse}
// @Failure 400 {object} dto.Envelope "Invalid query parameters"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if !bindQuery(c, logger, &params) {
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "Failed to list transactions", err)
		return
	}

	respondOK(c, http.StatusOK, page)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger, "Failed to get transaction", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Update transaction details
// @Description Changes descriptive fields. Amounts, accounts and currencies are fixed; delete and re-create to change them.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.UpdateTransactionRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to update transaction", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToTransactionResponse(txn))
}

// changeTransactionStatus godoc
// @Summary Complete or cancel a pending transaction
// @Description Completing applies the balance and obligation effects; cancelling leaves balances untouched.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   status body dto.ChangeTransactionStatusRequest true "Target status"
// @Success 200 {object} dto.Envelope{data=dto.TransactionResponse}
// @Failure 400 {object} dto.Envelope "Invalid status transition"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Failure 422 {object} dto.Envelope "Overpayment"
// @Security BearerAuth
// @Router /transactions/{id}/status [patch]
func (h *transactionHandler) changeTransactionStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.ChangeTransactionStatusRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.ChangeTransactionStatus(c.Request.Context(), transactionID, req.Status, userID)
	if err != nil {
		respondError(c, logger, "Failed to change transaction status", err)
		return
	}

	logger.Info("Transaction status changed", slog.String("status", string(txn.Status)))
	respondOK(c, http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Reverses the balance and obligation effects of a completed transaction, then removes it
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Failure 409 {object} dto.Envelope "Concurrent modification"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, userID); err != nil {
		respondError(c, logger, "Failed to delete transaction", err)
		return
	}

	logger.Info("Transaction deleted")
	respondOK(c, http.StatusOK, gin.H{"transactionID": transactionID})
}
