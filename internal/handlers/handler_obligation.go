package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// obligationHandler serves one kind of obligation. Receivables and payables
// share the handler and differ only in the kind bound at registration.
type obligationHandler struct {
	kind              domain.ObligationKind
	obligationService portssvc.ObligationSvcFacade
	now               func() time.Time
}

func newObligationHandler(kind domain.ObligationKind, os portssvc.ObligationSvcFacade) *obligationHandler {
	return &obligationHandler{kind: kind, obligationService: os, now: time.Now}
}

// registerObligationRoutes registers /receivables and /payables.
func registerObligationRoutes(rg *gin.RouterGroup, obligationService portssvc.ObligationSvcFacade) {
	for path, kind := range map[string]domain.ObligationKind{
		"/receivables": domain.ObligationKindReceivable,
		"/payables":    domain.ObligationKindPayable,
	} {
		h := newObligationHandler(kind, obligationService)
		g := rg.Group(path)
		{
			g.POST("", h.createObligation)
			g.GET("", h.listObligations)
			g.GET("/summary", h.summarizeObligations)
			g.GET("/:id", h.getObligation)
			g.PUT("/:id", h.updateObligation)
			g.DELETE("/:id", h.deleteObligation)
		}
	}
}

// createObligation godoc
// @Summary Create a receivable or payable
// @Description Opens a new receivable (path /receivables) or payable (path /payables) with nothing paid
// @Tags obligations
// @Accept  json
// @Produce  json
// @Param   obligation body dto.CreateObligationRequest true "Obligation details"
// @Success 201 {object} dto.Envelope{data=dto.ObligationResponse}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /receivables [post]
// @Router /payables [post]
func (h *obligationHandler) createObligation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(h.kind)))
	var req dto.CreateObligationRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	o, err := h.obligationService.CreateObligation(c.Request.Context(), h.kind, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to create obligation", err)
		return
	}

	logger.Info("Obligation created", slog.String("obligation_id", o.ObligationID))
	respondOK(c, http.StatusCreated, dto.ToObligationResponse(o, h.now()))
}

// listObligations godoc
// @Summary List receivables or payables
// @Tags obligations
// @Produce  json
// @Param   status query string false "Status" Enums(pending, partial, collected, paid)
// @Param   currency query string false "Currency code"
// @Param   counterparty query string false "Counterparty name contains"
// @Param   openOnly query bool false "Only pending or partial items"
// @Param   overdueOnly query bool false "Only overdue items"
// @Success 200 {object} dto.Envelope{data=dto.ListObligationsResponse}
// @Failure 400 {object} dto.Envelope "Invalid query parameters"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /receivables [get]
// @Router /payables [get]
func (h *obligationHandler) listObligations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(h.kind)))
	var params dto.ListObligationsParams
	if !bindQuery(c, logger, &params) {
		return
	}

	items, err := h.obligationService.ListObligations(c.Request.Context(), h.kind, params)
	if err != nil {
		respondError(c, logger, "Failed to list obligations", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ListObligationsResponse{Obligations: dto.ToObligationResponses(items, h.now())})
}

// summarizeObligations godoc
// @Summary Summarize receivables or payables
// @Description Totals, paid, outstanding and overdue amounts per currency plus status counts
// @Tags obligations
// @Produce  json
// @Success 200 {object} dto.Envelope{data=domain.ObligationSummary}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /receivables/summary [get]
// @Router /payables/summary [get]
func (h *obligationHandler) summarizeObligations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(h.kind)))

	summary, err := h.obligationService.Summarize(c.Request.Context(), h.kind, h.now())
	if err != nil {
		respondError(c, logger, "Failed to summarize obligations", err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}

// getObligation godoc
// @Summary Get a receivable or payable
// @Tags obligations
// @Produce  json
// @Param   id path string true "Obligation ID"
// @Success 200 {object} dto.Envelope{data=dto.ObligationResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /receivables/{id} [get]
// @Router /payables/{id} [get]
func (h *obligationHandler) getObligation(c *gin.Context) {
	obligationID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("kind", string(h.kind)), slog.String("obligation_id", obligationID))

	o, err := h.obligationService.GetObligation(c.Request.Context(), h.kind, obligationID)
	if err != nil {
		respondError(c, logger, "Failed to get obligation", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToObligationResponse(o, h.now()))
}

// updateObligation godoc
// @Summary Update a receivable or payable
// @Description Edits descriptive fields or the total. The paid amount only changes through linked transactions.
// @Tags obligations
// @Accept  json
// @Produce  json
// @Param   id path string true "Obligation ID"
// @Param   obligation body dto.UpdateObligationRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.ObligationResponse}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Not found"
// @Failure 409 {object} dto.Envelope "Concurrent modification"
// @Failure 422 {object} dto.Envelope "Total below the amount already paid"
// @Security BearerAuth
// @Router /receivables/{id} [put]
// @Router /payables/{id} [put]
func (h *obligationHandler) updateObligation(c *gin.Context) {
	obligationID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("kind", string(h.kind)), slog.String("obligation_id", obligationID))

	var req dto.UpdateObligationRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	o, err := h.obligationService.UpdateObligation(c.Request.Context(), h.kind, obligationID, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to update obligation", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToObligationResponse(o, h.now()))
}

// deleteObligation godoc
// @Summary Delete a receivable or payable
// @Description Items with payments recorded against them need force=true; their settling transactions are detached, balances are untouched.
// @Tags obligations
// @Produce  json
// @Param   id path string true "Obligation ID"
// @Param   force query bool false "Delete even if partially settled"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope "Has payments and force not set"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /receivables/{id} [delete]
// @Router /payables/{id} [delete]
func (h *obligationHandler) deleteObligation(c *gin.Context) {
	obligationID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("kind", string(h.kind)), slog.String("obligation_id", obligationID))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	if err := h.obligationService.DeleteObligation(c.Request.Context(), h.kind, obligationID, force, userID); err != nil {
		respondError(c, logger, "Failed to delete obligation", err)
		return
	}

	logger.Info("Obligation deleted", slog.Bool("force", force))
	respondOK(c, http.StatusOK, gin.H{"obligationID": obligationID})
}
