package handlers

import (
	"net/http"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerCurrencyRoutes exposes the fixed currency registry.
func registerCurrencyRoutes(rg *gin.RouterGroup) {
	currencies := rg.Group("/currencies")
	{
		currencies.GET("", listCurrencies)
		currencies.GET("/:code", getCurrencyByCode)
	}
}

// listCurrencies godoc
// @Summary List currencies
// @Description Lists the currencies accounts can hold balances in
// @Tags currencies
// @Produce  json
// @Success 200 {object} dto.Envelope{data=[]domain.Currency}
// @Security BearerAuth
// @Router /currencies [get]
func listCurrencies(c *gin.Context) {
	respondOK(c, http.StatusOK, domain.SupportedCurrencies())
}

// getCurrencyByCode godoc
// @Summary Get a currency by code
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency code (e.g., TRY)"
// @Success 200 {object} dto.Envelope{data=domain.Currency}
// @Failure 404 {object} dto.Envelope "Currency not found"
// @Security BearerAuth
// @Router /currencies/{code} [get]
func getCurrencyByCode(c *gin.Context) {
	code := c.Param("code")
	cur, ok := domain.LookupCurrency(code)
	if !ok {
		respondError(c, middleware.GetLoggerFromCtx(c.Request.Context()), "Currency not found", apperrors.NotFound("currency", code))
		return
	}
	respondOK(c, http.StatusOK, cur)
}
