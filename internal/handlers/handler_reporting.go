package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/income-expense", h.getIncomeExpenseSummary)
		reportingGroup.GET("/receivables-payables", h.getReceivablePayableSummary)
		reportingGroup.GET("/personnel", h.getPersonnelSummary)
		reportingGroup.GET("/total-balance", h.getTotalBalance)
		reportingGroup.GET("/monthly-trend", h.getMonthlyTrend)
		reportingGroup.GET("/dashboard", h.getDashboard)
	}
}

// getIncomeExpenseSummary godoc
// @Summary Income and expense summary
// @Description Completed income and expense totals per currency for an optional period
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.Envelope{data=domain.IncomeExpenseSummary}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-expense [get]
func (h *reportingHandler) getIncomeExpenseSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportPeriodParams
	if !bindQuery(c, logger, &params) {
		return
	}

	report, err := h.reportingService.GetIncomeExpenseSummary(c.Request.Context(), params.StartDate, params.EndDate)
	if err != nil {
		respondError(c, logger, "Failed to generate income expense summary", err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// getReceivablePayableSummary godoc
// @Summary Receivable and payable summary
// @Tags reports
// @Produce json
// @Success 200 {object} dto.Envelope{data=domain.ReceivablePayableSummary}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /reports/receivables-payables [get]
func (h *reportingHandler) getReceivablePayableSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reportingService.GetReceivablePayableSummary(c.Request.Context())
	if err != nil {
		respondError(c, logger, "Failed to generate receivable payable summary", err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// getPersonnelSummary godoc
// @Summary Personnel summary
// @Tags reports
// @Produce json
// @Success 200 {object} dto.Envelope{data=domain.PersonnelSummary}
// @Security BearerAuth
// @Router /reports/personnel [get]
func (h *reportingHandler) getPersonnelSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reportingService.GetPersonnelSummary(c.Request.Context())
	if err != nil {
		respondError(c, logger, "Failed to generate personnel summary", err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// getTotalBalance godoc
// @Summary Total balance per currency
// @Description Sums the balances of active accounts, one total per currency
// @Tags reports
// @Produce json
// @Success 200 {object} dto.Envelope{data=domain.TotalBalance}
// @Security BearerAuth
// @Router /reports/total-balance [get]
func (h *reportingHandler) getTotalBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reportingService.GetTotalBalance(c.Request.Context())
	if err != nil {
		respondError(c, logger, "Failed to generate total balance", err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// getMonthlyTrend godoc
// @Summary Monthly income and expense trend
// @Description Twelve monthly entries for the year, each with per-currency totals
// @Tags reports
// @Produce json
// @Param year query int false "Year, defaults to the current year"
// @Param currency query string false "Only this currency"
// @Success 200 {object} dto.Envelope{data=[]domain.MonthlyTrendEntry}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Security BearerAuth
// @Router /reports/monthly-trend [get]
func (h *reportingHandler) getMonthlyTrend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.MonthlyTrendParams
	if !bindQuery(c, logger, &params) {
		return
	}

	trend, err := h.reportingService.GetMonthlyTrend(c.Request.Context(), params.Year, params.CurrencyCode)
	if err != nil {
		respondError(c, logger, "Failed to generate monthly trend", err)
		return
	}
	respondOK(c, http.StatusOK, trend)
}

// getDashboard godoc
// @Summary Dashboard
// @Description All reports in one response
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param year query int false "Trend year, defaults to the current year"
// @Success 200 {object} dto.Envelope{data=domain.Dashboard}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.DashboardParams
	if !bindQuery(c, logger, &params) {
		return
	}

	dashboard, err := h.reportingService.GetDashboard(c.Request.Context(), params.StartDate, params.EndDate, params.Year)
	if err != nil {
		respondError(c, logger, "Failed to generate dashboard", err)
		return
	}
	respondOK(c, http.StatusOK, dashboard)
}
