package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// payrollHandler handles personnel and salary entries.
type payrollHandler struct {
	payrollService portssvc.PayrollSvcFacade
}

func newPayrollHandler(ps portssvc.PayrollSvcFacade) *payrollHandler {
	return &payrollHandler{payrollService: ps}
}

// registerPayrollRoutes registers /personnel and /salaries.
func registerPayrollRoutes(rg *gin.RouterGroup, payrollService portssvc.PayrollSvcFacade) {
	h := newPayrollHandler(payrollService)

	personnel := rg.Group("/personnel")
	{
		personnel.POST("", h.createPersonnel)
		personnel.GET("", h.listPersonnel)
		personnel.GET("/:id", h.getPersonnel)
		personnel.PUT("/:id", h.updatePersonnel)
		personnel.GET("/:id/salaries", h.listPersonnelSalaries)
	}

	salaries := rg.Group("/salaries")
	{
		salaries.POST("", h.createSalary)
		salaries.GET("", h.listSalaries)
		salaries.GET("/:id", h.getSalary)
		salaries.PUT("/:id", h.updateSalary)
		salaries.DELETE("/:id", h.deleteSalary)
	}
}

// createPersonnel godoc
// @Summary Add a person to the payroll
// @Tags payroll
// @Accept  json
// @Produce  json
// @Param   personnel body dto.CreatePersonnelRequest true "Personnel details"
// @Success 201 {object} dto.Envelope{data=domain.Personnel}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 409 {object} dto.Envelope "User already linked to other personnel"
// @Security BearerAuth
// @Router /personnel [post]
func (h *payrollHandler) createPersonnel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePersonnelRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	p, err := h.payrollService.CreatePersonnel(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "Failed to create personnel", err)
		return
	}

	logger.Info("Personnel created", slog.String("personnel_id", p.PersonnelID))
	respondOK(c, http.StatusCreated, p)
}

// listPersonnel godoc
// @Summary List personnel
// @Tags payroll
// @Produce  json
// @Param   status query string false "Status" Enums(active, on_leave, terminated)
// @Param   department query string false "Department"
// @Success 200 {object} dto.Envelope{data=dto.ListPersonnelResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /personnel [get]
func (h *payrollHandler) listPersonnel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListPersonnelParams
	if !bindQuery(c, logger, &params) {
		return
	}

	people, err := h.payrollService.ListPersonnel(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "Failed to list personnel", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ListPersonnelResponse{Personnel: people})
}

// getPersonnel godoc
// @Summary Get a personnel record
// @Tags payroll
// @Produce  json
// @Param   id path string true "Personnel ID"
// @Success 200 {object} dto.Envelope{data=domain.Personnel}
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /personnel/{id} [get]
func (h *payrollHandler) getPersonnel(c *gin.Context) {
	personnelID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("personnel_id", personnelID))

	p, err := h.payrollService.GetPersonnel(c.Request.Context(), personnelID)
	if err != nil {
		respondError(c, logger, "Failed to get personnel", err)
		return
	}

	respondOK(c, http.StatusOK, p)
}

// updatePersonnel godoc
// @Summary Update a personnel record
// @Tags payroll
// @Accept  json
// @Produce  json
// @Param   id path string true "Personnel ID"
// @Param   personnel body dto.UpdatePersonnelRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=domain.Personnel}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "Not found"
// @Failure 409 {object} dto.Envelope "Concurrent modification"
// @Security BearerAuth
// @Router /personnel/{id} [put]
func (h *payrollHandler) updatePersonnel(c *gin.Context) {
	personnelID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("personnel_id", personnelID))

	var req dto.UpdatePersonnelRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	p, err := h.payrollService.UpdatePersonnel(c.Request.Context(), personnelID, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to update personnel", err)
		return
	}

	respondOK(c, http.StatusOK, p)
}

// listPersonnelSalaries godoc
// @Summary List the salary history of one person
// @Tags payroll
// @Produce  json
// @Param   id path string true "Personnel ID"
// @Success 200 {object} dto.Envelope{data=dto.ListSalariesResponse}
// @Security BearerAuth
// @Router /personnel/{id}/salaries [get]
func (h *payrollHandler) listPersonnelSalaries(c *gin.Context) {
	personnelID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("personnel_id", personnelID))

	if _, err := h.payrollService.GetPersonnel(c.Request.Context(), personnelID); err != nil {
		respondError(c, logger, "Failed to get personnel", err)
		return
	}
	salaries, err := h.payrollService.ListSalaries(c.Request.Context(), dto.ListSalariesParams{PersonnelID: personnelID})
	if err != nil {
		respondError(c, logger, "Failed to list salaries", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ListSalariesResponse{Salaries: salaries})
}

// createSalary godoc
// @Summary Record a payroll entry
// @Description Stores gross, deductions and bonuses for a person and month; the net is computed. No money moves.
// @Tags payroll
// @Accept  json
// @Produce  json
// @Param   salary body dto.CreateSalaryRequest true "Salary details"
// @Success 201 {object} dto.Envelope{data=domain.Salary}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "Personnel not found"
// @Failure 409 {object} dto.Envelope "Entry for this period already exists"
// @Security BearerAuth
// @Router /salaries [post]
func (h *payrollHandler) createSalary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSalaryRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	s, err := h.payrollService.CreateSalary(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "Failed to create salary", err)
		return
	}

	logger.Info("Salary recorded",
		slog.String("salary_id", s.SalaryID),
		slog.String("personnel_id", s.PersonnelID),
		slog.Int("month", s.Month), slog.Int("year", s.Year))
	respondOK(c, http.StatusCreated, s)
}

// listSalaries godoc
// @Summary List payroll entries
// @Tags payroll
// @Produce  json
// @Param   personnelID query string false "Personnel ID"
// @Param   month query int false "Month (1-12)"
// @Param   year query int false "Year"
// @Success 200 {object} dto.Envelope{data=dto.ListSalariesResponse}
// @Security BearerAuth
// @Router /salaries [get]
func (h *payrollHandler) listSalaries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListSalariesParams
	if !bindQuery(c, logger, &params) {
		return
	}

	salaries, err := h.payrollService.ListSalaries(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "Failed to list salaries", err)
		return
	}

	respondOK(c, http.StatusOK, dto.ListSalariesResponse{Salaries: salaries})
}

// getSalary godoc
// @Summary Get a payroll entry
// @Tags payroll
// @Produce  json
// @Param   id path string true "Salary ID"
// @Success 200 {object} dto.Envelope{data=domain.Salary}
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /salaries/{id} [get]
func (h *payrollHandler) getSalary(c *gin.Context) {
	salaryID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("salary_id", salaryID))

	s, err := h.payrollService.GetSalary(c.Request.Context(), salaryID)
	if err != nil {
		respondError(c, logger, "Failed to get salary", err)
		return
	}

	respondOK(c, http.StatusOK, s)
}

// updateSalary godoc
// @Summary Update a payroll entry
// @Description Changes the components and recomputes the net. Person and period are fixed.
// @Tags payroll
// @Accept  json
// @Produce  json
// @Param   id path string true "Salary ID"
// @Param   salary body dto.UpdateSalaryRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=domain.Salary}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /salaries/{id} [put]
func (h *payrollHandler) updateSalary(c *gin.Context) {
	salaryID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("salary_id", salaryID))

	var req dto.UpdateSalaryRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	s, err := h.payrollService.UpdateSalary(c.Request.Context(), salaryID, req, userID)
	if err != nil {
		respondError(c, logger, "Failed to update salary", err)
		return
	}

	respondOK(c, http.StatusOK, s)
}

// deleteSalary godoc
// @Summary Delete a payroll entry
// @Tags payroll
// @Produce  json
// @Param   id path string true "Salary ID"
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope "Not found"
// @Security BearerAuth
// @Router /salaries/{id} [delete]
func (h *payrollHandler) deleteSalary(c *gin.Context) {
	salaryID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("salary_id", salaryID))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	if err := h.payrollService.DeleteSalary(c.Request.Context(), salaryID, userID); err != nil {
		respondError(c, logger, "Failed to delete salary", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"salaryID": salaryID})
}
